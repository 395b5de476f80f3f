package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/daisamonteiro/banque-backoffice/internal/domain"
	"github.com/daisamonteiro/banque-backoffice/internal/logging"
	"github.com/daisamonteiro/banque-backoffice/internal/service"
)

type clientService interface {
	Create(ctx context.Context, in service.CreateClientInput) (*domain.Client, error)
	Update(ctx context.Context, id uuid.UUID, in service.UpdateClientInput) (*domain.Client, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	List(ctx context.Context, search string, limit, offset int) ([]domain.Client, int, error)
}

type ClientHandler struct {
	clients clientService
}

func NewClientHandler(clients clientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

type clientDTO struct {
	ID        uuid.UUID       `json:"id"`
	Nom       string          `json:"nom"`
	Prenom    string          `json:"prenom"`
	Telephone string          `json:"telephone"`
	CNI       string          `json:"cni"`
	Email     string          `json:"email,omitempty"`
	Sexe      string          `json:"sexe"`
	Adresse   string          `json:"adresse,omitempty"`
	Statut    string          `json:"statut"`
	Metadata  domain.Metadata `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toClientDTO(c *domain.Client) clientDTO {
	return clientDTO{
		ID:        c.ID,
		Nom:       c.Nom,
		Prenom:    c.Prenom,
		Telephone: c.Telephone,
		CNI:       c.CNI,
		Email:     c.Email,
		Sexe:      string(c.Sexe),
		Adresse:   c.Adresse,
		Statut:    c.Statut,
		Metadata:  c.Metadata,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// GET /monteiro.daisa/v1/clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	clients, total, err := h.clients.List(r.Context(), r.URL.Query().Get("search"), perPage, (page-1)*perPage)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list clients", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]clientDTO, len(clients))
	for i := range clients {
		dtos[i] = toClientDTO(&clients[i])
	}

	RespondPage(w, dtos, newPagination(r, page, perPage, total))
}

type createClientRequest struct {
	Nom       string          `json:"nom"`
	Prenom    string          `json:"prenom"`
	Telephone string          `json:"telephone"`
	CNI       string          `json:"cni"`
	Email     string          `json:"email"`
	Sexe      string          `json:"sexe"`
	Adresse   string          `json:"adresse"`
	Metadata  domain.Metadata `json:"metadata"`
}

// POST /monteiro.daisa/v1/clients
//
// Field-level validation, including the CNI/sexe gate, happens in the
// service before persistence; the handler only rejects malformed JSON.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	client, err := h.clients.Create(r.Context(), service.CreateClientInput{
		Nom:       req.Nom,
		Prenom:    req.Prenom,
		Telephone: req.Telephone,
		CNI:       req.CNI,
		Email:     req.Email,
		Sexe:      req.Sexe,
		Adresse:   req.Adresse,
		Metadata:  req.Metadata,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create client", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toClientDTO(client))
}

type updateClientRequest struct {
	Nom       *string `json:"nom"`
	Prenom    *string `json:"prenom"`
	Telephone *string `json:"telephone"`
	CNI       *string `json:"cni"`
	Email     *string `json:"email"`
	Sexe      *string `json:"sexe"`
	Adresse   *string `json:"adresse"`
}

// PATCH /monteiro.daisa/v1/clients/{clientId}
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("clientId"))
	if err != nil {
		RespondAppError(w, ErrClientNotFound, nil)
		return
	}

	var req updateClientRequest
	if decErr := json.NewDecoder(r.Body).Decode(&req); decErr != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	client, svcErr := h.clients.Update(r.Context(), id, service.UpdateClientInput{
		Nom:       req.Nom,
		Prenom:    req.Prenom,
		Telephone: req.Telephone,
		CNI:       req.CNI,
		Email:     req.Email,
		Sexe:      req.Sexe,
		Adresse:   req.Adresse,
	})
	if svcErr != nil {
		logging.FromContext(r.Context()).Error("failed to update client", "error", svcErr, "client_id", id)
		RespondDomainError(w, svcErr)
		return
	}

	RespondSuccess(w, http.StatusOK, toClientDTO(client))
}

// GET /monteiro.daisa/v1/clients/{clientId}
func (h *ClientHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("clientId"))
	if err != nil {
		RespondAppError(w, ErrClientNotFound, nil)
		return
	}

	client, svcErr := h.clients.Get(r.Context(), id)
	if svcErr != nil {
		RespondDomainError(w, svcErr)
		return
	}

	RespondSuccess(w, http.StatusOK, toClientDTO(client))
}
