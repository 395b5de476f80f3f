package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/daisamonteiro/banque-backoffice/internal/domain"
	"github.com/daisamonteiro/banque-backoffice/internal/logging"
	"github.com/daisamonteiro/banque-backoffice/internal/repository"
	"github.com/daisamonteiro/banque-backoffice/internal/service"
)

type compteService interface {
	Create(ctx context.Context, in service.CreateCompteInput) (*domain.Compte, error)
	List(ctx context.Context, f repository.ListFilter) ([]domain.Compte, int, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Compte, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Compte, error)
	Solde(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)
	Bloquer(ctx context.Context, id uuid.UUID, motif string, duree int, unite string) (*domain.Compte, error)
	Debloquer(ctx context.Context, id uuid.UUID) (*domain.Compte, error)
	Fermer(ctx context.Context, id uuid.UUID, motif string) (*domain.Compte, error)
	Update(ctx context.Context, id uuid.UUID, in service.UpdateCompteInput) (*domain.Compte, error)
}

type transactionLister interface {
	GetByCompteID(ctx context.Context, compteID uuid.UUID, limit, offset int) ([]domain.Transaction, int, error)
}

type CompteHandler struct {
	comptes      compteService
	transactions transactionLister
}

func NewCompteHandler(comptes compteService, transactions transactionLister) *CompteHandler {
	return &CompteHandler{comptes: comptes, transactions: transactions}
}

type compteDTO struct {
	ID            uuid.UUID       `json:"id"`
	NumeroCompte  string          `json:"numeroCompte"`
	Titulaire     string          `json:"titulaire"`
	Type          string          `json:"type"`
	Devise        string          `json:"devise"`
	DateCreation  string          `json:"dateCreation"`
	Statut        string          `json:"statut"`
	DateFermeture *time.Time      `json:"dateFermeture,omitempty"`
	Metadata      domain.Metadata `json:"metadata,omitempty"`
	ClientID      uuid.UUID       `json:"client_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func toCompteDTO(c *domain.Compte) compteDTO {
	return compteDTO{
		ID:            c.ID,
		NumeroCompte:  c.NumeroCompte,
		Titulaire:     c.Titulaire,
		Type:          string(c.Type),
		Devise:        c.Devise,
		DateCreation:  c.DateCreation.Format("2006-01-02"),
		Statut:        string(c.Statut),
		DateFermeture: c.DateFermeture,
		Metadata:      c.Metadata,
		ClientID:      c.ClientID,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func toCompteDTOs(comptes []domain.Compte) []compteDTO {
	dtos := make([]compteDTO, len(comptes))
	for i := range comptes {
		dtos[i] = toCompteDTO(&comptes[i])
	}
	return dtos
}

func compteFromPath(r *http.Request) (uuid.UUID, *AppError) {
	id, err := uuid.Parse(r.PathValue("compteId"))
	if err != nil {
		return uuid.Nil, ErrCompteNotFound
	}
	return id, nil
}

// GET /monteiro.daisa/v1/comptes
func (h *CompteHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	q := r.URL.Query()

	comptes, total, err := h.comptes.List(r.Context(), repository.ListFilter{
		Type:   q.Get("type"),
		Statut: q.Get("statut"),
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list comptes", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondPage(w, toCompteDTOs(comptes), newPagination(r, page, perPage, total))
}

// GET /monteiro.daisa/v1/clients/{clientId}/comptes
//
// A client with zero comptes gets a default one provisioned on first call,
// so this GET writes once per fresh client.
func (h *CompteHandler) ByClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(r.PathValue("clientId"))
	if err != nil {
		RespondAppError(w, ErrClientNotFound, nil)
		return
	}

	comptes, svcErr := h.comptes.ListByClient(r.Context(), clientID)
	if svcErr != nil {
		logging.FromContext(r.Context()).Error("failed to list comptes by client", "error", svcErr)
		RespondDomainError(w, svcErr)
		return
	}

	RespondSuccess(w, http.StatusOK, toCompteDTOs(comptes))
}

type showCompteDTO struct {
	compteDTO
	Solde decimal.Decimal `json:"solde"`
}

// GET /monteiro.daisa/v1/comptes/{compteId}
func (h *CompteHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, appErr := compteFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	compte, err := h.comptes.Get(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	solde, err := h.comptes.Solde(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to compute solde", "error", err, "compte_id", id)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, showCompteDTO{
		compteDTO: toCompteDTO(compte),
		Solde:     solde,
	})
}

type createCompteRequest struct {
	Type      string          `json:"type"`
	Devise    string          `json:"devise"`
	Statut    string          `json:"statut"`
	Metadata  domain.Metadata `json:"metadata"`
	ClientID  string          `json:"client_id"`
	Titulaire string          `json:"titulaire"`
}

func (req createCompteRequest) Validate() []FieldError {
	var errs []FieldError
	if req.Type == "" {
		errs = append(errs, FieldError{Field: "type", Message: "required"})
	} else if !domain.NormalizeCompteType(req.Type).IsValid() {
		errs = append(errs, FieldError{Field: "type", Message: "must be cheque or epargne"})
	}
	if req.Devise != "" && req.Devise != domain.DeviseFCFA {
		errs = append(errs, FieldError{Field: "devise", Message: "must be FCFA"})
	}
	if req.Statut != "" && !domain.CompteStatut(req.Statut).IsValid() {
		errs = append(errs, FieldError{Field: "statut", Message: "must be actif, bloque or ferme"})
	}
	if req.ClientID == "" {
		errs = append(errs, FieldError{Field: "client_id", Message: "required"})
	} else if _, err := uuid.Parse(req.ClientID); err != nil {
		errs = append(errs, FieldError{Field: "client_id", Message: "must be a valid uuid"})
	}
	return errs
}

// POST /monteiro.daisa/v1/comptes
func (h *CompteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCompteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	compte, err := h.comptes.Create(r.Context(), service.CreateCompteInput{
		ClientID:  uuid.MustParse(req.ClientID),
		Type:      req.Type,
		Devise:    req.Devise,
		Statut:    req.Statut,
		Titulaire: req.Titulaire,
		Metadata:  req.Metadata,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create compte", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toCompteDTO(compte))
}

type blockCompteRequest struct {
	Motif string `json:"motif"`
	Duree int    `json:"duree"`
	Unite string `json:"unite"`
}

func (req blockCompteRequest) Validate() []FieldError {
	var errs []FieldError
	if req.Motif == "" {
		errs = append(errs, FieldError{Field: "motif", Message: "required"})
	} else if utf8.RuneCountInString(req.Motif) > 255 {
		errs = append(errs, FieldError{Field: "motif", Message: "must not exceed 255 characters"})
	}
	if req.Duree < 1 {
		errs = append(errs, FieldError{Field: "duree", Message: "must be at least 1"})
	}
	if !domain.DureeUnite(req.Unite).IsValid() {
		errs = append(errs, FieldError{Field: "unite", Message: "must be jours, semaines, mois or annees"})
	}
	return errs
}

// POST /monteiro.daisa/v1/comptes/{compteId}/bloquer
func (h *CompteHandler) Bloquer(w http.ResponseWriter, r *http.Request) {
	id, appErr := compteFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req blockCompteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	compte, err := h.comptes.Bloquer(r.Context(), id, req.Motif, req.Duree, req.Unite)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to block compte", "error", err, "compte_id", id)
		RespondDomainError(w, err)
		return
	}

	RespondSuccessMessage(w, http.StatusOK, map[string]any{
		"id":                  compte.ID,
		"statut":              compte.Statut,
		"motifBlocage":        compte.Metadata.String(domain.MetaMotifBlocage),
		"dateBlocage":         compte.Metadata.String(domain.MetaDateDebutBlocage),
		"dateDeblocagePrevue": compte.Metadata.String(domain.MetaDateFinBlocage),
	}, "Compte bloqué avec succès")
}

// POST /monteiro.daisa/v1/comptes/{compteId}/debloquer
func (h *CompteHandler) Debloquer(w http.ResponseWriter, r *http.Request) {
	id, appErr := compteFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	compte, err := h.comptes.Debloquer(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to unblock compte", "error", err, "compte_id", id)
		RespondDomainError(w, err)
		return
	}

	RespondSuccessMessage(w, http.StatusOK, map[string]any{
		"id":            compte.ID,
		"statut":        compte.Statut,
		"dateDeblocage": compte.Metadata.String(domain.MetaDateDeblocage),
	}, "Compte débloqué avec succès")
}

type updateCompteRequest struct {
	Statut             *string             `json:"statut"`
	MotifBlocage       *string             `json:"motifBlocage"`
	Metadata           domain.Metadata     `json:"metadata"`
	Titulaire          *string             `json:"titulaire"`
	NumeroCompte       *string             `json:"numeroCompte"`
	InformationsClient *informationsClient `json:"informationsClient"`
}

type informationsClient struct {
	Telephone *string `json:"telephone"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	NCI       *string `json:"nci"`
}

func (req updateCompteRequest) Validate() []FieldError {
	var errs []FieldError
	// The account number is immutable after creation.
	if req.NumeroCompte != nil {
		errs = append(errs, FieldError{Field: "numeroCompte", Message: "prohibited"})
	}
	if req.Statut != nil && !domain.CompteStatut(*req.Statut).IsValid() {
		errs = append(errs, FieldError{Field: "statut", Message: "must be actif, bloque or ferme"})
	}
	if req.Titulaire != nil && len(*req.Titulaire) > 255 {
		errs = append(errs, FieldError{Field: "titulaire", Message: "must not exceed 255 characters"})
	}
	if ic := req.InformationsClient; ic != nil {
		if ic.Telephone != nil && !domain.ValidTelephone(*ic.Telephone) {
			errs = append(errs, FieldError{Field: "informationsClient.telephone", Message: "must be a valid Senegalese mobile number"})
		}
		if ic.Password != nil && len(*ic.Password) < 8 {
			errs = append(errs, FieldError{Field: "informationsClient.password", Message: "must be at least 8 characters"})
		}
		if ic.NCI != nil && len(*ic.NCI) != 13 {
			errs = append(errs, FieldError{Field: "informationsClient.nci", Message: "must be 13 characters"})
		}
	}
	return errs
}

// PATCH /monteiro.daisa/v1/comptes/{compteId}
func (h *CompteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := compteFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req updateCompteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	in := service.UpdateCompteInput{
		Statut:       req.Statut,
		MotifBlocage: req.MotifBlocage,
		Metadata:     req.Metadata,
		Titulaire:    req.Titulaire,
	}
	if ic := req.InformationsClient; ic != nil {
		in.InformationsClient = &service.InformationsClient{
			Telephone: ic.Telephone,
			Email:     ic.Email,
			Password:  ic.Password,
			NCI:       ic.NCI,
		}
	}

	compte, err := h.comptes.Update(r.Context(), id, in)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to update compte", "error", err, "compte_id", id)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toCompteDTO(compte))
}

type deleteCompteRequest struct {
	MotifFermeture string `json:"motif_fermeture"`
}

// DELETE /monteiro.daisa/v1/comptes/{compteId}
func (h *CompteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := compteFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req deleteCompteRequest
	if r.Body != nil {
		// A missing body is tolerated; the service enforces the motif.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	compte, err := h.comptes.Fermer(r.Context(), id, req.MotifFermeture)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to close compte", "error", err, "compte_id", id)
		RespondDomainError(w, err)
		return
	}

	RespondSuccessMessage(w, http.StatusOK, map[string]any{
		"id":            compte.ID,
		"statut":        compte.Statut,
		"dateFermeture": compte.DateFermeture,
	}, "Compte fermé avec succès")
}

type transactionDTO struct {
	ID              uuid.UUID       `json:"id"`
	CompteID        uuid.UUID       `json:"compte_id"`
	Type            string          `json:"type"`
	Montant         decimal.Decimal `json:"montant"`
	Devise          string          `json:"devise"`
	Description     string          `json:"description,omitempty"`
	DateTransaction *time.Time      `json:"dateTransaction,omitempty"`
	Statut          string          `json:"statut"`
}

// GET /monteiro.daisa/v1/comptes/{compteId}/transactions
func (h *CompteHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id, appErr := compteFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if _, err := h.comptes.Get(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}

	page, perPage := pageParams(r)
	txs, total, err := h.transactions.GetByCompteID(r.Context(), id, perPage, (page-1)*perPage)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list transactions", "error", err, "compte_id", id)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]transactionDTO, len(txs))
	for i, t := range txs {
		dtos[i] = transactionDTO{
			ID:              t.ID,
			CompteID:        t.CompteID,
			Type:            string(t.Type),
			Montant:         t.Montant,
			Devise:          t.Devise,
			Description:     t.Description,
			DateTransaction: t.DateTransaction,
			Statut:          t.Statut,
		}
	}

	RespondPage(w, dtos, newPagination(r, page, perPage, total))
}
