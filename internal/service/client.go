package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/daisamonteiro/banque-backoffice/internal/domain"
	"github.com/daisamonteiro/banque-backoffice/internal/lifecycle"
	"github.com/daisamonteiro/banque-backoffice/internal/logging"
)

type clientRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	Create(ctx context.Context, c *domain.Client) error
	Update(ctx context.Context, c *domain.Client) error
	List(ctx context.Context, search string, limit, offset int) ([]domain.Client, int, error)
}

type ClientService struct {
	clients clientRepo
	clock   lifecycle.Clock
}

func NewClientService(clients clientRepo, clock lifecycle.Clock) *ClientService {
	return &ClientService{clients: clients, clock: clock}
}

type CreateClientInput struct {
	Nom       string
	Prenom    string
	Telephone string
	CNI       string
	Email     string
	Sexe      string
	Adresse   string
	Metadata  domain.Metadata
}

func (s *ClientService) Create(ctx context.Context, in CreateClientInput) (*domain.Client, error) {
	now := s.clock.Now()
	client := &domain.Client{
		ID:        uuid.New(),
		Nom:       in.Nom,
		Prenom:    in.Prenom,
		Telephone: in.Telephone,
		CNI:       in.CNI,
		Email:     in.Email,
		Sexe:      domain.Sexe(in.Sexe),
		Adresse:   in.Adresse,
		Statut:    "actif",
		Metadata:  in.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The CNI/sexe invariant is checked synchronously, before persistence.
	if fields := domain.ValidateClient(client); len(fields) > 0 {
		return nil, domain.NewValidationError(fields)
	}

	if err := s.clients.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	logging.FromContext(ctx).Info("client created", "client_id", client.ID)
	return client, nil
}

type UpdateClientInput struct {
	Nom       *string
	Prenom    *string
	Telephone *string
	CNI       *string
	Email     *string
	Sexe      *string
	Adresse   *string
}

func (s *ClientService) Update(ctx context.Context, id uuid.UUID, in UpdateClientInput) (*domain.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	if in.Nom != nil {
		client.Nom = *in.Nom
	}
	if in.Prenom != nil {
		client.Prenom = *in.Prenom
	}
	if in.Telephone != nil {
		client.Telephone = *in.Telephone
	}
	if in.CNI != nil {
		client.CNI = *in.CNI
	}
	if in.Email != nil {
		client.Email = *in.Email
	}
	if in.Sexe != nil {
		client.Sexe = domain.Sexe(*in.Sexe)
	}
	if in.Adresse != nil {
		client.Adresse = *in.Adresse
	}

	if fields := domain.ValidateClient(client); len(fields) > 0 {
		return nil, domain.NewValidationError(fields)
	}
	client.UpdatedAt = s.clock.Now()

	if err := s.clients.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	return client, nil
}

func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return client, nil
}

func (s *ClientService) List(ctx context.Context, search string, limit, offset int) ([]domain.Client, int, error) {
	clients, total, err := s.clients.List(ctx, search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	return clients, total, nil
}
