package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/daisamonteiro/banque-backoffice/internal/domain"
	"github.com/daisamonteiro/banque-backoffice/internal/lifecycle"
	"github.com/daisamonteiro/banque-backoffice/internal/logging"
	"github.com/daisamonteiro/banque-backoffice/internal/repository"
)

type compteRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Compte, error)
	GetByClientID(ctx context.Context, clientID uuid.UUID) ([]domain.Compte, error)
	NumeroExists(ctx context.Context, numero string) (bool, error)
	Create(ctx context.Context, c *domain.Compte) error
	Update(ctx context.Context, c *domain.Compte) error
	UpdateTx(ctx context.Context, tx *sql.Tx, c *domain.Compte) error
	List(ctx context.Context, f repository.ListFilter) ([]domain.Compte, int, error)
}

type clientReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	UpdateTx(ctx context.Context, tx *sql.Tx, c *domain.Client) error
}

type transactionReader interface {
	SumByType(ctx context.Context, compteID uuid.UUID, t domain.TransactionType) (decimal.Decimal, error)
}

type CompteService struct {
	comptes        compteRepo
	clients        clientReader
	transactions   transactionReader
	db             *sql.DB
	clock          lifecycle.Clock
	maxNumAttempts int
}

func NewCompteService(comptes compteRepo, clients clientReader, transactions transactionReader, db *sql.DB, clock lifecycle.Clock, maxNumAttempts int) *CompteService {
	if maxNumAttempts < 1 {
		maxNumAttempts = 10
	}
	return &CompteService{
		comptes:        comptes,
		clients:        clients,
		transactions:   transactions,
		db:             db,
		clock:          clock,
		maxNumAttempts: maxNumAttempts,
	}
}

type CreateCompteInput struct {
	ClientID  uuid.UUID
	Type      string
	Devise    string
	Statut    string
	Titulaire string
	Metadata  domain.Metadata
}

func (s *CompteService) Create(ctx context.Context, in CreateCompteInput) (*domain.Compte, error) {
	log := logging.FromContext(ctx)

	compteType := domain.NormalizeCompteType(in.Type)
	if !compteType.IsValid() {
		return nil, fmt.Errorf("Create: %w", domain.ErrInvalidCompteType)
	}
	if in.Devise != "" && in.Devise != domain.DeviseFCFA {
		return nil, fmt.Errorf("Create: %w", domain.ErrInvalidDevise)
	}
	statut := domain.StatutActif
	if in.Statut != "" {
		statut = domain.CompteStatut(in.Statut)
		if !statut.IsValid() {
			return nil, fmt.Errorf("Create: %w", domain.ErrInvalidStatut)
		}
	}

	client, err := s.clients.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	titulaire := in.Titulaire
	if titulaire == "" {
		titulaire = client.Prenom + " " + client.Nom
	}

	metadata := in.Metadata.Clone()
	if _, ok := metadata[domain.MetaVersion]; !ok {
		metadata[domain.MetaVersion] = 1
	}

	now := s.clock.Now()
	compte := &domain.Compte{
		ID:           uuid.New(),
		ClientID:     client.ID,
		Titulaire:    titulaire,
		Type:         compteType,
		Devise:       domain.DeviseFCFA,
		DateCreation: now,
		Statut:       statut,
		Metadata:     metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The existence check narrows the race window; the unique index is the
	// authoritative guard. A collision at insert time draws a fresh number.
	for attempt := 0; attempt < s.maxNumAttempts; attempt++ {
		numero, err := generateNumeroCompte()
		if err != nil {
			return nil, fmt.Errorf("Create: %w", err)
		}

		exists, err := s.comptes.NumeroExists(ctx, numero)
		if err != nil {
			return nil, fmt.Errorf("Create: %w", err)
		}
		if exists {
			continue
		}

		compte.NumeroCompte = numero
		err = s.comptes.Create(ctx, compte)
		if err == nil {
			log.Info("compte created",
				"compte_id", compte.ID,
				"numero_compte", compte.NumeroCompte,
				"client_id", compte.ClientID,
				"type", compte.Type,
			)
			return compte, nil
		}
		if errors.Is(err, domain.ErrDuplicateKey) {
			continue
		}
		return nil, fmt.Errorf("Create: %w", err)
	}

	return nil, fmt.Errorf("Create: %w", domain.ErrNumeroExhausted)
}

// ListByClient returns the client's visible comptes, provisioning a single
// default one when none exist. The first call for a fresh client therefore
// writes; subsequent calls only read.
func (s *CompteService) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Compte, error) {
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("ListByClient: %w", err)
	}

	comptes, err := s.comptes.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("ListByClient: %w", err)
	}
	if len(comptes) > 0 {
		return comptes, nil
	}

	compte, err := s.Create(ctx, CreateCompteInput{
		ClientID:  client.ID,
		Type:      string(domain.TypeEpargne),
		Devise:    domain.DeviseFCFA,
		Statut:    string(domain.StatutActif),
		Titulaire: client.Prenom + " " + client.Nom,
		Metadata:  domain.Metadata{domain.MetaVersion: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("ListByClient: provision default compte: %w", err)
	}

	logging.FromContext(ctx).Info("default compte provisioned",
		"client_id", clientID,
		"compte_id", compte.ID,
	)
	return []domain.Compte{*compte}, nil
}

func (s *CompteService) Get(ctx context.Context, id uuid.UUID) (*domain.Compte, error) {
	compte, err := s.comptes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return compte, nil
}

func (s *CompteService) List(ctx context.Context, f repository.ListFilter) ([]domain.Compte, int, error) {
	comptes, total, err := s.comptes.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	return comptes, total, nil
}

// Solde derives the balance from the transaction sums on every call; it is
// never cached or stored.
func (s *CompteService) Solde(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	if _, err := s.comptes.GetByID(ctx, id); err != nil {
		return decimal.Zero, fmt.Errorf("Solde: %w", err)
	}

	depots, err := s.transactions.SumByType(ctx, id, domain.TransactionDepot)
	if err != nil {
		return decimal.Zero, fmt.Errorf("Solde: %w", err)
	}
	retraits, err := s.transactions.SumByType(ctx, id, domain.TransactionRetrait)
	if err != nil {
		return decimal.Zero, fmt.Errorf("Solde: %w", err)
	}
	return depots.Sub(retraits), nil
}

func (s *CompteService) Bloquer(ctx context.Context, id uuid.UUID, motif string, duree int, unite string) (*domain.Compte, error) {
	u := domain.DureeUnite(unite)
	if !u.IsValid() {
		return nil, fmt.Errorf("Bloquer: %w", domain.ErrInvalidDureeUnite)
	}

	compte, err := s.comptes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Bloquer: %w", err)
	}

	blocked, err := lifecycle.Apply(*compte, lifecycle.Block{Motif: motif, Duree: duree, Unite: u}, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("Bloquer: %w", err)
	}

	if err := s.comptes.Update(ctx, &blocked); err != nil {
		return nil, fmt.Errorf("Bloquer: %w", err)
	}

	logging.FromContext(ctx).Info("compte bloque",
		"compte_id", id,
		"duree", duree,
		"unite", unite,
	)
	return &blocked, nil
}

func (s *CompteService) Debloquer(ctx context.Context, id uuid.UUID) (*domain.Compte, error) {
	compte, err := s.comptes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Debloquer: %w", err)
	}

	unblocked, err := lifecycle.Apply(*compte, lifecycle.Unblock{}, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("Debloquer: %w", err)
	}

	if err := s.comptes.Update(ctx, &unblocked); err != nil {
		return nil, fmt.Errorf("Debloquer: %w", err)
	}

	logging.FromContext(ctx).Info("compte debloque", "compte_id", id)
	return &unblocked, nil
}

// Fermer closes the compte: statut ferme, closure timestamp and soft delete
// in one write. Already-closed comptes are invisible to GetByID, so a second
// attempt reports not found. The motif is recorded by the audit sink, not in
// the compte metadata.
func (s *CompteService) Fermer(ctx context.Context, id uuid.UUID, motif string) (*domain.Compte, error) {
	if motif == "" {
		return nil, domain.NewValidationError([]domain.FieldViolation{
			{Field: "motif_fermeture", Message: "required"},
		})
	}
	if utf8.RuneCountInString(motif) > 255 {
		return nil, domain.NewValidationError([]domain.FieldViolation{
			{Field: "motif_fermeture", Message: "must not exceed 255 characters"},
		})
	}

	compte, err := s.comptes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Fermer: %w", err)
	}

	closed, err := lifecycle.Apply(*compte, lifecycle.Close{}, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("Fermer: %w", err)
	}

	if err := s.comptes.Update(ctx, &closed); err != nil {
		return nil, fmt.Errorf("Fermer: %w", err)
	}

	logging.FromContext(ctx).Info("compte ferme", "compte_id", id, "motif", motif)
	return &closed, nil
}

type InformationsClient struct {
	Telephone *string
	Email     *string
	Password  *string
	NCI       *string
}

type UpdateCompteInput struct {
	Statut             *string
	MotifBlocage       *string
	Metadata           domain.Metadata
	Titulaire          *string
	InformationsClient *InformationsClient
}

// Update is the generic PATCH entry point. When informationsClient is
// present the compte and its owning client are written in one transaction,
// rolled back together on any failure.
func (s *CompteService) Update(ctx context.Context, id uuid.UUID, in UpdateCompteInput) (*domain.Compte, error) {
	if in.Statut == nil && in.MotifBlocage == nil && in.Metadata == nil &&
		in.Titulaire == nil && in.InformationsClient == nil {
		return nil, fmt.Errorf("Update: %w", domain.ErrEmptyUpdate)
	}

	compte, err := s.comptes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	var statut *domain.CompteStatut
	if in.Statut != nil {
		st := domain.CompteStatut(*in.Statut)
		if !st.IsValid() {
			return nil, fmt.Errorf("Update: %w", domain.ErrInvalidStatut)
		}
		statut = &st
	}

	ev := lifecycle.Update{
		Statut:       statut,
		MotifBlocage: in.MotifBlocage,
		Metadata:     in.Metadata,
		Titulaire:    in.Titulaire,
	}
	// A payload carrying only informationsClient is a valid update: the
	// compte row is written in the same transaction, so it gets the usual
	// version bump even though no compte field changes.
	if in.InformationsClient != nil && statut == nil && in.MotifBlocage == nil &&
		in.Metadata == nil && in.Titulaire == nil {
		ev.Metadata = domain.Metadata{}
	}
	updated, err := lifecycle.Apply(*compte, ev, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	if in.InformationsClient == nil {
		if err := s.comptes.Update(ctx, &updated); err != nil {
			return nil, fmt.Errorf("Update: %w", err)
		}
		return &updated, nil
	}

	if err := s.updateWithClient(ctx, &updated, in.InformationsClient); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	return &updated, nil
}

func (s *CompteService) updateWithClient(ctx context.Context, compte *domain.Compte, info *InformationsClient) error {
	client, err := s.clients.GetByID(ctx, compte.ClientID)
	if err != nil {
		return err
	}

	if info.Telephone != nil {
		client.Telephone = *info.Telephone
	}
	if info.Email != nil {
		client.Email = *info.Email
	}
	if info.NCI != nil {
		client.CNI = *info.NCI
	}
	if fields := domain.ValidateClient(client); len(fields) > 0 {
		return domain.NewValidationError(fields)
	}
	client.UpdatedAt = s.clock.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := s.comptes.UpdateTx(ctx, tx, compte); err != nil {
		return err
	}
	if err := s.clients.UpdateTx(ctx, tx, client); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// generateNumeroCompte draws 'C' + an 8-digit zero-padded integer in
// [1, 99999999].
func generateNumeroCompte() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(99999999))
	if err != nil {
		return "", fmt.Errorf("generateNumeroCompte: %w", err)
	}
	return fmt.Sprintf("C%08d", n.Int64()+1), nil
}
