package testutil

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/daisamonteiro/banque-backoffice/internal/domain"
)

var seededTelephones int

// nextTelephone hands out distinct valid Senegalese mobile numbers so that
// seeded clients never trip the unique constraint.
func nextTelephone() string {
	seededTelephones++
	return fmt.Sprintf("77%07d", seededTelephones)
}

func SeedClient(t *testing.T, db *sql.DB, nom, prenom string, sexe domain.Sexe) *domain.Client {
	t.Helper()

	cniPrefix := "1"
	if sexe == domain.SexeFeminin {
		cniPrefix = "2"
	}
	c := &domain.Client{
		ID:        uuid.New(),
		Nom:       nom,
		Prenom:    prenom,
		Telephone: nextTelephone(),
		CNI:       fmt.Sprintf("%s%012d", cniPrefix, seededTelephones),
		Sexe:      sexe,
		Statut:    "actif",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO clients (id, nom, prenom, telephone, cni, email, sexe, adresse, statut, metadata, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.Nom, c.Prenom, c.Telephone, c.CNI, c.Email, c.Sexe, c.Adresse, c.Statut, c.Metadata, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed client %s %s: %v", prenom, nom, err)
	}
	return c
}

func SeedCompte(t *testing.T, db *sql.DB, clientID uuid.UUID, numero string, statut domain.CompteStatut) *domain.Compte {
	t.Helper()

	now := time.Now().UTC()
	c := &domain.Compte{
		ID:           uuid.New(),
		ClientID:     clientID,
		NumeroCompte: numero,
		Titulaire:    "Titulaire Test",
		Type:         domain.TypeEpargne,
		Devise:       domain.DeviseFCFA,
		DateCreation: now,
		Statut:       statut,
		Metadata:     domain.Metadata{domain.MetaVersion: 1},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := db.Exec(
		`INSERT INTO comptes (id, client_id, numero_compte, titulaire, type, devise, date_creation, statut, date_fermeture, metadata, created_at, updated_at, deleted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.ClientID, c.NumeroCompte, c.Titulaire, c.Type, c.Devise, c.DateCreation, c.Statut, c.DateFermeture, c.Metadata, c.CreatedAt, c.UpdatedAt, c.DeletedAt,
	)
	if err != nil {
		t.Fatalf("seed compte %s: %v", numero, err)
	}
	return c
}

func SeedTransaction(t *testing.T, db *sql.DB, compteID uuid.UUID, txType domain.TransactionType, montant string) *domain.Transaction {
	t.Helper()

	amount, err := decimal.NewFromString(montant)
	if err != nil {
		t.Fatalf("parse montant %q: %v", montant, err)
	}
	now := time.Now().UTC()
	tx := &domain.Transaction{
		ID:              uuid.New(),
		CompteID:        compteID,
		Type:            txType,
		Montant:         amount,
		Devise:          domain.DeviseFCFA,
		DateTransaction: &now,
		Statut:          "valide",
		CreatedAt:       now,
	}

	_, err = db.Exec(
		`INSERT INTO transactions (id, compte_id, type, montant, devise, description, date_transaction, statut, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		tx.ID, tx.CompteID, tx.Type, tx.Montant, tx.Devise, tx.Description, tx.DateTransaction, tx.Statut, tx.Metadata, tx.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed transaction %s %s: %v", txType, montant, err)
	}
	return tx
}

func SeedAdmin(t *testing.T, db *sql.DB, email, password string) *domain.Admin {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	a := &domain.Admin{
		ID:           uuid.New(),
		Email:        email,
		Nom:          "Admin Test",
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO admins (id, email, nom, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Email, a.Nom, a.PasswordHash, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed admin %s: %v", email, err)
	}
	return a
}

// GetCompteRaw reads a compte regardless of soft deletion. Tests use it to
// assert on rows the repository's visible queries no longer return.
func GetCompteRaw(t *testing.T, db *sql.DB, id uuid.UUID) (statut domain.CompteStatut, deletedAt *time.Time) {
	t.Helper()

	err := db.QueryRow(
		`SELECT statut, deleted_at FROM comptes WHERE id = $1`, id,
	).Scan(&statut, &deletedAt)
	if err != nil {
		t.Fatalf("get compte %s: %v", id, err)
	}
	return statut, deletedAt
}

func CountComptes(t *testing.T, db *sql.DB, clientID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM comptes WHERE client_id = $1 AND deleted_at IS NULL`, clientID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count comptes for client %s: %v", clientID, err)
	}
	return count
}
