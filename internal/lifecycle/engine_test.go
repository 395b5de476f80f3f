package lifecycle

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daisamonteiro/banque-backoffice/internal/domain"
)

var testNow = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

func activeCompte() domain.Compte {
	return domain.Compte{
		ID:           uuid.New(),
		ClientID:     uuid.New(),
		NumeroCompte: "C00012345",
		Titulaire:    "Awa Diop",
		Type:         domain.TypeEpargne,
		Devise:       domain.DeviseFCFA,
		DateCreation: testNow.AddDate(-1, 0, 0),
		Statut:       domain.StatutActif,
		Metadata:     domain.Metadata{domain.MetaVersion: 1, "source": "import"},
	}
}

func TestApply_Block(t *testing.T) {
	c := activeCompte()

	out, err := Apply(c, Block{Motif: "fraude suspectee", Duree: 2, Unite: domain.UniteSemaines}, testNow)
	require.NoError(t, err)

	assert.Equal(t, domain.StatutBloque, out.Statut)
	assert.Equal(t, "fraude suspectee", out.Metadata[domain.MetaMotifBlocage])
	assert.Equal(t, testNow.Format(time.RFC3339), out.Metadata[domain.MetaDateDebutBlocage])
	assert.Equal(t, testNow.AddDate(0, 0, 14).Format(time.RFC3339), out.Metadata[domain.MetaDateFinBlocage])
	assert.Equal(t, 2, out.Metadata[domain.MetaDureeBlocage])
	assert.Equal(t, "semaines", out.Metadata[domain.MetaUniteDuree])

	// pre-existing keys survive the merge
	assert.Equal(t, "import", out.Metadata["source"])
	assert.Equal(t, 2, out.Metadata[domain.MetaVersion])
	assert.Equal(t, testNow.Format(time.RFC3339), out.Metadata[domain.MetaDerniereModification])
}

func TestApply_BlockMotifLength(t *testing.T) {
	// length limits count characters, not bytes
	longAccented := strings.Repeat("é", 255)

	out, err := Apply(activeCompte(), Block{Motif: longAccented, Duree: 1, Unite: domain.UniteMois}, testNow)
	require.NoError(t, err)
	assert.Equal(t, longAccented, out.Metadata[domain.MetaMotifBlocage])

	_, err = Apply(activeCompte(), Block{Motif: strings.Repeat("é", 256), Duree: 1, Unite: domain.UniteMois}, testNow)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestApply_BlockRefusals(t *testing.T) {
	blocked := activeCompte()
	blocked.Statut = domain.StatutBloque
	closed := activeCompte()
	closed.Statut = domain.StatutFerme

	tests := []struct {
		name      string
		compte    domain.Compte
		event     Block
		wantErrIs error
	}{
		{
			name:      "missing motif",
			compte:    activeCompte(),
			event:     Block{Duree: 1, Unite: domain.UniteMois},
			wantErrIs: domain.ErrMotifRequired,
		},
		{
			name:      "already blocked",
			compte:    blocked,
			event:     Block{Motif: "x", Duree: 1, Unite: domain.UniteMois},
			wantErrIs: domain.ErrInvalidStateTransition,
		},
		{
			name:      "closed account",
			compte:    closed,
			event:     Block{Motif: "x", Duree: 1, Unite: domain.UniteMois},
			wantErrIs: domain.ErrInvalidStateTransition,
		},
		{
			name:      "zero duration",
			compte:    activeCompte(),
			event:     Block{Motif: "x", Duree: 0, Unite: domain.UniteMois},
			wantErrIs: domain.ErrInvalidDuree,
		},
		{
			name:      "unknown unit",
			compte:    activeCompte(),
			event:     Block{Motif: "x", Duree: 1, Unite: "fortnights"},
			wantErrIs: domain.ErrInvalidDureeUnite,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Apply(tc.compte, tc.event, testNow)
			require.ErrorIs(t, err, tc.wantErrIs)
			// refused transitions leave the compte untouched
			assert.Equal(t, tc.compte, out)
		})
	}
}

func TestApply_Unblock(t *testing.T) {
	c := activeCompte()
	blocked, err := Apply(c, Block{Motif: "impayes", Duree: 30, Unite: domain.UniteJours}, testNow)
	require.NoError(t, err)

	later := testNow.Add(48 * time.Hour)
	out, err := Apply(blocked, Unblock{}, later)
	require.NoError(t, err)

	assert.Equal(t, domain.StatutActif, out.Statut)
	for _, key := range []string{
		domain.MetaMotifBlocage,
		domain.MetaDateDebutBlocage,
		domain.MetaDateFinBlocage,
		domain.MetaDureeBlocage,
		domain.MetaUniteDuree,
	} {
		assert.NotContains(t, out.Metadata, key)
	}
	assert.Equal(t, later.Format(time.RFC3339), out.Metadata[domain.MetaDateDeblocage])
	assert.Equal(t, "import", out.Metadata["source"])
	assert.Equal(t, 3, out.Metadata[domain.MetaVersion])
}

func TestApply_UnblockRequiresBlocked(t *testing.T) {
	c := activeCompte()

	out, err := Apply(c, Unblock{}, testNow)
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Equal(t, c, out)
}

func TestApply_Close(t *testing.T) {
	c := activeCompte()

	out, err := Apply(c, Close{}, testNow)
	require.NoError(t, err)

	assert.Equal(t, domain.StatutFerme, out.Statut)
	require.NotNil(t, out.DateFermeture)
	assert.Equal(t, testNow, *out.DateFermeture)
	require.NotNil(t, out.DeletedAt)
	assert.Equal(t, testNow, *out.DeletedAt)
	assert.Equal(t, testNow.Format(time.RFC3339), out.Metadata[domain.MetaDateFermeture])
}

func TestApply_CloseBlockedAccount(t *testing.T) {
	c := activeCompte()
	blocked, err := Apply(c, Block{Motif: "impayes", Duree: 1, Unite: domain.UniteMois}, testNow)
	require.NoError(t, err)

	out, err := Apply(blocked, Close{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.StatutFerme, out.Statut)
	require.NotNil(t, out.DeletedAt)
}

func TestApply_Update(t *testing.T) {
	t.Run("empty update refused", func(t *testing.T) {
		_, err := Apply(activeCompte(), Update{}, testNow)
		require.ErrorIs(t, err, domain.ErrEmptyUpdate)
	})

	t.Run("titulaire and metadata", func(t *testing.T) {
		titulaire := "Moussa Ndiaye"
		out, err := Apply(activeCompte(), Update{
			Titulaire: &titulaire,
			Metadata:  domain.Metadata{"agence": "Dakar Plateau"},
		}, testNow)
		require.NoError(t, err)
		assert.Equal(t, "Moussa Ndiaye", out.Titulaire)
		assert.Equal(t, "Dakar Plateau", out.Metadata["agence"])
		assert.Equal(t, "import", out.Metadata["source"])
	})

	t.Run("statut bloque requires motif", func(t *testing.T) {
		statut := domain.StatutBloque
		c := activeCompte()
		out, err := Apply(c, Update{Statut: &statut}, testNow)
		require.ErrorIs(t, err, domain.ErrMotifRequired)
		assert.Equal(t, c, out)
	})

	t.Run("statut bloque defaults to one month", func(t *testing.T) {
		statut := domain.StatutBloque
		motif := "verification KYC"
		out, err := Apply(activeCompte(), Update{Statut: &statut, MotifBlocage: &motif}, testNow)
		require.NoError(t, err)
		assert.Equal(t, domain.StatutBloque, out.Statut)
		assert.Equal(t, "verification KYC", out.Metadata[domain.MetaMotifBlocage])
		fin, err := EndOfBlock(testNow, 1, domain.UniteMois)
		require.NoError(t, err)
		assert.Equal(t, fin.Format(time.RFC3339), out.Metadata[domain.MetaDateFinBlocage])
	})

	t.Run("statut actif clears motif only", func(t *testing.T) {
		c := activeCompte()
		blocked, err := Apply(c, Block{Motif: "impayes", Duree: 1, Unite: domain.UniteMois}, testNow)
		require.NoError(t, err)

		statut := domain.StatutActif
		out, err := Apply(blocked, Update{Statut: &statut}, testNow)
		require.NoError(t, err)
		assert.Equal(t, domain.StatutActif, out.Statut)
		assert.NotContains(t, out.Metadata, domain.MetaMotifBlocage)
		assert.Contains(t, out.Metadata, domain.MetaDateDebutBlocage)
	})

	t.Run("statut ferme closes", func(t *testing.T) {
		statut := domain.StatutFerme
		out, err := Apply(activeCompte(), Update{Statut: &statut}, testNow)
		require.NoError(t, err)
		assert.Equal(t, domain.StatutFerme, out.Statut)
		require.NotNil(t, out.DeletedAt)
		assert.Equal(t, testNow.Format(time.RFC3339), out.Metadata[domain.MetaDateFermeture])
	})

	t.Run("unknown statut refused", func(t *testing.T) {
		statut := domain.CompteStatut("suspendu")
		c := activeCompte()
		out, err := Apply(c, Update{Statut: &statut}, testNow)
		require.ErrorIs(t, err, domain.ErrInvalidStatut)
		assert.Equal(t, c, out)
	})
}

func TestApply_VersionBumpsAcrossTransitions(t *testing.T) {
	c := activeCompte()

	blocked, err := Apply(c, Block{Motif: "impayes", Duree: 1, Unite: domain.UniteMois}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, blocked.Metadata[domain.MetaVersion])

	unblocked, err := Apply(blocked, Unblock{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, unblocked.Metadata[domain.MetaVersion])

	closed, err := Apply(unblocked, Close{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 4, closed.Metadata[domain.MetaVersion])
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	c := activeCompte()
	before := c.Metadata.Clone()

	_, err := Apply(c, Block{Motif: "impayes", Duree: 1, Unite: domain.UniteMois}, testNow)
	require.NoError(t, err)

	assert.Equal(t, domain.StatutActif, c.Statut)
	assert.Equal(t, before, c.Metadata.Clone())
}
