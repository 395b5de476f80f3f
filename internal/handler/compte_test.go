package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daisamonteiro/banque-backoffice/internal/domain"
	"github.com/daisamonteiro/banque-backoffice/internal/repository"
	"github.com/daisamonteiro/banque-backoffice/internal/service"
)

type mockCompteService struct {
	compte  *domain.Compte
	comptes []domain.Compte
	solde   decimal.Decimal
	err     error

	createdInput service.CreateCompteInput
	updatedInput service.UpdateCompteInput
	fermerMotif  string
}

func (m *mockCompteService) Create(_ context.Context, in service.CreateCompteInput) (*domain.Compte, error) {
	m.createdInput = in
	return m.compte, m.err
}

func (m *mockCompteService) List(_ context.Context, _ repository.ListFilter) ([]domain.Compte, int, error) {
	return m.comptes, len(m.comptes), m.err
}

func (m *mockCompteService) ListByClient(_ context.Context, _ uuid.UUID) ([]domain.Compte, error) {
	return m.comptes, m.err
}

func (m *mockCompteService) Get(_ context.Context, _ uuid.UUID) (*domain.Compte, error) {
	return m.compte, m.err
}

func (m *mockCompteService) Solde(_ context.Context, _ uuid.UUID) (decimal.Decimal, error) {
	return m.solde, m.err
}

func (m *mockCompteService) Bloquer(_ context.Context, _ uuid.UUID, _ string, _ int, _ string) (*domain.Compte, error) {
	return m.compte, m.err
}

func (m *mockCompteService) Debloquer(_ context.Context, _ uuid.UUID) (*domain.Compte, error) {
	return m.compte, m.err
}

func (m *mockCompteService) Fermer(_ context.Context, _ uuid.UUID, motif string) (*domain.Compte, error) {
	m.fermerMotif = motif
	return m.compte, m.err
}

func (m *mockCompteService) Update(_ context.Context, _ uuid.UUID, in service.UpdateCompteInput) (*domain.Compte, error) {
	m.updatedInput = in
	return m.compte, m.err
}

type mockTransactionLister struct {
	txs []domain.Transaction
}

func (m *mockTransactionLister) GetByCompteID(_ context.Context, _ uuid.UUID, _, _ int) ([]domain.Transaction, int, error) {
	return m.txs, len(m.txs), nil
}

func testCompte() *domain.Compte {
	now := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	return &domain.Compte{
		ID:           uuid.New(),
		ClientID:     uuid.New(),
		NumeroCompte: "C00012345",
		Titulaire:    "Awa Diop",
		Type:         domain.TypeEpargne,
		Devise:       domain.DeviseFCFA,
		DateCreation: now,
		Statut:       domain.StatutActif,
		Metadata:     domain.Metadata{domain.MetaVersion: 1},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func doRequest(h http.HandlerFunc, method, target, pathVar, pathVal, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if pathVar != "" {
		req.SetPathValue(pathVar, pathVal)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestShowCompte(t *testing.T) {
	compte := testCompte()
	svc := &mockCompteService{compte: compte, solde: decimal.NewFromInt(75000)}
	h := NewCompteHandler(svc, &mockTransactionLister{})

	rec := doRequest(h.Show, http.MethodGet, "/comptes/"+compte.ID.String(), "compteId", compte.ID.String(), "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "C00012345", data["numeroCompte"])
	assert.Equal(t, "2026-03-15", data["dateCreation"])
	assert.Equal(t, "75000", data["solde"])
}

func TestShowCompte_NotFound(t *testing.T) {
	svc := &mockCompteService{err: domain.ErrCompteNotFound}
	h := NewCompteHandler(svc, &mockTransactionLister{})

	rec := doRequest(h.Show, http.MethodGet, "/comptes/x", "compteId", uuid.NewString(), "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "COMPTE_NOT_FOUND", body["error"].(map[string]any)["code"])
}

func TestShowCompte_BadUUID(t *testing.T) {
	h := NewCompteHandler(&mockCompteService{}, &mockTransactionLister{})

	rec := doRequest(h.Show, http.MethodGet, "/comptes/not-a-uuid", "compteId", "not-a-uuid", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCompte_Handler(t *testing.T) {
	compte := testCompte()
	svc := &mockCompteService{compte: compte}
	h := NewCompteHandler(svc, &mockTransactionLister{})

	body := `{"type":"epargne","client_id":"` + compte.ClientID.String() + `"}`
	rec := doRequest(h.Create, http.MethodPost, "/comptes", "", "", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, compte.ClientID, svc.createdInput.ClientID)
	assert.Equal(t, "epargne", svc.createdInput.Type)
}

func TestCreateCompte_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing type", `{"client_id":"` + uuid.NewString() + `"}`, "type"},
		{"unknown type", `{"type":"livret","client_id":"` + uuid.NewString() + `"}`, "type"},
		{"missing client_id", `{"type":"epargne"}`, "client_id"},
		{"bad client_id", `{"type":"epargne","client_id":"nope"}`, "client_id"},
		{"bad devise", `{"type":"epargne","devise":"EUR","client_id":"` + uuid.NewString() + `"}`, "devise"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewCompteHandler(&mockCompteService{}, &mockTransactionLister{})

			rec := doRequest(h.Create, http.MethodPost, "/comptes", "", "", tc.body)

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			body := decodeResponse(t, rec)
			errObj := body["error"].(map[string]any)
			assert.Equal(t, "VALIDATION_FAILED", errObj["code"])

			details := errObj["details"].([]any)
			fields := make([]string, 0, len(details))
			for _, d := range details {
				fields = append(fields, d.(map[string]any)["field"].(string))
			}
			assert.Contains(t, fields, tc.wantField)
		})
	}
}

func TestBloquerCompte_Handler(t *testing.T) {
	compte := testCompte()
	compte.Statut = domain.StatutBloque
	compte.Metadata = compte.Metadata.Merge(domain.Metadata{
		domain.MetaMotifBlocage:     "fraude",
		domain.MetaDateDebutBlocage: "2026-03-15T10:00:00Z",
		domain.MetaDateFinBlocage:   "2026-04-15T10:00:00Z",
	})
	svc := &mockCompteService{compte: compte}
	h := NewCompteHandler(svc, &mockTransactionLister{})

	body := `{"motif":"fraude","duree":1,"unite":"mois"}`
	rec := doRequest(h.Bloquer, http.MethodPost, "/comptes/x/bloquer", "compteId", compte.ID.String(), body)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Compte bloqué avec succès", resp["message"])

	data := resp["data"].(map[string]any)
	assert.Equal(t, "bloque", data["statut"])
	assert.Equal(t, "2026-04-15T10:00:00Z", data["dateDeblocagePrevue"])
}

func TestBloquerCompte_AccentedMotifLength(t *testing.T) {
	compte := testCompte()
	svc := &mockCompteService{compte: compte}
	h := NewCompteHandler(svc, &mockTransactionLister{})

	// 255 accented characters are over 255 bytes but within the limit
	motif := strings.Repeat("é", 255)
	body, err := json.Marshal(map[string]any{"motif": motif, "duree": 1, "unite": "mois"})
	require.NoError(t, err)

	rec := doRequest(h.Bloquer, http.MethodPost, "/comptes/x/bloquer", "compteId", compte.ID.String(), string(body))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBloquerCompte_MissingMotif(t *testing.T) {
	h := NewCompteHandler(&mockCompteService{}, &mockTransactionLister{})

	rec := doRequest(h.Bloquer, http.MethodPost, "/comptes/x/bloquer", "compteId", uuid.NewString(),
		`{"duree":1,"unite":"mois"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBloquerCompte_InvalidTransition(t *testing.T) {
	svc := &mockCompteService{err: domain.ErrInvalidStateTransition}
	h := NewCompteHandler(svc, &mockTransactionLister{})

	rec := doRequest(h.Bloquer, http.MethodPost, "/comptes/x/bloquer", "compteId", uuid.NewString(),
		`{"motif":"fraude","duree":1,"unite":"mois"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, "INVALID_STATE_TRANSITION", body["error"].(map[string]any)["code"])
}

func TestUpdateCompte_NumeroProhibited(t *testing.T) {
	h := NewCompteHandler(&mockCompteService{}, &mockTransactionLister{})

	rec := doRequest(h.Update, http.MethodPatch, "/comptes/x", "compteId", uuid.NewString(),
		`{"numeroCompte":"C99999999"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeResponse(t, rec)
	details := body["error"].(map[string]any)["details"].([]any)
	assert.Equal(t, "numeroCompte", details[0].(map[string]any)["field"])
}

func TestDeleteCompte_Handler(t *testing.T) {
	now := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	compte := testCompte()
	compte.Statut = domain.StatutFerme
	compte.DateFermeture = &now
	svc := &mockCompteService{compte: compte}
	h := NewCompteHandler(svc, &mockTransactionLister{})

	rec := doRequest(h.Delete, http.MethodDelete, "/comptes/x", "compteId", compte.ID.String(),
		`{"motif_fermeture":"demande du client"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "demande du client", svc.fermerMotif)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Compte fermé avec succès", resp["message"])
	assert.Equal(t, "ferme", resp["data"].(map[string]any)["statut"])
}

func TestDeleteCompte_MotifEnforcedByService(t *testing.T) {
	svc := &mockCompteService{err: domain.NewValidationError([]domain.FieldViolation{
		{Field: "motif_fermeture", Message: "required"},
	})}
	h := NewCompteHandler(svc, &mockTransactionLister{})

	rec := doRequest(h.Delete, http.MethodDelete, "/comptes/x", "compteId", uuid.NewString(), "")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, "VALIDATION_FAILED", body["error"].(map[string]any)["code"])
}

func TestListComptes_Pagination(t *testing.T) {
	comptes := []domain.Compte{*testCompte(), *testCompte()}
	svc := &mockCompteService{comptes: comptes}
	h := NewCompteHandler(svc, &mockTransactionLister{})

	rec := doRequest(h.List, http.MethodGet, "/comptes?page=1&per_page=10", "", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"].([]any), 2)

	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pagination["current_page"])
	assert.Equal(t, float64(2), pagination["total"])
}
