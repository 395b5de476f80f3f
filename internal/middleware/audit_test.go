package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daisamonteiro/banque-backoffice/internal/auth"
	"github.com/daisamonteiro/banque-backoffice/internal/domain"
)

type mockAuditSink struct {
	entries []*domain.OperationLog
	err     error
}

func (m *mockAuditSink) Create(_ context.Context, l *domain.OperationLog) error {
	m.entries = append(m.entries, l)
	return m.err
}

const auditPrefix = "/monteiro.daisa/v1/comptes"

func auditRequest(t *testing.T, sink *mockAuditSink, method, path, body string, adminID *uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the handler must still see the body after the middleware read it
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, body, string(b))
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if adminID != nil {
		req = req.WithContext(auth.ContextWithAdminID(req.Context(), *adminID))
	}
	rec := httptest.NewRecorder()
	Audit(sink, auditPrefix)(inner).ServeHTTP(rec, req)
	return rec
}

func TestAudit_RecordsMutatingRequest(t *testing.T) {
	sink := &mockAuditSink{}
	adminID := uuid.New()

	auditRequest(t, sink, http.MethodPost, auditPrefix, `{"type":"epargne"}`, &adminID)

	require.Len(t, sink.entries, 1)
	entry := sink.entries[0]
	assert.Equal(t, domain.OperationCreate, entry.Operation)
	assert.Equal(t, "Compte créé", entry.Message)
	assert.Equal(t, "comptes", entry.Resource)
	assert.Equal(t, http.StatusCreated, entry.StatusCode)
	assert.Equal(t, "epargne", entry.Payload["type"])
	require.NotNil(t, entry.AdminID)
	assert.Equal(t, adminID, *entry.AdminID)
}

func TestAudit_OperationMessages(t *testing.T) {
	tests := []struct {
		method  string
		path    string
		op      domain.Operation
		message string
	}{
		{http.MethodPost, auditPrefix + "/x/bloquer", domain.OperationUpdate, "Compte bloqué"},
		{http.MethodPost, auditPrefix + "/x/debloquer", domain.OperationUpdate, "Compte débloqué"},
		{http.MethodPatch, auditPrefix + "/x", domain.OperationUpdate, "Compte modifié"},
		{http.MethodDelete, auditPrefix + "/x", domain.OperationDelete, "Compte fermé"},
	}

	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			sink := &mockAuditSink{}

			auditRequest(t, sink, tc.method, tc.path, `{}`, nil)

			require.Len(t, sink.entries, 1)
			assert.Equal(t, tc.op, sink.entries[0].Operation)
			assert.Equal(t, tc.message, sink.entries[0].Message)
			assert.Nil(t, sink.entries[0].AdminID)
		})
	}
}

func TestAudit_RedactsPasswords(t *testing.T) {
	sink := &mockAuditSink{}

	body := `{"password":"secret123","informationsClient":{"telephone":"770123456","password":"secret123"}}`
	auditRequest(t, sink, http.MethodPatch, auditPrefix+"/x", body, nil)

	require.Len(t, sink.entries, 1)
	payload := sink.entries[0].Payload
	assert.NotContains(t, payload, "password")
	info := payload["informationsClient"].(map[string]any)
	assert.NotContains(t, info, "password")
	assert.Equal(t, "770123456", info["telephone"])
}

func TestAudit_SkipsReadsAndForeignPaths(t *testing.T) {
	sink := &mockAuditSink{}

	auditRequest(t, sink, http.MethodGet, auditPrefix, "", nil)
	auditRequest(t, sink, http.MethodPost, "/monteiro.daisa/v1/clients", `{}`, nil)

	assert.Empty(t, sink.entries)
}

func TestAudit_SinkFailureDoesNotFailRequest(t *testing.T) {
	sink := &mockAuditSink{err: assert.AnError}

	rec := auditRequest(t, sink, http.MethodPost, auditPrefix, `{}`, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
}
