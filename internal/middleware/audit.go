package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daisamonteiro/banque-backoffice/internal/auth"
	"github.com/daisamonteiro/banque-backoffice/internal/domain"
	"github.com/daisamonteiro/banque-backoffice/internal/logging"
)

type auditSink interface {
	Create(ctx context.Context, l *domain.OperationLog) error
}

// Audit appends an operation_logs row for every mutating request that
// reaches the comptes resource. A failed write never fails the request;
// it is logged and dropped.
func Audit(sink auditSink, pathPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op, message := describeOperation(r.Method, r.URL.Path)
			if op == domain.OperationOther || !strings.HasPrefix(r.URL.Path, pathPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			var body []byte
			if r.Body != nil {
				body, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			entry := &domain.OperationLog{
				ID:         uuid.New(),
				Operation:  op,
				Resource:   "comptes",
				Method:     r.Method,
				Path:       r.URL.Path,
				IP:         clientIP(r),
				Message:    message,
				Payload:    auditPayload(body),
				StatusCode: rec.status,
				CreatedAt:  time.Now().UTC(),
			}
			if adminID, ok := auth.AdminIDFromContext(r.Context()); ok {
				entry.AdminID = &adminID
			}

			if err := sink.Create(r.Context(), entry); err != nil {
				logging.FromContext(r.Context()).Error("audit log write failed",
					"error", err,
					"path", r.URL.Path,
				)
			}
		})
	}
}

func describeOperation(method, path string) (domain.Operation, string) {
	switch {
	case strings.HasSuffix(path, "/bloquer"):
		return domain.OperationUpdate, "Compte bloqué"
	case strings.HasSuffix(path, "/debloquer"):
		return domain.OperationUpdate, "Compte débloqué"
	}
	switch method {
	case http.MethodPost:
		return domain.OperationCreate, "Compte créé"
	case http.MethodPut, http.MethodPatch:
		return domain.OperationUpdate, "Compte modifié"
	case http.MethodDelete:
		return domain.OperationDelete, "Compte fermé"
	}
	return domain.OperationOther, ""
}

// auditPayload decodes the request body for the audit trail, stripping
// credential fields.
func auditPayload(body []byte) domain.Metadata {
	if len(body) == 0 {
		return nil
	}
	var payload domain.Metadata
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.Metadata{"raw": string(body)}
	}
	delete(payload, "password")
	if info, ok := payload["informationsClient"].(map[string]any); ok {
		delete(info, "password")
	}
	return payload
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
