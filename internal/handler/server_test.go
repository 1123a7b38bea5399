package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/mileage-log/internal/domain"
	"github.com/pkordes/mileage-log/internal/handler"
	"github.com/pkordes/mileage-log/internal/identity"
)

// mockEntryServicer is a test double for handler.EntryServicer.
// Set only the method fields your test needs.
type mockEntryServicer struct {
	currentMonth func() domain.Month
	list         func(ctx context.Context, userID string, month domain.Month) (domain.MonthSummary, error)
	create       func(ctx context.Context, userID string, raw domain.RawEntryInput) (domain.TravelEntry, error)
	delete       func(ctx context.Context, userID string, id uuid.UUID) error
	export       func(ctx context.Context, ident domain.Identity, month domain.Month) (domain.ExportArtifact, error)
}

func (m *mockEntryServicer) CurrentMonth() domain.Month { return m.currentMonth() }
func (m *mockEntryServicer) List(ctx context.Context, userID string, month domain.Month) (domain.MonthSummary, error) {
	return m.list(ctx, userID, month)
}
func (m *mockEntryServicer) Create(ctx context.Context, userID string, raw domain.RawEntryInput) (domain.TravelEntry, error) {
	return m.create(ctx, userID, raw)
}
func (m *mockEntryServicer) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	return m.delete(ctx, userID, id)
}
func (m *mockEntryServicer) Export(ctx context.Context, ident domain.Identity, month domain.Month) (domain.ExportArtifact, error) {
	return m.export(ctx, ident, month)
}

// compile-time check: mockEntryServicer must satisfy handler.EntryServicer.
var _ handler.EntryServicer = (*mockEntryServicer)(nil)

// ---- helpers ---------------------------------------------------------------

var testCaller = domain.Identity{UserID: "user-123", DisplayName: "Jane Q. Public"}

// newHTTPHandler wires a Server with the given mock into its router, signed
// in as testCaller. This mirrors how main.go wires it behind the auth
// middleware.
func newHTTPHandler(svc handler.EntryServicer) http.Handler {
	return signedIn(testCaller, handler.NewServer(svc, quietLogger()).Routes())
}

// newAnonymousHandler wires the router without any caller in context.
func newAnonymousHandler(svc handler.EntryServicer) http.Handler {
	return handler.NewServer(svc, quietLogger()).Routes()
}

func signedIn(id domain.Identity, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
	})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, body io.Reader) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}
