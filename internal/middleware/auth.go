package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkordes/mileage-log/internal/domain"
	"github.com/pkordes/mileage-log/internal/identity"
)

// Headers read by the dev auth shim.
const (
	DebugSubjectHeader = "X-Debug-Subject"
	DebugNameHeader    = "X-Debug-Name"
)

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
}

// NewAuthMiddleware enforces Authorization: Bearer <JWT> on every path except
// those listed in public. On success the caller's identity is stored in the
// request context (see identity.FromContext).
func NewAuthMiddleware(v TokenVerifier, public ...string) func(http.Handler) http.Handler {
	skip := pathSet(public)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			authz := r.Header.Get("Authorization")
			if authz == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing Authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(authz, prefix) {
				writeError(w, http.StatusUnauthorized, "unauthorized", "malformed Authorization header")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, prefix))
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			id, err := v.Verify(r.Context(), raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
		})
	}
}

// NewDevAuthMiddleware is a local-only auth shim. It takes the subject from
// X-Debug-Subject (falling back to defaultSubject) and the display name from
// X-Debug-Name (falling back to defaultName). Never enable it in production.
func NewDevAuthMiddleware(defaultSubject, defaultName string, public ...string) func(http.Handler) http.Handler {
	skip := pathSet(public)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			sub := strings.TrimSpace(r.Header.Get(DebugSubjectHeader))
			if sub == "" {
				sub = strings.TrimSpace(defaultSubject)
			}
			if sub == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing subject (set "+DebugSubjectHeader+")")
				return
			}
			name := strings.TrimSpace(r.Header.Get(DebugNameHeader))
			if name == "" {
				name = strings.TrimSpace(defaultName)
			}

			id := domain.Identity{UserID: sub, DisplayName: name}
			next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
		})
	}
}

func pathSet(paths []string) map[string]bool {
	m := make(map[string]bool, len(paths))
	for _, p := range paths {
		m[p] = true
	}
	return m
}

// errorBody matches the handler package's error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
