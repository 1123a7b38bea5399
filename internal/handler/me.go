package handler

import (
	"net/http"

	"github.com/pkordes/mileage-log/internal/domain"
	"github.com/pkordes/mileage-log/internal/identity"
)

// MeResponse is the body of GET /me.
type MeResponse struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// PresetResponse is one preset trip.
type PresetResponse struct {
	Name           string  `json:"name"`
	OneWayMiles    float64 `json:"one_way_miles"`
	RoundTripMiles float64 `json:"round_trip_miles"`
}

// GetMe handles GET /me and echoes the authenticated caller.
func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	id, ok := s.caller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, MeResponse{UserID: id.UserID, DisplayName: id.DisplayName})
}

// ListPresets handles GET /presets.
func (s *Server) ListPresets(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.caller(w, r); !ok {
		return
	}
	out := make([]PresetResponse, 0, len(domain.PresetTrips))
	for _, p := range domain.PresetTrips {
		out = append(out, PresetResponse{Name: p.Name, OneWayMiles: p.OneWayMiles, RoundTripMiles: p.RoundMiles})
	}
	writeJSON(w, http.StatusOK, out)
}

// caller returns the identity placed in the context by the auth middleware,
// writing a 401 when there is none.
func (s *Server) caller(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized", "sign in required"))
	}
	return id, ok
}
