package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/mileage-log/internal/domain"
)

// EntryResponse is one travel entry as returned to clients.
type EntryResponse struct {
	ID        uuid.UUID          `json:"id"`
	EntryDate openapi_types.Date `json:"entry_date"`
	Trip      string             `json:"trip"`
	Miles     float64            `json:"miles"`
	Purpose   string             `json:"purpose"`
	CreatedAt time.Time          `json:"created_at"`
}

// MonthResponse is the body of GET /entries.
type MonthResponse struct {
	Month      string             `json:"month"`
	Label      string             `json:"label"`
	Start      openapi_types.Date `json:"start"`
	End        openapi_types.Date `json:"end"`
	Entries    []EntryResponse    `json:"entries"`
	TotalMiles float64            `json:"total_miles"`
}

// CreateEntryRequest is the body of POST /entries. Miles may be sent as a
// JSON number or as the raw text typed into the form.
type CreateEntryRequest struct {
	EntryDate string          `json:"entry_date"`
	Trip      string          `json:"trip"`
	Miles     json.RawMessage `json:"miles"`
	Purpose   string          `json:"purpose"`
}

// ListEntries handles GET /entries?month=YYYY-MM. Without a month it returns
// the current one.
func (s *Server) ListEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := s.caller(w, r)
	if !ok {
		return
	}
	month, err := s.monthParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	sum, err := s.entries.List(r.Context(), id.UserID, month)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthResponse(sum))
}

// CreateEntry handles POST /entries.
// Every invalid field is reported at once with HTTP 422.
func (s *Server) CreateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := s.caller(w, r)
	if !ok {
		return
	}

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("payload_too_large", "request body is too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, requestBody("request body must be a JSON object"))
		return
	}
	miles, err := milesText(req.Miles)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("miles must be a number or a string"))
		return
	}

	created, err := s.entries.Create(r.Context(), id.UserID, domain.RawEntryInput{
		EntryDate: req.EntryDate,
		Trip:      req.Trip,
		Miles:     miles,
		Purpose:   req.Purpose,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryResponse(created))
}

// DeleteEntry handles DELETE /entries/{id}?confirm=true.
// Deletion is permanent, so the caller must confirm it explicitly; without
// confirm=true the request is refused with HTTP 428.
func (s *Server) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := s.caller(w, r)
	if !ok {
		return
	}

	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not_found", "entry not found"))
		return
	}
	if confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); !confirmed {
		writeJSON(w, http.StatusPreconditionRequired, errorBody("confirmation_required",
			"deleting an entry cannot be undone; repeat the request with confirm=true"))
		return
	}

	if err := s.entries.Delete(r.Context(), id.UserID, entryID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// monthParam reads ?month=, defaulting to the service's current month.
func (s *Server) monthParam(r *http.Request) (domain.Month, error) {
	token := r.URL.Query().Get("month")
	if token == "" {
		return s.entries.CurrentMonth(), nil
	}
	return domain.ParseMonth(token)
}

// milesText turns the raw JSON miles value into the text the validator
// checks. A missing or null value becomes "".
func milesText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

func toEntryResponse(e domain.TravelEntry) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		EntryDate: openapi_types.Date{Time: e.EntryDate},
		Trip:      e.Trip,
		Miles:     e.Miles,
		Purpose:   e.Purpose,
		CreatedAt: e.CreatedAt,
	}
}

func toMonthResponse(sum domain.MonthSummary) MonthResponse {
	entries := make([]EntryResponse, 0, len(sum.Entries))
	for _, e := range sum.Entries {
		entries = append(entries, toEntryResponse(e))
	}
	return MonthResponse{
		Month:      sum.Month.String(),
		Label:      sum.Month.Label(),
		Start:      openapi_types.Date{Time: sum.Range.Start},
		End:        openapi_types.Date{Time: sum.Range.End},
		Entries:    entries,
		TotalMiles: sum.TotalMiles,
	}
}
