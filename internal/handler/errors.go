package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/mileage-log/internal/domain"
)

// ErrorResponse is the JSON envelope of every error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failed request. Fields is set only for
// validation failures.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError is one rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// validationBody lists every rejected field of a domain.ValidationErrors.
func validationBody(err error) ErrorResponse {
	body := errorBody("validation_error", "one or more fields are invalid")
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		body.Error.Fields = make([]FieldError, 0, len(verrs))
		for _, v := range verrs {
			body.Error.Fields = append(body.Error.Fields, FieldError{
				Field:   v.Field,
				Reason:  string(v.Reason),
				Message: v.Message,
			})
		}
	}
	return body
}

// requestBody returns an ErrorResponse for a bad request rejected before
// reaching the service layer (e.g. missing or malformed body).
func requestBody(message string) ErrorResponse {
	return errorBody("validation_error", message)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps a service error to its status and error code.
// Backend failures keep their cause out of the response and in the log.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := http.StatusInternalServerError, errorBody("internal_error", "internal server error")

	switch {
	case errors.Is(err, domain.ErrValidation):
		status, body = http.StatusUnprocessableEntity, validationBody(err)
	case errors.Is(err, domain.ErrInvalidMonth):
		status, body = http.StatusBadRequest, errorBody("invalid_month", "month must be formatted YYYY-MM")
	case errors.Is(err, domain.ErrNotFound):
		status, body = http.StatusNotFound, errorBody("not_found", "entry not found")
	case errors.Is(err, domain.ErrUnauthenticated):
		status, body = http.StatusUnauthorized, errorBody("unauthorized", "sign in required")
	case errors.Is(err, domain.ErrCapacityExceeded):
		status, body = http.StatusUnprocessableEntity, errorBody("capacity_exceeded",
			"this month has more entries than the spreadsheet template can hold")
	case errors.Is(err, domain.ErrLoad):
		status, body = http.StatusBadGateway, errorBody("load_failed", domain.ErrLoad.Error())
	case errors.Is(err, domain.ErrMutation):
		status, body = http.StatusBadGateway, errorBody("mutation_failed", domain.ErrMutation.Error())
	case errors.Is(err, domain.ErrExport):
		status, body = http.StatusInternalServerError, errorBody("export_failed", domain.ErrExport.Error())
	}

	if status >= http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "request failed",
			"error", err,
			"code", body.Error.Code,
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	}
	writeJSON(w, status, body)
}
