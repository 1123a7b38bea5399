package handler

import (
	"mime"
	"net/http"
	"strconv"
)

// GetExport handles GET /export?month=YYYY-MM.
// It returns the month's entries written into the mileage spreadsheet as an
// xlsx attachment. A month with more entries than the template holds is
// refused with HTTP 422.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.caller(w, r)
	if !ok {
		return
	}
	month, err := s.monthParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	artifact, err := s.entries.Export(r.Context(), id, month)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Content)
}
