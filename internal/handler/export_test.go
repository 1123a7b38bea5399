package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/mileage-log/internal/domain"
)

func TestGetExport_200_Attachment(t *testing.T) {
	var gotIdent domain.Identity
	var gotMonth domain.Month
	svc := &mockEntryServicer{
		export: func(_ context.Context, ident domain.Identity, month domain.Month) (domain.ExportArtifact, error) {
			gotIdent, gotMonth = ident, month
			return domain.ExportArtifact{
				Filename:    "Jane_Public_03_2024 Mileage.xlsx",
				ContentType: domain.XLSXContentType,
				Content:     []byte("PK\x03\x04fake"),
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/export?month=2024-03", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testCaller, gotIdent)
	assert.Equal(t, domain.Month{Year: 2024, Month: time.March}, gotMonth)
	assert.Equal(t, domain.XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Jane_Public_03_2024 Mileage.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK\x03\x04fake", rec.Body.String())
}

func TestGetExport_422_CapacityExceeded(t *testing.T) {
	svc := &mockEntryServicer{
		export: func(_ context.Context, _ domain.Identity, _ domain.Month) (domain.ExportArtifact, error) {
			return domain.ExportArtifact{}, fmt.Errorf("export: %w: 30 entries", domain.ErrCapacityExceeded)
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/export?month=2024-03", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "capacity_exceeded", decodeError(t, rec.Body).Error.Code)
}

func TestGetExport_500_ExportFailed(t *testing.T) {
	svc := &mockEntryServicer{
		export: func(_ context.Context, _ domain.Identity, _ domain.Month) (domain.ExportArtifact, error) {
			return domain.ExportArtifact{}, fmt.Errorf("export: %w: bad zip", domain.ErrExport)
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/export?month=2024-03", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "export_failed", decodeError(t, rec.Body).Error.Code)
}

func TestGetExport_400_InvalidMonth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/export?month=2024-3", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(&mockEntryServicer{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_month", decodeError(t, rec.Body).Error.Code)
}
