package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/mileage-log/internal/handler"
)

func TestGetMe_200(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(&mockEntryServicer{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.MeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "user-123", resp.UserID)
	assert.Equal(t, "Jane Q. Public", resp.DisplayName)
}

func TestGetMe_401_NoCaller(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()

	newAnonymousHandler(&mockEntryServicer{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec.Body).Error.Code)
}

func TestListPresets_200(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/presets", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(&mockEntryServicer{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []handler.PresetResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 6)
	assert.Equal(t, "Roos <-> Wash", resp[0].Name)
	assert.InDelta(t, 2.2, resp[0].OneWayMiles, 1e-9)
	assert.InDelta(t, 4.4, resp[0].RoundTripMiles, 1e-9)
}
