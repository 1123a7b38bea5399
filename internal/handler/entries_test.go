package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/mileage-log/internal/domain"
	"github.com/pkordes/mileage-log/internal/handler"
)

func entryFixture(day int, miles float64) domain.TravelEntry {
	return domain.TravelEntry{
		ID:        uuid.New(),
		UserID:    "user-123",
		EntryDate: time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC),
		Trip:      "Roos <-> Wash",
		Miles:     miles,
		Purpose:   "Client visit",
		CreatedAt: time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC),
	}
}

func march2024Summary(entries ...domain.TravelEntry) domain.MonthSummary {
	m := domain.Month{Year: 2024, Month: time.March}
	return domain.MonthSummary{
		Month:      m,
		Range:      m.Range(),
		Entries:    entries,
		TotalMiles: domain.SumMiles(entries),
	}
}

// ---- GET /entries ----------------------------------------------------------

func TestListEntries_200(t *testing.T) {
	var gotUser string
	var gotMonth domain.Month
	svc := &mockEntryServicer{
		list: func(_ context.Context, userID string, month domain.Month) (domain.MonthSummary, error) {
			gotUser, gotMonth = userID, month
			return march2024Summary(entryFixture(5, 4.4), entryFixture(9, 0.6)), nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/entries?month=2024-03", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-123", gotUser)
	assert.Equal(t, domain.Month{Year: 2024, Month: time.March}, gotMonth)

	var resp handler.MonthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "2024-03", resp.Month)
	assert.Equal(t, "March 2024", resp.Label)
	assert.Equal(t, "2024-03-01", resp.Start.String())
	assert.Equal(t, "2024-03-31", resp.End.String())
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "2024-03-05", resp.Entries[0].EntryDate.String())
	assert.InDelta(t, 5.0, resp.TotalMiles, 1e-9)
}

func TestListEntries_DefaultsToCurrentMonth(t *testing.T) {
	var gotMonth domain.Month
	svc := &mockEntryServicer{
		currentMonth: func() domain.Month { return domain.Month{Year: 2025, Month: time.February} },
		list: func(_ context.Context, _ string, month domain.Month) (domain.MonthSummary, error) {
			gotMonth = month
			return domain.MonthSummary{Month: month, Range: month.Range()}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Month{Year: 2025, Month: time.February}, gotMonth)

	var resp handler.MonthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "2025-02-28", resp.End.String())
	assert.NotNil(t, resp.Entries)
	assert.Empty(t, resp.Entries)
}

func TestListEntries_400_InvalidMonth(t *testing.T) {
	for _, token := range []string{"2024-3", "2024-13", "March", "2024-03-01"} {
		t.Run(token, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/entries?month="+token, nil)
			rec := httptest.NewRecorder()
			newHTTPHandler(&mockEntryServicer{}).ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid_month", decodeError(t, rec.Body).Error.Code)
		})
	}
}

func TestListEntries_502_LoadFailed(t *testing.T) {
	svc := &mockEntryServicer{
		list: func(_ context.Context, _ string, _ domain.Month) (domain.MonthSummary, error) {
			return domain.MonthSummary{}, fmt.Errorf("store: %w: %w", domain.ErrLoad, errors.New("dial tcp: refused"))
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/entries?month=2024-03", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decodeError(t, rec.Body)
	assert.Equal(t, "load_failed", resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "dial tcp")
}

func TestListEntries_401_NoCaller(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/entries?month=2024-03", nil)
	rec := httptest.NewRecorder()
	newAnonymousHandler(&mockEntryServicer{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ---- POST /entries ---------------------------------------------------------

func TestCreateEntry_201(t *testing.T) {
	var got domain.RawEntryInput
	fixture := entryFixture(5, 12.5)
	svc := &mockEntryServicer{
		create: func(_ context.Context, userID string, raw domain.RawEntryInput) (domain.TravelEntry, error) {
			got = raw
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"entry_date": "2024-03-05",
		"trip":       "Roos <-> Wash",
		"miles":      12.5,
		"purpose":    "Client visit",
	})
	req := httptest.NewRequest(http.MethodPost, "/entries", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.RawEntryInput{
		EntryDate: "2024-03-05", Trip: "Roos <-> Wash", Miles: "12.5", Purpose: "Client visit",
	}, got)

	var resp handler.EntryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
	assert.Equal(t, "2024-03-05", resp.EntryDate.String())
	assert.InDelta(t, 12.5, resp.Miles, 1e-9)
}

func TestCreateEntry_MilesAsString(t *testing.T) {
	var got domain.RawEntryInput
	svc := &mockEntryServicer{
		create: func(_ context.Context, _ string, raw domain.RawEntryInput) (domain.TravelEntry, error) {
			got = raw
			return entryFixture(5, 4), nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/entries",
		strings.NewReader(`{"entry_date":"2024-03-05","trip":"t","miles":"4.0","purpose":"p"}`))
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "4.0", got.Miles)
}

func TestCreateEntry_MissingMilesIsEmpty(t *testing.T) {
	var got domain.RawEntryInput
	svc := &mockEntryServicer{
		create: func(_ context.Context, _ string, raw domain.RawEntryInput) (domain.TravelEntry, error) {
			got = raw
			return domain.TravelEntry{}, domain.ValidationErrors{{
				Field: domain.FieldMiles, Reason: domain.ReasonInvalidMiles, Message: "Miles are required.",
			}}
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/entries",
		strings.NewReader(`{"entry_date":"2024-03-05","trip":"t","miles":null,"purpose":"p"}`))
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "", got.Miles)
}

func TestCreateEntry_422_ListsEveryField(t *testing.T) {
	svc := &mockEntryServicer{
		create: func(_ context.Context, _ string, raw domain.RawEntryInput) (domain.TravelEntry, error) {
			_, err := domain.ValidateEntry(raw)
			require.Error(t, err)
			return domain.TravelEntry{}, err
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/entries",
		strings.NewReader(`{"entry_date":"05/03/2024","trip":"   ","miles":"4.45","purpose":""}`))
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec.Body)
	assert.Equal(t, "validation_error", resp.Error.Code)

	fields := map[string]string{}
	for _, f := range resp.Error.Fields {
		fields[f.Field] = f.Reason
	}
	assert.Equal(t, map[string]string{
		"entry_date": "InvalidDate",
		"trip":       "MissingTrip",
		"miles":      "InvalidMiles",
		"purpose":    "MissingPurpose",
	}, fields)
}

func TestCreateEntry_400_MalformedBody(t *testing.T) {
	for name, body := range map[string]string{
		"not json":     `{"entry_date":`,
		"miles object": `{"miles":{"v":1}}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(body))
			rec := httptest.NewRecorder()
			newHTTPHandler(&mockEntryServicer{}).ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "validation_error", decodeError(t, rec.Body).Error.Code)
		})
	}
}

func TestCreateEntry_502_MutationFailed(t *testing.T) {
	svc := &mockEntryServicer{
		create: func(_ context.Context, _ string, _ domain.RawEntryInput) (domain.TravelEntry, error) {
			return domain.TravelEntry{}, fmt.Errorf("%w: insert failed", domain.ErrMutation)
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/entries",
		strings.NewReader(`{"entry_date":"2024-03-05","trip":"t","miles":1,"purpose":"p"}`))
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "mutation_failed", decodeError(t, rec.Body).Error.Code)
}

// ---- DELETE /entries/{id} --------------------------------------------------

func TestDeleteEntry_204(t *testing.T) {
	id := uuid.New()
	var gotID uuid.UUID
	var gotUser string
	svc := &mockEntryServicer{
		delete: func(_ context.Context, userID string, got uuid.UUID) error {
			gotUser, gotID = userID, got
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/entries/"+id.String()+"?confirm=true", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "user-123", gotUser)
}

func TestDeleteEntry_428_WithoutConfirmation(t *testing.T) {
	// delete is nil: reaching the service would panic.
	for _, q := range []string{"", "?confirm=false", "?confirm=maybe"} {
		req := httptest.NewRequest(http.MethodDelete, "/entries/"+uuid.NewString()+q, nil)
		rec := httptest.NewRecorder()
		newHTTPHandler(&mockEntryServicer{}).ServeHTTP(rec, req)

		require.Equal(t, http.StatusPreconditionRequired, rec.Code, q)
		assert.Equal(t, "confirmation_required", decodeError(t, rec.Body).Error.Code)
	}
}

func TestDeleteEntry_404_NotFound(t *testing.T) {
	svc := &mockEntryServicer{
		delete: func(_ context.Context, _ string, _ uuid.UUID) error {
			return fmt.Errorf("store: %w", domain.ErrNotFound)
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/entries/"+uuid.NewString()+"?confirm=true", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec.Body).Error.Code)
}

func TestDeleteEntry_404_MalformedID(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/entries/not-a-uuid?confirm=true", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(&mockEntryServicer{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
