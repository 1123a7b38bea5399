// Package domain contains the core data types for the Mileage Log application.
// It is imported by every other internal package (repo, store, service,
// export, handler) and never imports any of them.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the ISO calendar-date layout used for entry dates and month
// range boundaries.
const DateLayout = "2006-01-02"

// TravelEntry is one recorded trip owned by a single user.
// Entries are never updated: they are created once and may only be deleted.
type TravelEntry struct {
	ID        uuid.UUID
	UserID    string
	EntryDate time.Time // midnight UTC
	Trip      string
	Miles     float64
	Purpose   string
	CreatedAt time.Time
}

// DateString returns the entry date as "YYYY-MM-DD".
func (e TravelEntry) DateString() string {
	return e.EntryDate.Format(DateLayout)
}

// TravelEntryInput is a validated, normalized payload ready for insertion.
// Build it with ValidateEntry; the store assigns ID and CreatedAt.
type TravelEntryInput struct {
	EntryDate time.Time
	Trip      string
	Miles     float64
	Purpose   string
}

// RawEntryInput is the unvalidated form submission, one field per input.
// Miles is kept as text so the exact submitted format can be checked.
type RawEntryInput struct {
	EntryDate string
	Trip      string
	Miles     string
	Purpose   string
}

// MonthSummary is the month view returned to clients: the ordered entries of
// one month plus their total mileage.
type MonthSummary struct {
	Month      Month
	Range      MonthRange
	Entries    []TravelEntry
	TotalMiles float64
}

// Identity is the authenticated caller as supplied by the identity provider.
type Identity struct {
	UserID      string
	DisplayName string
}

// XLSXContentType is the MIME type of exported spreadsheets.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportArtifact is one generated spreadsheet, ready to hand to the user.
type ExportArtifact struct {
	Filename    string
	ContentType string
	Content     []byte
}
