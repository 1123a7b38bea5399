package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist (or is not owned by the caller).
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is matched by ValidationErrors returned from ValidateEntry.
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidMonth is returned when a month token is not a strict "YYYY-MM".
var ErrInvalidMonth = errors.New("invalid month token")

// ErrUnauthenticated is returned when an operation needs a user id and none
// was supplied.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrLoad wraps any backend failure while loading a month of entries.
var ErrLoad = errors.New("unable to load entries for this month")

// ErrMutation wraps any backend failure while inserting or deleting an entry.
var ErrMutation = errors.New("unable to save changes")

// ErrCapacityExceeded is returned by the exporter when a month holds more
// entries than the template's data block has rows.
var ErrCapacityExceeded = errors.New("export capacity exceeded")

// ErrExport wraps template and serialization failures in the exporter.
var ErrExport = errors.New("unable to generate the spreadsheet")
