package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Field names used in ValidationError.Field. They match the JSON request keys.
const (
	FieldEntryDate = "entry_date"
	FieldTrip      = "trip"
	FieldMiles     = "miles"
	FieldPurpose   = "purpose"
)

// ValidationReason classifies why a field was rejected.
type ValidationReason string

const (
	ReasonInvalidDate    ValidationReason = "InvalidDate"
	ReasonMissingTrip    ValidationReason = "MissingTrip"
	ReasonInvalidMiles   ValidationReason = "InvalidMiles"
	ReasonMissingPurpose ValidationReason = "MissingPurpose"
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string
	Reason  ValidationReason
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every rejected field of one submission, at most
// one per field. It matches ErrValidation with errors.Is.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "validation error: " + strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationErrors.
func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// milesPattern accepts a non-negative integer or a decimal with exactly one
// fractional digit: "0", "4", "4.4". It rejects "4.45", "-1", ".5", "4.".
var milesPattern = regexp.MustCompile(`^\d+(\.\d)?$`)

// ValidateEntry checks every field of raw independently and returns either a
// normalized TravelEntryInput or a ValidationErrors listing each failure.
func ValidateEntry(raw RawEntryInput) (TravelEntryInput, error) {
	var (
		out  TravelEntryInput
		errs ValidationErrors
	)

	date, err := time.Parse(DateLayout, raw.EntryDate)
	if err != nil {
		errs = append(errs, ValidationError{FieldEntryDate, ReasonInvalidDate, "Please provide a valid date."})
	} else {
		out.EntryDate = date
	}

	out.Trip = strings.TrimSpace(raw.Trip)
	if out.Trip == "" {
		errs = append(errs, ValidationError{FieldTrip, ReasonMissingTrip, "Trip description is required."})
	}

	miles, msg := parseMiles(raw.Miles)
	if msg != "" {
		errs = append(errs, ValidationError{FieldMiles, ReasonInvalidMiles, msg})
	} else {
		out.Miles = miles
	}

	out.Purpose = strings.TrimSpace(raw.Purpose)
	if out.Purpose == "" {
		errs = append(errs, ValidationError{FieldPurpose, ReasonMissingPurpose, "Business purpose is required."})
	}

	if len(errs) > 0 {
		return TravelEntryInput{}, errs
	}
	return out, nil
}

// parseMiles returns the parsed value or a non-empty user-facing message.
func parseMiles(text string) (float64, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, "Miles are required."
	}
	if !milesPattern.MatchString(text) {
		return 0, "Miles must be a non-negative number with at most one decimal."
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, "Miles must be a non-negative number with at most one decimal."
	}
	return d.InexactFloat64(), ""
}

// SumMiles folds the miles of entries into a total rounded to one decimal.
// The sum is exact, so it does not depend on the order of entries.
func SumMiles(entries []TravelEntry) float64 {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromFloat(e.Miles).Round(1))
	}
	return total.InexactFloat64()
}
