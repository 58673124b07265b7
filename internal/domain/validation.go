package domain

import "strings"

// FieldError is a single validation failure tied to one field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors collects every violation found while validating a record.
// Validation never stops at the first failure; callers get the full set in
// one response.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "domain: no validation errors"
	}

	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	return "domain: validation failed: " + strings.Join(parts, "; ")
}

// Add records one violation.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// HasField reports whether any violation was recorded for field.
func (v ValidationErrors) HasField(field string) bool {
	for _, fe := range v {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// OrNil returns the collected violations as an error, or nil when the record
// is valid. A typed nil ValidationErrors must not escape as a non-nil error,
// hence this helper.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
