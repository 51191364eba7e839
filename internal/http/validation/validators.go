package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Validator is a function that validates a string value and returns an error message if invalid.
type Validator func(v string) string

// Required validates that a field is not empty and does not exceed maxLen characters.
// Uses rune count for proper Unicode support.
func Required(fieldName string, maxLen int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return fieldName + " is required."
		}
		if utf8.RuneCountInString(v) > maxLen {
			return fmt.Sprintf("%s cannot exceed %d characters.", fieldName, maxLen)
		}
		return ""
	}
}

// Optional validates that an optional field does not exceed maxLen characters if provided.
func Optional(fieldName string, maxLen int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		if utf8.RuneCountInString(v) > maxLen {
			return fmt.Sprintf("%s cannot exceed %d characters.", fieldName, maxLen)
		}
		return ""
	}
}

// Parsed validates a field with parse, reporting the parse error text
// (capitalized, with a trailing period) on failure.
func Parsed(parse func(string) error) Validator {
	return func(v string) string {
		if err := parse(v); err != nil {
			return sentence(err.Error())
		}
		return ""
	}
}

// DateISO validates an optional YYYY-MM-DD calendar date.
func DateISO(fieldName string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		if _, err := time.Parse(time.DateOnly, v); err != nil {
			return fieldName + " must be a valid date."
		}
		return ""
	}
}

func sentence(msg string) string {
	if msg == "" {
		return msg
	}
	r, size := utf8.DecodeRuneInString(msg)
	msg = string(unicode.ToUpper(r)) + msg[size:]
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}

// FieldValidator provides a fluent API for validating multiple fields.
type FieldValidator struct {
	errors map[string]string
}

// New creates a new FieldValidator instance.
func New() *FieldValidator {
	return &FieldValidator{errors: make(map[string]string)}
}

// Validate validates a field with one or more validators.
// It stops at the first error for each field.
func (fv *FieldValidator) Validate(field, value string, validators ...Validator) *FieldValidator {
	for _, v := range validators {
		if err := v(value); err != "" {
			fv.errors[field] = err
			break // Stop at first error per field
		}
	}
	return fv
}

// Valid reports whether no field failed.
func (fv *FieldValidator) Valid() bool { return len(fv.errors) == 0 }

// Errors returns the accumulated validation errors.
func (fv *FieldValidator) Errors() map[string]string {
	return fv.errors
}
