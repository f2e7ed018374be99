// Package validate checks user input before anything leaves the process.
package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	apperrors "github.com/jrsteele09/go-session-guard/internal/errors"
)

// Code identifies the kind of validation failure.
type Code string

const (
	CodeRequired Code = "required"
	CodeEmail    Code = "email"
	CodeMinLen   Code = "min_len"
)

// FieldError is a single failed check.
type FieldError struct {
	Field string
	Code  Code
	Min   int // set for CodeMinLen
}

func (e FieldError) Error() string {
	switch e.Code {
	case CodeMinLen:
		return fmt.Sprintf("%s: minimum %d characters", e.Field, e.Min)
	case CodeEmail:
		return e.Field + ": must be a valid email address"
	default:
		return e.Field + ": required"
	}
}

// Errors is the set of failures collected by a Validator. It matches
// apperrors.ErrInvalidInput with errors.Is.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) Is(target error) bool {
	return target == apperrors.ErrInvalidInput
}

// Validator collects field errors via a chainable API. It is not safe for
// concurrent use.
type Validator struct {
	errs Errors
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errs = append(v.errs, FieldError{Field: field, Code: CodeRequired})
	}
	return v
}

// Email fails if value is not a bare address such as "ion@firma.ro". Empty values
// are left to Required.
func (v *Validator) Email(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		return v
	}
	if !IsEmail(value) {
		v.errs = append(v.errs, FieldError{Field: field, Code: CodeEmail})
	}
	return v
}

// MinLen fails if the Unicode character count is below minimum.
func (v *Validator) MinLen(field, value string, minimum int) *Validator {
	if utf8.RuneCountInString(value) < minimum {
		v.errs = append(v.errs, FieldError{Field: field, Code: CodeMinLen, Min: minimum})
	}
	return v
}

// First returns the first failure, if any.
func (v *Validator) First() (FieldError, bool) {
	if len(v.errs) == 0 {
		return FieldError{}, false
	}
	return v.errs[0], true
}

// Err returns the collected failures, or nil.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

// IsEmail reports whether value is a single bare email address with a dotted domain.
func IsEmail(value string) bool {
	value = strings.TrimSpace(value)
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(value, "@")
	domain := value[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

// NormalizeEmail trims, lowercases and NFC-normalizes an address.
func NormalizeEmail(value string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(value)))
}
