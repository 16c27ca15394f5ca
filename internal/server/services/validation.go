package services

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

const (
	minIdentifierLen = 4
	maxFieldLen      = 256
	maxURLLen        = 2048
)

// Validation rule names reported in FieldError.Rule.
const (
	RuleNotEmpty  = "not_empty"
	RuleMinLength = "min_length"
	RuleMaxLength = "max_length"
	RuleEmail     = "email"
)

// FieldError is one failed rule on one user field.
type FieldError struct {
	Field string
	Rule  string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Rule
}

// ValidationErrors lists every rule a user record broke.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, ", "))
}

// Has reports whether field failed rule.
func (v ValidationErrors) Has(field, rule string) bool {
	for _, e := range v {
		if e.Field == field && e.Rule == rule {
			return true
		}
	}
	return false
}

// NormalizeUser trims every text field in place. Optional fields that end up
// empty become nil.
func NormalizeUser(u *models.User) {
	u.Identifier = strings.TrimSpace(u.Identifier)
	for _, f := range optionalFields(u) {
		if *f.value == nil {
			continue
		}
		s := strings.TrimSpace(**f.value)
		if s == "" {
			*f.value = nil
			continue
		}
		*f.value = &s
	}
}

// ValidateUser checks u against the account rules without touching storage.
// It returns nil when u is acceptable.
func ValidateUser(u *models.User) ValidationErrors {
	var errs ValidationErrors

	n := utf8.RuneCountInString(u.Identifier)
	switch {
	case n == 0:
		errs = append(errs, FieldError{"identifier", RuleNotEmpty})
	case n < minIdentifierLen:
		errs = append(errs, FieldError{"identifier", RuleMinLength})
	case n > maxFieldLen:
		errs = append(errs, FieldError{"identifier", RuleMaxLength})
	}

	for _, f := range optionalFields(u) {
		if *f.value == nil {
			continue
		}
		if utf8.RuneCountInString(**f.value) > f.max {
			errs = append(errs, FieldError{f.name, RuleMaxLength})
		}
	}

	if u.Email != nil {
		if addr, err := mail.ParseAddress(*u.Email); err != nil || addr.Address != *u.Email {
			errs = append(errs, FieldError{"email", RuleEmail})
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

type optionalField struct {
	name  string
	value **string
	max   int
}

func optionalFields(u *models.User) []optionalField {
	return []optionalField{
		{"display_name", &u.DisplayName, maxFieldLen},
		{"email", &u.Email, maxFieldLen},
		{"provider", &u.Provider, maxFieldLen},
		{"formatted_name", &u.FormattedName, maxFieldLen},
		{"family_name", &u.FamilyName, maxFieldLen},
		{"given_name", &u.GivenName, maxFieldLen},
		{"preferred_username", &u.PreferredUsername, maxFieldLen},
		{"url", &u.URL, maxURLLen},
		{"photo", &u.Photo, maxURLLen},
	}
}
