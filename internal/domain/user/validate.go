package user

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/geocoder89/bookshelf/internal/domain/validation"
)

const (
	PasswordMinLength = 6
	PasswordMaxLength = 128
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// NormalizeEmail trims and lowercases an address. Uniqueness is compared on this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateRegistration checks already-normalised registration fields.
func ValidateRegistration(name, email, password string) error {
	v := &validation.Error{}

	if name == "" {
		v.Add("name", "required", "is required")
	}

	switch {
	case email == "":
		v.Add("email", "required", "is required")
	case !ValidEmail(email):
		v.Add("email", "email", "must be a valid email address")
	}

	validatePassword(v, password)

	return v.OrNil()
}

// ValidatePassword checks a raw password against the length policy.
func ValidatePassword(password string) error {
	v := &validation.Error{}
	validatePassword(v, password)
	return v.OrNil()
}

func validatePassword(v *validation.Error, password string) {
	n := utf8.RuneCountInString(password)

	switch {
	case n == 0:
		v.Add("password", "required", "is required")
	case n < PasswordMinLength:
		v.Add("password", "min", "must be at least 6 characters")
	case n > PasswordMaxLength:
		v.Add("password", "max", "must be at most 128 characters")
	}
}
