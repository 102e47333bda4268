package services

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/isdelr/auth-service/internal/apperr"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// maxPasswordBytes is the most input bcrypt will hash.
const maxPasswordBytes = 72

// Credentials is the email and password pair submitted at registration.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the email syntax and password length.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password,
			validation.Required,
			validation.Length(MinPasswordLength, 0),
			validation.By(maxBytes(maxPasswordBytes)),
		),
	)
}

func maxBytes(n int) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if len(s) > n {
			return errors.New("must be no more than 72 bytes")
		}
		return nil
	}
}

// NormalizeEmail trims and lower-cases an email so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// toValidationError converts ozzo field errors into a ValidationError naming
// the first offending field.
func toValidationError(err error) error {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fields := make([]string, 0, len(fieldErrs))
	for f := range fieldErrs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return &apperr.ValidationError{Field: fields[0], Reason: fieldErrs[fields[0]].Error()}
}
