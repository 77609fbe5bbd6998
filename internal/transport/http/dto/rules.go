package dto

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/baechuer/coursehub/internal/domain"
)

var validate = validator.New()

// rule is one named input predicate. Rules run in order and the first
// failure is reported.
type rule func() error

func firstFailure(rules ...rule) error {
	for _, r := range rules {
		if err := r(); err != nil {
			return err
		}
	}
	return nil
}

func required(field, v string) rule {
	return func() error {
		if strings.TrimSpace(v) == "" {
			return domain.ErrMissingField(field)
		}
		return nil
	}
}

// emailFormat passes empty input; pair it with required.
func emailFormat(field, v string) rule {
	return func() error {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		if err := validate.Var(v, "email"); err != nil {
			return domain.ErrInvalidField(field, "invalid_format")
		}
		return nil
	}
}

func maxLen(field, v string, n int) rule {
	return func() error {
		if utf8.RuneCountInString(v) > n {
			return domain.ErrInvalidField(field, "too_long")
		}
		return nil
	}
}

// maxBytes bounds the encoded length, not the rune count.
func maxBytes(field, v string, n int) rule {
	return func() error {
		if len(v) > n {
			return domain.ErrInvalidField(field, "too_long")
		}
		return nil
	}
}

func validRole(v string) rule {
	return func() error {
		if !domain.IsValidRole(v) {
			return domain.ErrInvalidRole(v)
		}
		return nil
	}
}
