package validator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError reports an operator input that was rejected before reaching the store.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func New(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return New(field, "is required")
	}
	return nil
}

func Positive(field string, value int64) error {
	if value <= 0 {
		return New(field, "must be greater than zero")
	}
	return nil
}

func NonNegative(field string, value int64) error {
	if value < 0 {
		return New(field, "must not be negative")
	}
	return nil
}

func NonNegativeAmount(field string, value decimal.Decimal) error {
	if value.IsNegative() {
		return New(field, "must not be negative")
	}
	return nil
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
