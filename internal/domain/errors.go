package domain

import "github.com/pkg/errors"

var (
	ErrNotFound             = errors.New("record not found")
	ErrValidation           = errors.New("validation failed")
	ErrConfigurationMissing = errors.New("telegram bot settings not configured")
	ErrDeliveryFailed       = errors.New("notification delivery failed")
)

// ValidationError wraps ErrValidation with the offending field
func ValidationError(field, reason string) error {
	return errors.Wrapf(ErrValidation, "%s: %s", field, reason)
}
