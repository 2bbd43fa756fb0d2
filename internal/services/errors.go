package services

import (
	"errors"

	"pricegov/internal/models"
)

// IsNoRecord reports whether err means the record does not exist.
func IsNoRecord(err error) bool {
	return errors.Is(err, models.ErrNoRecord)
}
