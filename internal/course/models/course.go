// Package models defines the course catalog entry.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	dErrors "admitflow/pkg/domain-errors"
)

// Course is one admissible programme in the catalog.
type Course struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Department string          `json:"department"`
	Degree     string          `json:"degree"`
	Seats      int             `json:"seats"`
	Fee        decimal.Decimal `json:"fee"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Validate checks the fields an admin must supply.
func (c *Course) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "course name is required")
	}
	if c.Seats < 0 {
		return dErrors.New(dErrors.CodeValidation, "seats must not be negative")
	}
	if c.Fee.IsNegative() {
		return dErrors.New(dErrors.CodeValidation, "fee must not be negative")
	}
	return nil
}
