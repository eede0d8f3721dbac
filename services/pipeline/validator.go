package pipeline

import (
	// Go Internal Packages
	"strings"

	// Local Packages
	errors "tx-pipeline/errors"

	// External Packages
	"github.com/shopspring/decimal"
)

// ValidateInput checks the transaction shape before any mutation is
// attempted. Pure, no side effects, safe to retry.
func ValidateInput(symbol, amount string) error {
	trimmed := strings.TrimSpace(amount)
	if trimmed == "" {
		return errors.E(errors.Invalid, "Transaction amount must be a positive number.", nil)
	}
	parsed, err := decimal.NewFromString(trimmed)
	if err != nil || parsed.LessThanOrEqual(decimal.Zero) {
		return errors.E(errors.Invalid, "Transaction amount must be a positive number.", nil)
	}

	if strings.TrimSpace(symbol) == "" || len(symbol) > 3 {
		return errors.E(errors.Invalid, "Currency symbol must be a non-empty string and less than 3 characters.", nil)
	}
	return nil
}
