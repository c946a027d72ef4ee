package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places money is kept at.
const Scale = 2

// MaxAmount is the largest amount a single expense or payment may have. It is
// the largest value a DECIMAL(12,2) column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

var (
	ErrNoParticipants       = errors.New("must have at least one participant")
	ErrNonPositiveAmount    = errors.New("amount must be greater than zero")
	ErrTooPrecise           = errors.New("amount has more than two decimal places")
	ErrAmountTooLarge       = errors.New("amount exceeds the maximum of " + MaxAmount.StringFixed(Scale))
	ErrDuplicateParticipant = errors.New("participant listed more than once")
)

// ValidateAmount checks that amount is positive, representable at Scale and
// no larger than MaxAmount.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrNonPositiveAmount, amount.String())
	}
	if !amount.Equal(amount.Truncate(Scale)) {
		return fmt.Errorf("%w: %s", ErrTooPrecise, amount.String())
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: %s", ErrAmountTooLarge, amount.String())
	}
	return nil
}

// SplitEqually divides amount into one share per participant.
//
// Shares are computed in cents: everyone gets amount/n rounded down, and the
// leftover cents go one each to the first participants in the given order, so
// the shares always add up to exactly amount.
func SplitEqually(amount decimal.Decimal, participants []string) (map[string]decimal.Decimal, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	cents := amount.Shift(Scale).IntPart()
	n := int64(len(participants))
	base, remainder := cents/n, cents%n

	shares := make(map[string]decimal.Decimal, len(participants))
	for i, p := range participants {
		if _, dup := shares[p]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParticipant, p)
		}
		share := base
		if int64(i) < remainder {
			share++
		}
		shares[p] = decimal.New(share, -Scale)
	}
	return shares, nil
}
