package calculator

import (
	"cmp"
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnbalanced matches any *UnbalancedInputError via errors.Is.
	ErrUnbalanced       = errors.New("balances do not sum to zero")
	ErrDuplicateParty   = errors.New("party appears more than once")
	ErrTooManyParties   = errors.New("too many parties to settle")
	ErrAmountOutOfRange = errors.New("amount out of range")
)

// UnbalancedInputError is returned when the balances handed to Settle do not
// sum to exactly zero. Sum is the offending total.
type UnbalancedInputError struct {
	Sum decimal.Decimal
}

func (e *UnbalancedInputError) Error() string {
	return fmt.Sprintf("%s: sum is %s", ErrUnbalanced, e.Sum.String())
}

func (e *UnbalancedInputError) Is(target error) bool {
	return target == ErrUnbalanced
}

// Balance is one party's signed net position.
// Negative = the party is owed money, Positive = the party owes money.
type Balance[K comparable] struct {
	Party  K
	Amount decimal.Decimal
}

// Transfer is a recommended payment: Borrower pays Lender Amount.
type Transfer[K comparable] struct {
	Borrower K
	Lender   K
	Amount   decimal.Decimal
}

// Limits bounds the work done by the settlement search.
type Limits struct {
	// MaxParties rejects inputs with more balances than this. Zero or anything
	// above PartiesCeiling means PartiesCeiling.
	MaxParties int

	// SearchBudget is the number of search nodes a single subset-size attempt may
	// visit before the engine gives up on finding a smaller zero-sum group and
	// settles everything that is left as one group. Zero disables the budget.
	SearchBudget int
}

// DefaultLimits are used by Settle.
var DefaultLimits = Limits{
	MaxParties:   256,
	SearchBudget: 1 << 16,
}

// maxUnits bounds a single amount in minor units. Together with
// PartiesCeiling it keeps every sum of input amounts inside int64.
const maxUnits = int64(1) << 52

// PartiesCeiling is the most balances SettleWithLimits accepts whatever the
// configured MaxParties: PartiesCeiling * maxUnits < 2^63.
const PartiesCeiling = 1<<11 - 1

// Settle computes the transfers that bring every balance to zero using
// DefaultLimits. See SettleWithLimits.
func Settle[K comparable](balances []Balance[K]) ([]Transfer[K], error) {
	return SettleWithLimits(balances, DefaultLimits)
}

// SettleWithLimits computes a small set of transfers that settles balances.
//
// Algorithm:
//   - Sort balances ascending by amount (stable, so input order breaks ties).
//   - Starting with k = 1, look for k balances that sum to zero. When none
//     exist, try k+1. Once k exceeds half of what is left, settle everything
//     that is left as one group.
//   - When a group is found, remove it, turn it into transfers by cancelling
//     its most negative and most positive members against each other, and
//     restart at k = 1.
//
// A zero-sum group of m non-zero balances yields at most m-1 transfers, so the
// result never has more than n-1 transfers for n non-zero balances. The result
// is deterministic for a given input order but is not guaranteed to be the
// global minimum.
//
// The input is not modified. An empty input yields no transfers.
func SettleWithLimits[K comparable](balances []Balance[K], limits Limits) ([]Transfer[K], error) {
	if len(balances) == 0 {
		return nil, nil
	}
	limit := PartiesCeiling
	if limits.MaxParties > 0 && limits.MaxParties < limit {
		limit = limits.MaxParties
	}
	if len(balances) > limit {
		return nil, fmt.Errorf("%w: %d balances, limit is %d", ErrTooManyParties, len(balances), limit)
	}

	working, exp, err := toUnits(balances)
	if err != nil {
		return nil, err
	}

	var sum int64
	for _, e := range working {
		sum += e.units
	}
	if sum != 0 {
		return nil, &UnbalancedInputError{Sum: decimal.New(sum, exp)}
	}

	slices.SortStableFunc(working, func(a, b entry[K]) int {
		return cmp.Compare(a.units, b.units)
	})

	var transfers []Transfer[K]
	selectionLength := 1
	for len(working) > 0 {
		if selectionLength > len(working)/2 {
			selectionLength = len(working)
		}

		var picked []int
		if selectionLength == len(working) {
			// Everything left sums to zero because the input does.
			picked = allIndices(len(working))
		} else {
			s := newSearcher(working, limits.SearchBudget)
			if s.find(0, selectionLength, 0) {
				picked = s.picked
			} else if s.exhausted {
				selectionLength = len(working)
				continue
			}
		}

		if picked == nil {
			selectionLength++
			continue
		}

		selection := make([]entry[K], len(picked))
		for i, idx := range picked {
			selection[i] = working[idx]
		}
		working = without(working, picked)
		transfers = append(transfers, cancel(selection, exp)...)
		selectionLength = 1
	}

	return transfers, nil
}

// entry is a balance expressed in integer minor units.
type entry[K comparable] struct {
	party K
	units int64
}

// toUnits converts every amount to an integer count of the finest unit present
// in the input, rejecting duplicate parties on the way.
func toUnits[K comparable](balances []Balance[K]) ([]entry[K], int32, error) {
	exp := int32(0)
	for _, b := range balances {
		exp = min(exp, b.Amount.Exponent())
	}

	seen := make(map[K]struct{}, len(balances))
	entries := make([]entry[K], len(balances))
	limit := big.NewInt(maxUnits)
	for i, b := range balances {
		if _, dup := seen[b.Party]; dup {
			return nil, 0, fmt.Errorf("%w: %v", ErrDuplicateParty, b.Party)
		}
		seen[b.Party] = struct{}{}

		n := b.Amount.Shift(-exp).BigInt()
		if new(big.Int).Abs(n).Cmp(limit) > 0 {
			return nil, 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, b.Amount.String())
		}
		entries[i] = entry[K]{party: b.Party, units: n.Int64()}
	}
	return entries, exp, nil
}

// cancel turns a zero-sum selection, sorted ascending, into transfers.
//
// While any non-zero amount is left, the front is negative and the back is
// positive: only the ends are ever modified, and each modification moves an end
// toward zero without crossing it. The middle keeps its sorted order, so a zero
// can only reach an end once everything left is zero.
func cancel[K comparable](selection []entry[K], exp int32) []Transfer[K] {
	if len(selection) < 2 {
		return nil
	}

	amounts := make([]int64, len(selection))
	for i, e := range selection {
		amounts[i] = e.units
	}

	var transfers []Transfer[K]
	lo, hi := 0, len(selection)-1
	for lo < hi {
		if amounts[lo] == 0 || amounts[hi] == 0 {
			break
		}

		transfer := Transfer[K]{
			Borrower: selection[hi].party,
			Lender:   selection[lo].party,
		}
		difference := amounts[lo] + amounts[hi]
		switch {
		case difference < 0:
			transfer.Amount = decimal.New(amounts[hi], exp)
			amounts[lo] = difference
			hi--
		case difference > 0:
			transfer.Amount = decimal.New(-amounts[lo], exp)
			amounts[hi] = difference
			lo++
		default:
			transfer.Amount = decimal.New(amounts[hi], exp)
			lo++
			hi--
		}
		transfers = append(transfers, transfer)
	}
	return transfers
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// without returns a new slice holding the entries whose indices are not in
// picked. picked must be ascending.
func without[K comparable](entries []entry[K], picked []int) []entry[K] {
	rest := make([]entry[K], 0, len(entries)-len(picked))
	next := 0
	for i, e := range entries {
		if next < len(picked) && picked[next] == i {
			next++
			continue
		}
		rest = append(rest, e)
	}
	return rest
}
