package expense

import (
	"fmt"
	"math/rand/v2"
)

// SharesSplit divides the expense by integer percentages. Per-user amounts
// are derived by rounding, so once the shares reach 100% the strategy
// corrects rounding drift to make the summed amounts match the expense
// amount exactly. The gap to 100% (RemainderShare) is informational only;
// validity depends solely on the amount remainder.
type SharesSplit struct {
	rng     *rand.Rand
	roster  []UserID
	shares  map[UserID]int64
	amounts map[UserID]Amount

	totalAmount   Amount
	totalShare    int64
	expenseAmount Amount
	valid         bool
}

// NewSharesSplit creates the strategy with zero shares per roster user.
func NewSharesSplit(roster []UserID, rng *rand.Rand) *SharesSplit {
	s := &SharesSplit{
		rng:     rng,
		roster:  roster,
		shares:  make(map[UserID]int64, len(roster)),
		amounts: make(map[UserID]Amount, len(roster)),
	}
	s.Reset()
	return s
}

// Kind identifies the strategy.
func (s *SharesSplit) Kind() SplitKind { return SplitShares }

// Update sets the named user's share. The user's amount is recomputed from
// the share, except when the new share total lands exactly on 100%: then the
// user absorbs the residual gap to the expense amount, so the grand total
// matches despite the rounding applied to everyone else.
func (s *SharesSplit) Update(expenseAmount Amount, user UserID, value int64) (SplitResult, error) {
	if user == "" {
		return SplitResult{}, ErrUserRequired
	}
	if value < 0 || value > 100 {
		return SplitResult{}, fmt.Errorf("%w: %d", ErrShareOutOfRange, value)
	}
	s.expenseAmount = expenseAmount
	s.shares[user] = value

	s.totalShare = 0
	for _, sh := range s.shares {
		s.totalShare += sh
	}

	if s.totalShare == 100 {
		var others Amount
		for u, a := range s.amounts {
			if u != user {
				others += a
			}
		}
		s.amounts[user] = expenseAmount - others
	} else {
		s.amounts[user] = shareAmount(expenseAmount, value)
	}

	s.refreshTotals()
	return s.result(), nil
}

// Recalculate rederives every amount from its share. At exactly 100% total
// share, any rounding discrepancy is corrected by nudging a randomly chosen
// subset of users by one unit each until the amounts sum to expenseAmount.
func (s *SharesSplit) Recalculate(expenseAmount Amount) SplitResult {
	s.expenseAmount = expenseAmount
	s.totalShare = 0
	for u, sh := range s.shares {
		s.totalShare += sh
		s.amounts[u] = shareAmount(expenseAmount, sh)
	}

	if s.totalShare == 100 {
		var sum Amount
		for _, a := range s.amounts {
			sum += a
		}
		s.nudge(expenseAmount - sum)
	}

	s.refreshTotals()
	return s.result()
}

// nudge spreads a rounding discrepancy of diff units across |diff| randomly
// chosen users, one unit each. Deductions only target users who still have
// something to give.
func (s *SharesSplit) nudge(diff Amount) {
	if diff == 0 {
		return
	}
	step := Amount(1)
	if diff < 0 {
		step = -1
		diff = -diff
	}
	candidates := make([]UserID, 0, len(s.amounts))
	for u := range s.amounts {
		if step > 0 && s.shares[u] > 0 {
			candidates = append(candidates, u)
		}
		if step < 0 && s.amounts[u] > 0 {
			candidates = append(candidates, u)
		}
	}
	s.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	for i := 0; i < len(candidates) && diff > 0; i++ {
		s.amounts[candidates[i]] += step
		diff--
	}
}

func (s *SharesSplit) refreshTotals() {
	s.totalAmount = 0
	for _, a := range s.amounts {
		s.totalAmount += a
	}
	s.valid = s.expenseAmount-s.totalAmount == 0
}

// Owed returns the user's current derived amount.
func (s *SharesSplit) Owed(user UserID) Amount { return s.amounts[user] }

// Amounts returns a copy of the per-user allocation map.
func (s *SharesSplit) Amounts() map[UserID]Amount { return copyAmounts(s.amounts) }

// Share returns the user's current percentage.
func (s *SharesSplit) Share(user UserID) int64 { return s.shares[user] }

// TotalShare returns the sum of all shares.
func (s *SharesSplit) TotalShare() int64 { return s.totalShare }

// Valid reports whether the derived amounts sum to the expense amount.
func (s *SharesSplit) Valid() bool { return s.valid }

// Reset zeroes every share and amount.
func (s *SharesSplit) Reset() {
	clear(s.shares)
	clear(s.amounts)
	for _, u := range s.roster {
		s.shares[u] = 0
		s.amounts[u] = 0
	}
	s.totalAmount = 0
	s.totalShare = 0
	s.expenseAmount = 0
	s.valid = true
}

func (s *SharesSplit) result() SplitResult {
	return SplitResult{
		Amounts:         copyAmounts(s.amounts),
		TotalAmount:     s.totalAmount,
		RemainderAmount: s.expenseAmount - s.totalAmount,
		TotalShare:      s.totalShare,
		RemainderShare:  100 - s.totalShare,
		Valid:           s.valid,
	}
}

// shareAmount rounds expenseAmount*share/100 half up.
func shareAmount(expenseAmount Amount, share int64) Amount {
	return (expenseAmount*Amount(share) + 50) / 100
}
