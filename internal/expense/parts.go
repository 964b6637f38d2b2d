package expense

import "fmt"

// PartsSplit lets users enter fixed amounts freely. Nothing is corrected
// automatically: the split is valid only once the entered parts sum to the
// expense amount, so the user must balance the remainder by hand.
type PartsSplit struct {
	roster  []UserID
	amounts map[UserID]Amount

	total         Amount
	expenseAmount Amount
	valid         bool
}

// NewPartsSplit creates the strategy with a zero allocation per roster user.
func NewPartsSplit(roster []UserID) *PartsSplit {
	s := &PartsSplit{
		roster:  roster,
		amounts: make(map[UserID]Amount, len(roster)),
	}
	s.Reset()
	return s
}

// Kind identifies the strategy.
func (s *PartsSplit) Kind() SplitKind { return SplitParts }

// Update sets the named user's part to value and recomputes the totals.
func (s *PartsSplit) Update(expenseAmount Amount, user UserID, value int64) (SplitResult, error) {
	if user == "" {
		return SplitResult{}, ErrUserRequired
	}
	if value < 0 {
		return SplitResult{}, fmt.Errorf("%w: %d", ErrNegativeAmount, value)
	}
	s.amounts[user] = Amount(value)
	return s.Recalculate(expenseAmount), nil
}

// Recalculate refreshes the total and remainder against a new expense
// amount. Parts are left exactly as the user entered them.
func (s *PartsSplit) Recalculate(expenseAmount Amount) SplitResult {
	s.expenseAmount = expenseAmount
	s.total = 0
	for _, a := range s.amounts {
		s.total += a
	}
	s.valid = s.expenseAmount-s.total == 0
	return s.result()
}

// Owed returns the user's current part.
func (s *PartsSplit) Owed(user UserID) Amount { return s.amounts[user] }

// Amounts returns a copy of the per-user allocation map.
func (s *PartsSplit) Amounts() map[UserID]Amount { return copyAmounts(s.amounts) }

// Valid reports whether the entered parts sum to the expense amount.
func (s *PartsSplit) Valid() bool { return s.valid }

// Reset zeroes every part.
func (s *PartsSplit) Reset() {
	clear(s.amounts)
	for _, u := range s.roster {
		s.amounts[u] = 0
	}
	s.total = 0
	s.expenseAmount = 0
	s.valid = true
}

func (s *PartsSplit) result() SplitResult {
	return SplitResult{
		Amounts:         copyAmounts(s.amounts),
		TotalAmount:     s.total,
		RemainderAmount: s.expenseAmount - s.total,
		Valid:           s.valid,
	}
}
