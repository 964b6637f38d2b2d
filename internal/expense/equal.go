package expense

import (
	"math/rand/v2"
)

// EqualSplit divides the expense evenly among a selected subset of the group.
// When the amount does not divide evenly, exactly `amount mod n` of the
// selected users pay one extra minor unit; which users is random.
type EqualSplit struct {
	rng      *rand.Rand
	roster   []UserID
	selected map[UserID]struct{}
	amounts  map[UserID]Amount

	total         Amount
	expenseAmount Amount
	valid         bool
}

// NewEqualSplit creates the strategy with every roster user selected, the
// usual "split between everyone" default.
func NewEqualSplit(roster []UserID, rng *rand.Rand) *EqualSplit {
	s := &EqualSplit{
		rng:      rng,
		roster:   roster,
		selected: make(map[UserID]struct{}, len(roster)),
		amounts:  make(map[UserID]Amount, len(roster)),
	}
	s.Reset()
	return s
}

// Kind identifies the strategy.
func (s *EqualSplit) Kind() SplitKind { return SplitEqual }

// Update toggles the user's membership in the selected set and redistributes
// the expense among whoever remains selected. The value argument is unused.
func (s *EqualSplit) Update(expenseAmount Amount, user UserID, _ int64) (SplitResult, error) {
	if user == "" {
		return SplitResult{}, ErrUserRequired
	}
	if _, ok := s.selected[user]; ok {
		delete(s.selected, user)
		s.amounts[user] = 0
	} else {
		s.selected[user] = struct{}{}
	}
	return s.Recalculate(expenseAmount), nil
}

// Recalculate redistributes the expense among the selected users. The sum of
// allocations always equals expenseAmount exactly: each selected user gets
// floor(amount/n), and the remaining `amount mod n` units go to a random
// subset of them.
func (s *EqualSplit) Recalculate(expenseAmount Amount) SplitResult {
	s.expenseAmount = expenseAmount
	for u := range s.amounts {
		s.amounts[u] = 0
	}
	n := len(s.selected)
	s.valid = n > 0
	if n == 0 {
		s.total = 0
		return s.result()
	}
	base := expenseAmount / Amount(n)
	extra := int(expenseAmount % Amount(n))
	users := make([]UserID, 0, n)
	for u := range s.selected {
		users = append(users, u)
	}
	s.rng.Shuffle(len(users), func(i, j int) { users[i], users[j] = users[j], users[i] })
	for i, u := range users {
		amt := base
		if i < extra {
			amt++
		}
		s.amounts[u] = amt
	}
	s.total = expenseAmount
	return s.result()
}

// Owed returns the user's current allocation.
func (s *EqualSplit) Owed(user UserID) Amount { return s.amounts[user] }

// Amounts returns a copy of the per-user allocation map.
func (s *EqualSplit) Amounts() map[UserID]Amount { return copyAmounts(s.amounts) }

// Valid reports whether at least one user is selected. The remainder is zero
// by construction, so membership is the only rule.
func (s *EqualSplit) Valid() bool { return s.valid }

// Selected reports whether the user is currently part of the split.
func (s *EqualSplit) Selected(user UserID) bool {
	_, ok := s.selected[user]
	return ok
}

// Reset restores the initial all-selected state with zero allocations.
func (s *EqualSplit) Reset() {
	clear(s.selected)
	clear(s.amounts)
	for _, u := range s.roster {
		s.selected[u] = struct{}{}
		s.amounts[u] = 0
	}
	s.total = 0
	s.expenseAmount = 0
	s.valid = len(s.roster) > 0
}

func (s *EqualSplit) result() SplitResult {
	return SplitResult{
		Amounts:         copyAmounts(s.amounts),
		TotalAmount:     s.total,
		RemainderAmount: s.expenseAmount - s.total,
		Valid:           s.valid,
	}
}
