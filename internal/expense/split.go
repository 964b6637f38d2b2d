package expense

// SplitKind discriminates the three split strategies. Dispatch is always over
// this closed set; there is no open-ended registration.
type SplitKind string

const (
	SplitEqual  SplitKind = "equal"
	SplitParts  SplitKind = "parts"
	SplitShares SplitKind = "shares"
)

// SplitResult is the state snapshot a strategy reports after each mutation.
// The share fields are only populated by SharesSplit; RemainderShare (the gap
// to 100%) is informational and never blocks validity.
type SplitResult struct {
	Amounts         map[UserID]Amount
	TotalAmount     Amount
	RemainderAmount Amount
	TotalShare      int64
	RemainderShare  int64
	Valid           bool
}

// SplitStrategy is one way of dividing an expense among group members. The
// registry owns exactly one instance of each of the three implementations.
type SplitStrategy interface {
	Kind() SplitKind

	// Update applies one user edit: membership toggle for EqualSplit, a
	// fixed amount for PartsSplit, a percentage for SharesSplit.
	Update(expenseAmount Amount, user UserID, value int64) (SplitResult, error)

	// Recalculate recomputes every allocation against a new expense amount
	// without a user edit.
	Recalculate(expenseAmount Amount) SplitResult

	// Owed returns the user's current allocation.
	Owed(user UserID) Amount

	// Amounts returns a copy of the per-user allocation map.
	Amounts() map[UserID]Amount

	Valid() bool

	// Reset restores the strategy to its initial state for the roster it
	// was created with.
	Reset()
}

func copyAmounts(m map[UserID]Amount) map[UserID]Amount {
	out := make(map[UserID]Amount, len(m))
	for u, a := range m {
		out[u] = a
	}
	return out
}
