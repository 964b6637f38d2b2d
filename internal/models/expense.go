package models

// PayerShare records how much one user paid toward an expense.
type PayerShare struct {
	UserID string
	Amount int64
}

// SplitShare records one user's allocation of an expense's cost. Share is
// the integer percentage under the shares split and zero otherwise.
type SplitShare struct {
	UserID string
	Amount int64
	Share  int64
}

// Expense is a submitted, fully reconciled expense. The sums of Payers and
// Splits each equal Amount; the service layer only persists drafts that
// passed validation.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Title is the short human-readable name. Note and Emoji are optional.
	Title string
	Note  string
	Emoji string

	// Amount is the total expense amount in minor units.
	Amount int64

	// Date is the Unix timestamp of the day the expense occurred.
	Date int64

	// SplitKind names the strategy the cost was divided with: "equal",
	// "parts" or "shares".
	SplitKind string

	// Payers lists who paid how much.
	Payers []PayerShare

	// Splits lists who owes how much.
	Splits []SplitShare

	// CreatedBy is the user who submitted the expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was stored.
	CreatedAt int64
}
