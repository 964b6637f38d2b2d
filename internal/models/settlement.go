package models

// Settlement is a payment between group members to clear debts.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromUserID paid (the debtor settling up); ToUserID received.
	FromUserID string
	ToUserID   string

	// Amount is the payment amount in minor units.
	Amount int64

	// Note is an optional description.
	Note string

	// CreatedBy recorded the settlement; CreatedAt is a Unix timestamp.
	CreatedBy string
	CreatedAt int64
}
