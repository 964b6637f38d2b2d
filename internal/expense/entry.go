package expense

// UserID identifies a group member. The zero value means "no user assigned".
type UserID string

// Amount is a quantity of money in minor currency units (e.g. cents).
// Amounts are never fractional.
type Amount int64

// IDAllocator issues unique, monotonically increasing identifiers for payer
// entries. An allocator is owned by whoever creates ledgers (one per process
// is typical) and is never consulted when a recycled entry is reused: entries
// keep their original id for their whole lifetime.
type IDAllocator struct {
	next int
}

// NewIDAllocator returns an allocator whose first issued id is 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

// Next returns a fresh identifier. Identifiers are never reissued.
func (a *IDAllocator) Next() int {
	id := a.next
	a.next++
	return id
}

// PayerEntry records one payer's contribution toward an expense. Exactly one
// entry per ledger has Default set; that entry is pre-populated for the
// current user and can never be removed.
type PayerEntry struct {
	ID      int
	User    UserID
	Amount  Amount
	Default bool
}

// clear resets the assignable fields before the entry is returned to the
// recycling pool. The id is deliberately kept.
func (e *PayerEntry) clear() {
	e.User = ""
	e.Amount = 0
}
