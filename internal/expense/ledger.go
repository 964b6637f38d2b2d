package expense

import (
	"fmt"
	"sort"
)

// PayerLedger tracks the active set of payer entries for one expense plus a
// pool of recycled entries. It keeps a running total, the remainder against
// the expense amount, and a validity flag the draft consults on submission.
//
// Structural invariants:
//   - exactly one entry is the default entry and it is never removable;
//   - each user appears in at most one active entry;
//   - with exactly one active entry, that entry's amount is pinned to the
//     expense amount (the sole payer absorbs the whole expense).
type PayerLedger struct {
	alloc *IDAllocator

	entries map[int]*PayerEntry
	pool    map[int]*PayerEntry

	defaultID int
	users     map[UserID]int      // user -> owning entry id
	payers    map[UserID]struct{} // users whose entry has amount > 0

	expenseAmount Amount
	total         Amount
	remainder     Amount
	valid         bool
}

// LedgerUpdate is the state snapshot reported after each mutation so the
// caller can refresh payer rows and the save control.
type LedgerUpdate struct {
	Total     Amount
	Remainder Amount
	Valid     bool
}

// AddEntryResult reports the outcome of AddEntry.
type AddEntryResult struct {
	EntryID      int
	IsNew        bool // false when a pooled entry was recycled
	EntriesCount int
	// DefaultAffected is set when the ledger grows from one entry to two:
	// the previously sole entry stops implicitly holding the whole amount.
	DefaultAffected bool
}

// RemoveEntryResult reports the outcome of RemoveEntry. Removed is false
// when the entry was the default or the only remaining entry; the ledger is
// left untouched in that case.
type RemoveEntryResult struct {
	Removed bool
	LedgerUpdate
}

// NewPayerLedger creates a ledger whose default entry is pre-assigned to
// currentUser. The sole entry absorbs the full expense amount immediately.
func NewPayerLedger(alloc *IDAllocator, currentUser UserID, expenseAmount Amount) *PayerLedger {
	l := &PayerLedger{
		alloc:         alloc,
		entries:       make(map[int]*PayerEntry),
		pool:          make(map[int]*PayerEntry),
		users:         make(map[UserID]int),
		payers:        make(map[UserID]struct{}),
		expenseAmount: expenseAmount,
	}
	def := &PayerEntry{ID: alloc.Next(), User: currentUser, Default: true}
	l.defaultID = def.ID
	l.entries[def.ID] = def
	if currentUser != "" {
		l.users[currentUser] = def.ID
	}
	l.recompute()
	return l
}

// AddEntry activates a recycled entry if the pool has one, otherwise creates
// a new entry with a freshly allocated id.
func (l *PayerLedger) AddEntry() AddEntryResult {
	var e *PayerEntry
	isNew := len(l.pool) == 0
	if isNew {
		e = &PayerEntry{ID: l.alloc.Next()}
	} else {
		for id, p := range l.pool {
			e = p
			delete(l.pool, id)
			break
		}
	}
	l.entries[e.ID] = e
	res := AddEntryResult{
		EntryID:         e.ID,
		IsNew:           isNew,
		EntriesCount:    len(l.entries),
		DefaultAffected: len(l.entries) == 2,
	}
	l.recompute()
	return res
}

// RemoveEntry clears the entry and returns it to the pool. The default entry
// and the sole remaining entry refuse removal softly (Removed=false, no
// mutation). If removal leaves exactly one entry, that entry absorbs the
// full expense amount.
func (l *PayerLedger) RemoveEntry(entryID int, expenseAmount Amount) (RemoveEntryResult, error) {
	e, ok := l.entries[entryID]
	if !ok {
		return RemoveEntryResult{}, fmt.Errorf("%w: id %d", ErrEntryNotFound, entryID)
	}
	if e.Default || len(l.entries) == 1 {
		return RemoveEntryResult{Removed: false, LedgerUpdate: l.snapshot()}, nil
	}
	l.expenseAmount = expenseAmount
	if e.User != "" {
		delete(l.users, e.User)
		delete(l.payers, e.User)
	}
	e.clear()
	delete(l.entries, entryID)
	l.pool[entryID] = e
	l.recompute()
	return RemoveEntryResult{Removed: true, LedgerUpdate: l.snapshot()}, nil
}

// UpdateUser assigns user to the entry, unassigning any previous user. It
// fails with ErrDuplicateUser when the user already owns another active
// entry. An empty user clears the assignment.
func (l *PayerLedger) UpdateUser(entryID int, user UserID) (LedgerUpdate, error) {
	e, ok := l.entries[entryID]
	if !ok {
		return LedgerUpdate{}, fmt.Errorf("%w: id %d", ErrEntryNotFound, entryID)
	}
	if owner, taken := l.users[user]; user != "" && taken && owner != entryID {
		return LedgerUpdate{}, fmt.Errorf("%w: %s", ErrDuplicateUser, user)
	}
	if e.User != "" {
		delete(l.users, e.User)
		delete(l.payers, e.User)
	}
	e.User = user
	if user != "" {
		l.users[user] = entryID
		if e.Amount > 0 {
			l.payers[user] = struct{}{}
		}
	}
	l.validate()
	return l.snapshot(), nil
}

// UpdateAmount sets the entry's amount and recomputes totals. With a single
// active entry the amount is pinned back to the expense amount.
func (l *PayerLedger) UpdateAmount(entryID int, amount, expenseAmount Amount) (LedgerUpdate, error) {
	e, ok := l.entries[entryID]
	if !ok {
		return LedgerUpdate{}, fmt.Errorf("%w: id %d", ErrEntryNotFound, entryID)
	}
	if amount < 0 {
		return LedgerUpdate{}, fmt.Errorf("%w: %d", ErrNegativeAmount, amount)
	}
	l.expenseAmount = expenseAmount
	e.Amount = amount
	l.recompute()
	return l.snapshot(), nil
}

// SyncExpenseAmount must be called when the overall expense amount changes.
// A sole active entry automatically absorbs the new amount.
func (l *PayerLedger) SyncExpenseAmount(expenseAmount Amount) LedgerUpdate {
	l.expenseAmount = expenseAmount
	l.recompute()
	return l.snapshot()
}

// Reset pools every non-default entry and re-assigns the cleared default
// entry to currentUser, ready for the next add/edit session.
func (l *PayerLedger) Reset(currentUser UserID, expenseAmount Amount) {
	for id, e := range l.entries {
		if e.Default {
			continue
		}
		e.clear()
		delete(l.entries, id)
		l.pool[id] = e
	}
	def := l.entries[l.defaultID]
	def.clear()
	def.User = currentUser
	clear(l.users)
	if currentUser != "" {
		l.users[currentUser] = l.defaultID
	}
	l.expenseAmount = expenseAmount
	l.recompute()
}

func (l *PayerLedger) recompute() {
	// Sole-payer rule: one active entry always carries the whole expense.
	if len(l.entries) == 1 {
		for _, e := range l.entries {
			e.Amount = l.expenseAmount
		}
	}
	l.total = 0
	clear(l.payers)
	for _, e := range l.entries {
		l.total += e.Amount
		if e.User != "" && e.Amount > 0 {
			l.payers[e.User] = struct{}{}
		}
	}
	l.remainder = l.expenseAmount - l.total
	l.validate()
}

// validate applies the ledger validity rule: zero remainder, at least one
// payer, and no anonymous entry holding money.
func (l *PayerLedger) validate() {
	if l.remainder != 0 || len(l.payers) == 0 {
		l.valid = false
		return
	}
	for _, e := range l.entries {
		if e.Amount > 0 && e.User == "" {
			l.valid = false
			return
		}
	}
	l.valid = true
}

func (l *PayerLedger) snapshot() LedgerUpdate {
	return LedgerUpdate{Total: l.total, Remainder: l.remainder, Valid: l.valid}
}

// Total returns the sum of all active entry amounts.
func (l *PayerLedger) Total() Amount { return l.total }

// Remainder returns the unallocated gap between the expense amount and Total.
func (l *PayerLedger) Remainder() Amount { return l.remainder }

// Valid reports whether the ledger satisfies its validity rule.
func (l *PayerLedger) Valid() bool { return l.valid }

// DefaultEntryID returns the id of the non-removable default entry.
func (l *PayerLedger) DefaultEntryID() int { return l.defaultID }

// Len returns the number of active entries.
func (l *PayerLedger) Len() int { return len(l.entries) }

// Entry returns the active entry with the given id.
func (l *PayerLedger) Entry(entryID int) (PayerEntry, error) {
	e, ok := l.entries[entryID]
	if !ok {
		return PayerEntry{}, fmt.Errorf("%w: id %d", ErrEntryNotFound, entryID)
	}
	return *e, nil
}

// Entries returns copies of the active entries ordered by id, which is also
// their creation order.
func (l *PayerLedger) Entries() []PayerEntry {
	out := make([]PayerEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Paid returns how much the given user paid, or zero if the user has no
// active entry.
func (l *PayerLedger) Paid(user UserID) Amount {
	id, ok := l.users[user]
	if !ok {
		return 0
	}
	return l.entries[id].Amount
}
