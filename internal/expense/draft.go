package expense

import (
	"fmt"
	"math/rand/v2"
	"time"
	"unicode/utf8"
)

// SubForm names the auxiliary form currently open on top of the draft, or
// the empty value when none is.
type SubForm string

const (
	SubFormNone   SubForm = ""
	SubFormPaidBy SubForm = "paid_by"
	SubFormSplit  SubForm = "split"
	SubFormDate   SubForm = "date"
	SubFormEmoji  SubForm = "emoji"
	SubFormNote   SubForm = "note"
)

// Limits bounds the free-text fields of a draft.
type Limits struct {
	TitleLen int
	NoteLen  int
}

// DefaultLimits mirror the form's on-screen limits.
var DefaultLimits = Limits{TitleLen: 64, NoteLen: 512}

// ExpenseDraft is the aggregate for one add/edit expense session. It owns
// the payer ledger and the split registry, forwards user edits to them, and
// derives overall submit-readiness. All mutating calls must be serialized by
// the caller.
type ExpenseDraft struct {
	limits      Limits
	currentUser UserID
	roster      []UserID

	amount Amount
	title  string
	note   string
	emoji  string
	date   time.Time

	ledger *PayerLedger
	splits *SplitRegistry

	openForm SubForm
	valid    bool
}

// AmountUpdate reports the ledger and active-split state after the expense
// amount changed, so every dependent widget can refresh at once.
type AmountUpdate struct {
	Ledger LedgerUpdate
	Split  SplitResult
}

// NewExpenseDraft creates a draft for currentUser over the group roster.
// The allocator is shared across drafts so recycled payer entries never
// reuse an id. A nil rng seeds one from the process-wide source.
func NewExpenseDraft(alloc *IDAllocator, currentUser UserID, roster []UserID, limits Limits, rng *rand.Rand) *ExpenseDraft {
	return &ExpenseDraft{
		limits:      limits,
		currentUser: currentUser,
		roster:      roster,
		date:        time.Now(),
		ledger:      NewPayerLedger(alloc, currentUser, 0),
		splits:      NewSplitRegistry(roster, rng),
	}
}

// SetAmount sets the expense amount and pushes it through the ledger (a sole
// payer entry absorbs it) and the active split strategy.
func (d *ExpenseDraft) SetAmount(a Amount) (AmountUpdate, error) {
	if a < 0 {
		return AmountUpdate{}, fmt.Errorf("%w: %d", ErrNegativeAmount, a)
	}
	d.amount = a
	return AmountUpdate{
		Ledger: d.ledger.SyncExpenseAmount(a),
		Split:  d.splits.Active().Recalculate(a),
	}, nil
}

// SetTitle sets the title. An empty string clears it; a non-empty value must
// fit the configured limit.
func (d *ExpenseDraft) SetTitle(title string) error {
	if utf8.RuneCountInString(title) > d.limits.TitleLen {
		return fmt.Errorf("%w: title limit is %d", ErrTextTooLong, d.limits.TitleLen)
	}
	d.title = title
	return nil
}

// SetNote sets the note. An empty string clears it.
func (d *ExpenseDraft) SetNote(note string) error {
	if utf8.RuneCountInString(note) > d.limits.NoteLen {
		return fmt.Errorf("%w: note limit is %d", ErrTextTooLong, d.limits.NoteLen)
	}
	d.note = note
	return nil
}

// SetEmoji sets the emoji. An empty string clears it.
func (d *ExpenseDraft) SetEmoji(emoji string) {
	d.emoji = emoji
}

// SetDate sets the expense date, which must be a real calendar value.
func (d *ExpenseDraft) SetDate(t time.Time) error {
	if t.IsZero() {
		return ErrInvalidDate
	}
	d.date = t
	return nil
}

// AddPayer activates another payer entry.
func (d *ExpenseDraft) AddPayer() AddEntryResult {
	return d.ledger.AddEntry()
}

// RemovePayer removes a payer entry (softly refused for the default or sole
// entry).
func (d *ExpenseDraft) RemovePayer(entryID int) (RemoveEntryResult, error) {
	return d.ledger.RemoveEntry(entryID, d.amount)
}

// SetPayerUser assigns a user to a payer entry.
func (d *ExpenseDraft) SetPayerUser(entryID int, user UserID) (LedgerUpdate, error) {
	return d.ledger.UpdateUser(entryID, user)
}

// SetPayerAmount sets how much a payer entry contributed.
func (d *ExpenseDraft) SetPayerAmount(entryID int, amount Amount) (LedgerUpdate, error) {
	return d.ledger.UpdateAmount(entryID, amount, d.amount)
}

// SelectSplit activates the strategy for the given kind and recomputes its
// allocations against the current amount.
func (d *ExpenseDraft) SelectSplit(kind SplitKind) (SplitResult, error) {
	s, err := d.splits.ByKind(kind)
	if err != nil {
		return SplitResult{}, err
	}
	if err := d.splits.SetActive(s); err != nil {
		return SplitResult{}, err
	}
	return s.Recalculate(d.amount), nil
}

// UpdateSplit forwards one user edit to the active strategy.
func (d *ExpenseDraft) UpdateSplit(user UserID, value int64) (SplitResult, error) {
	return d.splits.Active().Update(d.amount, user, value)
}

// OpenSubForm records which auxiliary form is open.
func (d *ExpenseDraft) OpenSubForm(f SubForm) error {
	switch f {
	case SubFormPaidBy, SubFormSplit, SubFormDate, SubFormEmoji, SubFormNote:
		d.openForm = f
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSubForm, f)
	}
}

// CloseSubForm records that no auxiliary form is open.
func (d *ExpenseDraft) CloseSubForm() {
	d.openForm = SubFormNone
}

// OpenForm returns the currently open auxiliary form, if any.
func (d *ExpenseDraft) OpenForm() SubForm { return d.openForm }

// ValidateForSubmission recomputes and returns submit-readiness: a title, a
// positive amount, a balanced payer ledger, and a valid active split.
func (d *ExpenseDraft) ValidateForSubmission() bool {
	d.valid = d.title != "" &&
		d.amount > 0 &&
		d.ledger.Valid() &&
		d.splits.Active().Valid()
	return d.valid
}

// Reset clears the draft for the next session: fields zeroed, payer entries
// pooled, every split strategy reset with EqualSplit active again.
func (d *ExpenseDraft) Reset() {
	d.amount = 0
	d.title = ""
	d.note = ""
	d.emoji = ""
	d.date = time.Now()
	d.openForm = SubFormNone
	d.valid = false
	d.ledger.Reset(d.currentUser, 0)
	d.splits.Reset()
}

// Amount returns the expense amount in minor units.
func (d *ExpenseDraft) Amount() Amount { return d.amount }

// Title returns the title, empty when unset.
func (d *ExpenseDraft) Title() string { return d.title }

// Note returns the note, empty when unset.
func (d *ExpenseDraft) Note() string { return d.note }

// Emoji returns the emoji, empty when unset.
func (d *ExpenseDraft) Emoji() string { return d.emoji }

// Date returns the expense date.
func (d *ExpenseDraft) Date() time.Time { return d.date }

// Valid returns the result of the last ValidateForSubmission call.
func (d *ExpenseDraft) Valid() bool { return d.valid }

// CurrentUser returns the user the draft was opened for.
func (d *ExpenseDraft) CurrentUser() UserID { return d.currentUser }

// Roster returns the group roster the draft was created with.
func (d *ExpenseDraft) Roster() []UserID { return d.roster }

// Ledger exposes the payer ledger.
func (d *ExpenseDraft) Ledger() *PayerLedger { return d.ledger }

// Splits exposes the split registry.
func (d *ExpenseDraft) Splits() *SplitRegistry { return d.splits }
