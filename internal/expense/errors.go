package expense

import "errors"

// Validation errors: a setter received a value outside its declared domain.
var (
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrTextTooLong     = errors.New("text exceeds the character limit")
	ErrInvalidDate     = errors.New("date is not a valid calendar value")
	ErrShareOutOfRange = errors.New("share must be between 0 and 100")
	ErrUserRequired    = errors.New("a user must be named for this update")
	ErrUnknownSubForm  = errors.New("unknown sub-form")
)

// Invariant violations: the operation would break a structural invariant.
// Callers treat these as rejected input or a programming bug, never as a
// recoverable runtime condition.
var (
	ErrDuplicateUser     = errors.New("user is already assigned to another payer entry")
	ErrUnregisteredSplit = errors.New("split form is not one of the registered strategies")
)

// ErrEntryNotFound is returned when an operation references a payer entry id
// that does not exist in the ledger.
var ErrEntryNotFound = errors.New("payer entry not found")
