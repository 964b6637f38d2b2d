package expense

// BalanceStatus tags the outcome of resolving a draft's balance for a user.
type BalanceStatus string

const (
	// BalanceCheckPaidBy means the payer ledger is not balanced yet.
	BalanceCheckPaidBy BalanceStatus = "check_paid_by"
	// BalanceCheckSplit means the active split is not balanced yet.
	BalanceCheckSplit BalanceStatus = "check_split"
	// BalanceAmountZero means no expense amount has been entered.
	BalanceAmountZero BalanceStatus = "amount_zero"
	// BalanceBelowMin means the amount is positive but under the minimum.
	BalanceBelowMin BalanceStatus = "amount_below_min"
	// BalanceResolved means Amount carries the user's net balance.
	BalanceResolved BalanceStatus = "resolved"
)

// Balance is the resolved status for one user. Amount is the user's paid
// contribution minus their split-owed allocation and is meaningful only when
// Status is BalanceResolved.
type Balance struct {
	Status BalanceStatus
	Amount Amount
}

// BalanceResolver derives a presentable balance status from a draft. It is a
// pure read over the draft's state.
type BalanceResolver struct {
	// MinAmount is the smallest submittable expense amount in minor units.
	MinAmount Amount
}

// Resolve evaluates the status checks in strict order and short-circuits on
// the first match: amount below minimum, amount zero, unbalanced paid-by,
// unbalanced split, then the resolved net balance.
func (r BalanceResolver) Resolve(d *ExpenseDraft, user UserID) Balance {
	amount := d.Amount()
	switch {
	case amount > 0 && amount < r.MinAmount:
		return Balance{Status: BalanceBelowMin}
	case amount == 0:
		return Balance{Status: BalanceAmountZero}
	case !d.Ledger().Valid():
		return Balance{Status: BalanceCheckPaidBy}
	case !d.Splits().Active().Valid():
		return Balance{Status: BalanceCheckSplit}
	}
	paid := d.Ledger().Paid(user)
	owed := d.Splits().Active().Owed(user)
	return Balance{Status: BalanceResolved, Amount: paid - owed}
}
