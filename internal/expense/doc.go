// Package expense implements the expense-splitting and balance-reconciliation
// engine behind the add/edit expense form.
//
// # Components
//
// The aggregate root is ExpenseDraft. It owns a PayerLedger (who paid how
// much) and a SplitRegistry (how the cost is divided). The registry holds one
// instance of each of the three split strategies:
//   - EqualSplit: equal shares among a selected subset of the group
//   - PartsSplit: freely entered fixed amounts that must sum to the expense
//   - SharesSplit: integer percentages with derived amounts
//
// BalanceResolver derives the current user's net position from a draft.
//
// # Amounts and rounding
//
// All amounts are integer minor currency units (e.g. cents). Every strategy
// keeps its allocations reconciled to the exact expense amount: EqualSplit
// distributes the division remainder one unit at a time, and SharesSplit
// corrects rounding drift once shares reach 100%. Which users absorb those
// odd units is chosen at random; callers must not rely on a particular
// assignment, only on the totals.
//
// # Concurrency
//
// The engine is single-threaded by contract. It performs no locking and no
// I/O; the embedding layer (typically a request handler or a UI event loop)
// must serialize all mutating calls on a draft.
package expense
