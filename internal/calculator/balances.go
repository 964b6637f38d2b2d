// Package calculator aggregates stored expenses and settlements into
// per-member group balances and a simplified debt graph. All math is in
// integer minor currency units; there is no floating-point anywhere.
package calculator

import "sort"

// ExpenseForBalance is the slice of an expense the balance math needs: who
// paid what and who owes what, both already reconciled to the same total.
type ExpenseForBalance struct {
	// Paid maps user ID to the amount that user contributed.
	Paid map[string]int64
	// Owed maps user ID to the amount that user's split allocation.
	Owed map[string]int64
}

// SettlementForBalance is a direct payment from one member to another.
type SettlementForBalance struct {
	FromUserID string
	ToUserID   string
	Amount     int64
}

// MemberBalance is the aggregated position of one group member.
type MemberBalance struct {
	UserID    string
	Net       int64 // positive: is owed money; negative: owes money
	TotalPaid int64
	TotalOwed int64
}

// DebtEdge is one suggested repayment in the simplified debt graph.
type DebtEdge struct {
	From   string
	To     string
	Amount int64
}

// GroupBalances aggregates expenses and settlements into member balances and
// a greedily simplified set of repayments. A settlement counts as the payer
// having paid and the receiver having owed, which is how a repayment nets
// out existing debt.
//
// The returned balances are sorted by user ID; the debt edges are
// deterministic (largest positions matched first, ties broken by user ID).
func GroupBalances(expenses []ExpenseForBalance, settlements []SettlementForBalance) ([]MemberBalance, []DebtEdge) {
	byUser := make(map[string]*MemberBalance)
	get := func(userID string) *MemberBalance {
		b, ok := byUser[userID]
		if !ok {
			b = &MemberBalance{UserID: userID}
			byUser[userID] = b
		}
		return b
	}

	for _, e := range expenses {
		for user, amount := range e.Paid {
			get(user).TotalPaid += amount
		}
		for user, amount := range e.Owed {
			get(user).TotalOwed += amount
		}
	}
	for _, s := range settlements {
		get(s.FromUserID).TotalPaid += s.Amount
		get(s.ToUserID).TotalOwed += s.Amount
	}

	balances := make([]MemberBalance, 0, len(byUser))
	for _, b := range byUser {
		b.Net = b.TotalPaid - b.TotalOwed
		balances = append(balances, *b)
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].UserID < balances[j].UserID })

	return balances, simplifyDebts(balances)
}

// simplifyDebts matches debtors against creditors greedily, largest
// positions first, so the number of repayments is small and the output is
// stable for a given set of balances.
func simplifyDebts(balances []MemberBalance) []DebtEdge {
	type position struct {
		userID string
		amount int64
	}
	var debtors, creditors []position
	for _, b := range balances {
		switch {
		case b.Net < 0:
			debtors = append(debtors, position{b.UserID, -b.Net})
		case b.Net > 0:
			creditors = append(creditors, position{b.UserID, b.Net})
		}
	}
	byAmount := func(ps []position) func(i, j int) bool {
		return func(i, j int) bool {
			if ps[i].amount != ps[j].amount {
				return ps[i].amount > ps[j].amount
			}
			return ps[i].userID < ps[j].userID
		}
	}
	sort.Slice(debtors, byAmount(debtors))
	sort.Slice(creditors, byAmount(creditors))

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := min(debtors[i].amount, creditors[j].amount)
		if amount > 0 {
			edges = append(edges, DebtEdge{
				From:   debtors[i].userID,
				To:     creditors[j].userID,
				Amount: amount,
			})
		}
		debtors[i].amount -= amount
		creditors[j].amount -= amount
		if debtors[i].amount == 0 {
			i++
		}
		if creditors[j].amount == 0 {
			j++
		}
	}
	return edges
}
