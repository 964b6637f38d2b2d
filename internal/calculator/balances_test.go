package calculator

import (
	"reflect"
	"testing"
)

func TestGroupBalances(t *testing.T) {
	tests := []struct {
		name         string
		expenses     []ExpenseForBalance
		settlements  []SettlementForBalance
		wantBalances []MemberBalance
		wantEdges    []DebtEdge
	}{
		{
			name: "single expense one payer",
			expenses: []ExpenseForBalance{
				{
					Paid: map[string]int64{"alice": 1000},
					Owed: map[string]int64{"alice": 500, "bob": 500},
				},
			},
			wantBalances: []MemberBalance{
				{UserID: "alice", Net: 500, TotalPaid: 1000, TotalOwed: 500},
				{UserID: "bob", Net: -500, TotalPaid: 0, TotalOwed: 500},
			},
			wantEdges: []DebtEdge{
				{From: "bob", To: "alice", Amount: 500},
			},
		},
		{
			name: "settlement clears debt",
			expenses: []ExpenseForBalance{
				{
					Paid: map[string]int64{"alice": 1000},
					Owed: map[string]int64{"alice": 500, "bob": 500},
				},
			},
			settlements: []SettlementForBalance{
				{FromUserID: "bob", ToUserID: "alice", Amount: 500},
			},
			wantBalances: []MemberBalance{
				{UserID: "alice", Net: 0, TotalPaid: 1000, TotalOwed: 1000},
				{UserID: "bob", Net: 0, TotalPaid: 500, TotalOwed: 500},
			},
			wantEdges: nil,
		},
		{
			name: "multiple payers and expenses net out",
			expenses: []ExpenseForBalance{
				{
					Paid: map[string]int64{"alice": 600, "bob": 400},
					Owed: map[string]int64{"alice": 250, "bob": 250, "carol": 500},
				},
				{
					Paid: map[string]int64{"carol": 300},
					Owed: map[string]int64{"alice": 100, "bob": 100, "carol": 100},
				},
			},
			wantBalances: []MemberBalance{
				{UserID: "alice", Net: 250, TotalPaid: 600, TotalOwed: 350},
				{UserID: "bob", Net: 50, TotalPaid: 400, TotalOwed: 350},
				{UserID: "carol", Net: -300, TotalPaid: 300, TotalOwed: 600},
			},
			wantEdges: []DebtEdge{
				{From: "carol", To: "alice", Amount: 250},
				{From: "carol", To: "bob", Amount: 50},
			},
		},
		{
			name:         "no data",
			wantBalances: []MemberBalance{},
			wantEdges:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances, edges := GroupBalances(tt.expenses, tt.settlements)

			if !reflect.DeepEqual(balances, tt.wantBalances) {
				t.Errorf("balances = %+v, want %+v", balances, tt.wantBalances)
			}
			if !reflect.DeepEqual(edges, tt.wantEdges) {
				t.Errorf("edges = %+v, want %+v", edges, tt.wantEdges)
			}
		})
	}
}

func TestGroupBalancesConservation(t *testing.T) {
	// Every reconciled expense conserves money, so net balances always sum
	// to zero and the simplified edges settle every position exactly.
	expenses := []ExpenseForBalance{
		{
			Paid: map[string]int64{"a": 999},
			Owed: map[string]int64{"a": 333, "b": 333, "c": 333},
		},
		{
			Paid: map[string]int64{"b": 250, "c": 250},
			Owed: map[string]int64{"a": 167, "b": 167, "c": 166},
		},
	}

	balances, edges := GroupBalances(expenses, nil)

	var netSum int64
	for _, b := range balances {
		netSum += b.Net
	}
	if netSum != 0 {
		t.Fatalf("net balances sum to %d, want 0", netSum)
	}

	// Paying an edge improves the debtor's position and reduces the
	// creditor's claim; afterwards every net position must be zero.
	settled := make(map[string]int64)
	for _, e := range edges {
		settled[e.From] += e.Amount
		settled[e.To] -= e.Amount
	}
	for _, b := range balances {
		if b.Net+settled[b.UserID] != 0 {
			t.Errorf("user %s: net %d not settled by edges (delta %d)", b.UserID, b.Net, settled[b.UserID])
		}
	}
}
