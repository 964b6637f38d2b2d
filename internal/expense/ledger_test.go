package expense

import (
	"errors"
	"testing"
)

func newTestLedger(t *testing.T, currentUser UserID, expenseAmount Amount) *PayerLedger {
	t.Helper()
	return NewPayerLedger(NewIDAllocator(), currentUser, expenseAmount)
}

func TestNewPayerLedgerSolePayerAbsorbsAmount(t *testing.T) {
	l := newTestLedger(t, "alice", 1000)

	if got := l.Total(); got != 1000 {
		t.Errorf("Total = %d, want 1000", got)
	}
	if got := l.Remainder(); got != 0 {
		t.Errorf("Remainder = %d, want 0", got)
	}
	if !l.Valid() {
		t.Error("ledger with a sole assigned payer should be valid")
	}
	e, err := l.Entry(l.DefaultEntryID())
	if err != nil {
		t.Fatalf("Entry(default) error: %v", err)
	}
	if !e.Default || e.User != "alice" || e.Amount != 1000 {
		t.Errorf("default entry = %+v, want default entry for alice with amount 1000", e)
	}
}

func TestAddEntry(t *testing.T) {
	l := newTestLedger(t, "alice", 1000)

	res := l.AddEntry()
	if !res.IsNew {
		t.Error("first AddEntry should create a new entry")
	}
	if res.EntriesCount != 2 {
		t.Errorf("EntriesCount = %d, want 2", res.EntriesCount)
	}
	if !res.DefaultAffected {
		t.Error("adding the second entry should report the default entry as affected")
	}

	// Totals still reconcile: the default entry kept the full amount.
	if got := l.Total(); got != 1000 {
		t.Errorf("Total = %d, want 1000", got)
	}
	if got := l.Remainder(); got != 0 {
		t.Errorf("Remainder = %d, want 0", got)
	}

	res = l.AddEntry()
	if res.DefaultAffected {
		t.Error("adding the third entry should not report the default entry as affected")
	}
	if res.EntriesCount != 3 {
		t.Errorf("EntriesCount = %d, want 3", res.EntriesCount)
	}
}

func TestRemoveEntry(t *testing.T) {
	t.Run("default entry refuses removal", func(t *testing.T) {
		l := newTestLedger(t, "alice", 1000)
		l.AddEntry()

		res, err := l.RemoveEntry(l.DefaultEntryID(), 1000)
		if err != nil {
			t.Fatalf("RemoveEntry error: %v", err)
		}
		if res.Removed {
			t.Error("default entry must never be removed")
		}
		if l.Len() != 2 {
			t.Errorf("Len = %d, want 2 (no mutation)", l.Len())
		}
	})

	t.Run("sole entry refuses removal", func(t *testing.T) {
		l := newTestLedger(t, "alice", 1000)

		res, err := l.RemoveEntry(l.DefaultEntryID(), 1000)
		if err != nil {
			t.Fatalf("RemoveEntry error: %v", err)
		}
		if res.Removed {
			t.Error("sole entry must never be removed")
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		l := newTestLedger(t, "alice", 1000)

		if _, err := l.RemoveEntry(99, 1000); !errors.Is(err, ErrEntryNotFound) {
			t.Errorf("RemoveEntry(99) error = %v, want ErrEntryNotFound", err)
		}
	})

	t.Run("survivor absorbs amount", func(t *testing.T) {
		l := newTestLedger(t, "alice", 1000)
		added := l.AddEntry()
		if _, err := l.UpdateUser(added.EntryID, "bob"); err != nil {
			t.Fatalf("UpdateUser error: %v", err)
		}
		if _, err := l.UpdateAmount(added.EntryID, 400, 1000); err != nil {
			t.Fatalf("UpdateAmount error: %v", err)
		}
		if _, err := l.UpdateAmount(l.DefaultEntryID(), 600, 1000); err != nil {
			t.Fatalf("UpdateAmount error: %v", err)
		}

		res, err := l.RemoveEntry(added.EntryID, 1000)
		if err != nil {
			t.Fatalf("RemoveEntry error: %v", err)
		}
		if !res.Removed {
			t.Fatal("expected removal to succeed")
		}
		if res.Total != 1000 || res.Remainder != 0 {
			t.Errorf("after removal total=%d remainder=%d, want 1000/0", res.Total, res.Remainder)
		}
		if got := l.Paid("alice"); got != 1000 {
			t.Errorf("Paid(alice) = %d, want 1000 (sole survivor absorbs)", got)
		}
		if got := l.Paid("bob"); got != 0 {
			t.Errorf("Paid(bob) = %d, want 0 after removal", got)
		}
	})
}

func TestEntryPoolRecyclesWithoutReusingIDs(t *testing.T) {
	l := newTestLedger(t, "alice", 1000)

	first := l.AddEntry()
	if _, err := l.RemoveEntry(first.EntryID, 1000); err != nil {
		t.Fatalf("RemoveEntry error: %v", err)
	}

	second := l.AddEntry()
	if second.IsNew {
		t.Error("AddEntry after removal should recycle the pooled entry")
	}
	if second.EntryID != first.EntryID {
		t.Errorf("recycled entry id = %d, want original id %d", second.EntryID, first.EntryID)
	}

	// A recycled entry comes back cleared.
	e, err := l.Entry(second.EntryID)
	if err != nil {
		t.Fatalf("Entry error: %v", err)
	}
	if e.User != "" || e.Amount != 0 {
		t.Errorf("recycled entry = %+v, want cleared user and amount", e)
	}

	third := l.AddEntry()
	if !third.IsNew {
		t.Error("empty pool should yield a new entry")
	}
	if third.EntryID <= second.EntryID {
		t.Errorf("new id %d should be greater than every earlier id", third.EntryID)
	}
}

func TestUpdateUser(t *testing.T) {
	l := newTestLedger(t, "alice", 1000)
	added := l.AddEntry()

	if _, err := l.UpdateUser(added.EntryID, "alice"); !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("assigning alice twice: error = %v, want ErrDuplicateUser", err)
	}

	if _, err := l.UpdateUser(added.EntryID, "bob"); err != nil {
		t.Fatalf("UpdateUser(bob) error: %v", err)
	}

	// Re-assigning the same entry moves membership.
	if _, err := l.UpdateUser(added.EntryID, "carol"); err != nil {
		t.Fatalf("UpdateUser(carol) error: %v", err)
	}
	if _, err := l.UpdateUser(l.DefaultEntryID(), "bob"); err != nil {
		t.Errorf("bob should be assignable again after being replaced: %v", err)
	}

	if _, err := l.UpdateUser(99, "dave"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("UpdateUser(99) error = %v, want ErrEntryNotFound", err)
	}
}

func TestUpdateAmountReconciliation(t *testing.T) {
	tests := []struct {
		name          string
		amounts       []Amount // for default entry and one added entry
		expenseAmount Amount
		wantTotal     Amount
		wantRemainder Amount
		wantValid     bool
	}{
		{
			name:          "balanced",
			amounts:       []Amount{600, 400},
			expenseAmount: 1000,
			wantTotal:     1000,
			wantRemainder: 0,
			wantValid:     true,
		},
		{
			name:          "under-allocated",
			amounts:       []Amount{600, 300},
			expenseAmount: 1000,
			wantTotal:     900,
			wantRemainder: 100,
			wantValid:     false,
		},
		{
			name:          "over-allocated",
			amounts:       []Amount{600, 600},
			expenseAmount: 1000,
			wantTotal:     1200,
			wantRemainder: -200,
			wantValid:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(t, "alice", tt.expenseAmount)
			added := l.AddEntry()
			if _, err := l.UpdateUser(added.EntryID, "bob"); err != nil {
				t.Fatalf("UpdateUser error: %v", err)
			}
			if _, err := l.UpdateAmount(l.DefaultEntryID(), tt.amounts[0], tt.expenseAmount); err != nil {
				t.Fatalf("UpdateAmount error: %v", err)
			}
			upd, err := l.UpdateAmount(added.EntryID, tt.amounts[1], tt.expenseAmount)
			if err != nil {
				t.Fatalf("UpdateAmount error: %v", err)
			}

			if upd.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", upd.Total, tt.wantTotal)
			}
			if upd.Remainder != tt.wantRemainder {
				t.Errorf("Remainder = %d, want %d", upd.Remainder, tt.wantRemainder)
			}
			if upd.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", upd.Valid, tt.wantValid)
			}
		})
	}
}

func TestAnonymousMoneyInvalidatesLedger(t *testing.T) {
	l := newTestLedger(t, "alice", 1000)
	added := l.AddEntry()

	// 400 on an entry with no assigned user.
	if _, err := l.UpdateAmount(added.EntryID, 400, 1000); err != nil {
		t.Fatalf("UpdateAmount error: %v", err)
	}
	upd, err := l.UpdateAmount(l.DefaultEntryID(), 600, 1000)
	if err != nil {
		t.Fatalf("UpdateAmount error: %v", err)
	}
	if upd.Remainder != 0 {
		t.Fatalf("Remainder = %d, want 0", upd.Remainder)
	}
	if upd.Valid {
		t.Error("an entry holding money without a user must invalidate the ledger")
	}
}

func TestSyncExpenseAmount(t *testing.T) {
	t.Run("sole entry follows the amount", func(t *testing.T) {
		l := newTestLedger(t, "alice", 500)

		upd := l.SyncExpenseAmount(1200)
		if upd.Total != 1200 || upd.Remainder != 0 || !upd.Valid {
			t.Errorf("update = %+v, want total 1200, remainder 0, valid", upd)
		}
		if got := l.Paid("alice"); got != 1200 {
			t.Errorf("Paid(alice) = %d, want 1200", got)
		}
	})

	t.Run("multiple entries keep their amounts", func(t *testing.T) {
		l := newTestLedger(t, "alice", 1000)
		added := l.AddEntry()
		if _, err := l.UpdateUser(added.EntryID, "bob"); err != nil {
			t.Fatalf("UpdateUser error: %v", err)
		}
		if _, err := l.UpdateAmount(added.EntryID, 400, 1000); err != nil {
			t.Fatalf("UpdateAmount error: %v", err)
		}

		upd := l.SyncExpenseAmount(2000)
		if upd.Total != 1400 {
			t.Errorf("Total = %d, want 1400 (amounts untouched)", upd.Total)
		}
		if upd.Remainder != 600 {
			t.Errorf("Remainder = %d, want 600", upd.Remainder)
		}
		if upd.Valid {
			t.Error("unbalanced ledger should be invalid")
		}
	})
}

func TestLedgerReset(t *testing.T) {
	l := newTestLedger(t, "alice", 1000)
	added := l.AddEntry()
	if _, err := l.UpdateUser(added.EntryID, "bob"); err != nil {
		t.Fatalf("UpdateUser error: %v", err)
	}

	l.Reset("alice", 0)

	if l.Len() != 1 {
		t.Errorf("Len = %d, want 1 after reset", l.Len())
	}
	e, err := l.Entry(l.DefaultEntryID())
	if err != nil {
		t.Fatalf("Entry(default) error: %v", err)
	}
	if e.User != "alice" || e.Amount != 0 {
		t.Errorf("default entry = %+v, want alice with zero amount", e)
	}

	// The pooled entry still carries its original id.
	recycled := l.AddEntry()
	if recycled.IsNew || recycled.EntryID != added.EntryID {
		t.Errorf("AddEntry after reset = %+v, want recycled entry %d", recycled, added.EntryID)
	}
}
