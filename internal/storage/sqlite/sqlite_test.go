package sqlite

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"

	"github.com/mkowalczyk/divvy/internal/models"
	"github.com/mkowalczyk/divvy/internal/storage"
)

// newTestStore creates a store backed by a temp database file.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "divvy-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		os.Remove(tmpFile.Name())
	})
	return store
}

func TestUserRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("alice@example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail error: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.DisplayName != "Alice" {
		t.Errorf("got %+v, want the created user", byEmail)
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID error: %v", err)
	}
	if byID.Email != user.Email {
		t.Errorf("Email = %s, want %s", byID.Email, user.Email)
	}

	if _, err := store.GetUserByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing user: error = %v, want ErrNotFound", err)
	}

	// Duplicate emails are rejected by the unique index.
	if err := store.CreateUser(ctx, models.NewUser("alice@example.com", "Other", "hash")); err == nil {
		t.Error("duplicate email should fail")
	}
}

func TestGroupRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Roommates", Members: []string{"alice", "bob"}, CreatedBy: "alice"}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup error: %v", err)
	}
	if group.ID == "" || group.CreatedAt == 0 {
		t.Fatal("CreateGroup should populate ID and CreatedAt")
	}

	got, err := store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup error: %v", err)
	}
	if got.Name != "Roommates" || !reflect.DeepEqual(got.Members, []string{"alice", "bob"}) {
		t.Errorf("got %+v, want the created group", got)
	}

	if err := store.AddGroupMembers(ctx, group.ID, []string{"bob", "carol"}); err != nil {
		t.Fatalf("AddGroupMembers error: %v", err)
	}
	got, err = store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup error: %v", err)
	}
	if !reflect.DeepEqual(got.Members, []string{"alice", "bob", "carol"}) {
		t.Errorf("Members = %v, want alice, bob, carol (no duplicate bob)", got.Members)
	}

	groups, err := store.ListGroupsByMember(ctx, "carol")
	if err != nil {
		t.Fatalf("ListGroupsByMember error: %v", err)
	}
	if len(groups) != 1 || groups[0].ID != group.ID {
		t.Errorf("ListGroupsByMember = %v, want the one group", groups)
	}

	group.Name = "Flatmates"
	group.Members = []string{"alice"}
	if err := store.UpdateGroup(ctx, group); err != nil {
		t.Fatalf("UpdateGroup error: %v", err)
	}
	got, err = store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup error: %v", err)
	}
	if got.Name != "Flatmates" || !reflect.DeepEqual(got.Members, []string{"alice"}) {
		t.Errorf("after update got %+v", got)
	}
}

func TestExpenseRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Trip", Members: []string{"alice", "bob"}, CreatedBy: "alice"}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup error: %v", err)
	}

	expense := &models.Expense{
		GroupID:   group.ID,
		Title:     "Dinner",
		Note:      "pizza night",
		Emoji:     "🍕",
		Amount:    1000,
		Date:      1700000000,
		SplitKind: "equal",
		Payers:    []models.PayerShare{{UserID: "alice", Amount: 1000}},
		Splits: []models.SplitShare{
			{UserID: "alice", Amount: 500},
			{UserID: "bob", Amount: 500},
		},
		CreatedBy: "alice",
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense error: %v", err)
	}

	got, err := store.GetExpense(ctx, expense.ID)
	if err != nil {
		t.Fatalf("GetExpense error: %v", err)
	}
	if got.Title != "Dinner" || got.Amount != 1000 || got.SplitKind != "equal" {
		t.Errorf("got %+v, want the created expense", got)
	}
	if !reflect.DeepEqual(got.Payers, expense.Payers) {
		t.Errorf("Payers = %v, want %v", got.Payers, expense.Payers)
	}
	if !reflect.DeepEqual(got.Splits, expense.Splits) {
		t.Errorf("Splits = %v, want %v", got.Splits, expense.Splits)
	}

	// Update replaces the allocation rows.
	expense.Title = "Late dinner"
	expense.SplitKind = "parts"
	expense.Splits = []models.SplitShare{
		{UserID: "alice", Amount: 400},
		{UserID: "bob", Amount: 600},
	}
	if err := store.UpdateExpense(ctx, expense); err != nil {
		t.Fatalf("UpdateExpense error: %v", err)
	}
	got, err = store.GetExpense(ctx, expense.ID)
	if err != nil {
		t.Fatalf("GetExpense error: %v", err)
	}
	if got.Title != "Late dinner" || !reflect.DeepEqual(got.Splits, expense.Splits) {
		t.Errorf("after update got %+v", got)
	}

	list, err := store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListExpensesByGroup error: %v", err)
	}
	if len(list) != 1 || list[0].ID != expense.ID {
		t.Errorf("list = %v, want the one expense", list)
	}

	if err := store.DeleteExpense(ctx, expense.ID); err != nil {
		t.Fatalf("DeleteExpense error: %v", err)
	}
	if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("deleted expense: error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("double delete: error = %v, want ErrNotFound", err)
	}
}

func TestSettlementRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Trip", Members: []string{"alice", "bob"}, CreatedBy: "alice"}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup error: %v", err)
	}

	settlement := &models.Settlement{
		GroupID:    group.ID,
		FromUserID: "bob",
		ToUserID:   "alice",
		Amount:     500,
		Note:       "venmo",
		CreatedBy:  "bob",
	}
	if err := store.CreateSettlement(ctx, settlement); err != nil {
		t.Fatalf("CreateSettlement error: %v", err)
	}

	list, err := store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListSettlementsByGroup error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}
	if list[0].FromUserID != "bob" || list[0].Amount != 500 || list[0].Note != "venmo" {
		t.Errorf("got %+v, want the created settlement", list[0])
	}
}
