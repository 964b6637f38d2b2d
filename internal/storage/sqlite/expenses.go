package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkowalczyk/divvy/internal/models"
	"github.com/mkowalczyk/divvy/internal/storage"
)

// CreateExpense persists an expense with its payer and split rows in one
// transaction, generating the ID and CreatedAt when unset.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertExpense(ctx, tx, expense); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateExpense replaces an existing expense and its payer/split rows.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expense.ID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
	}

	if err := insertExpense(ctx, tx, expense); err != nil {
		return err
	}
	return tx.Commit()
}

func insertExpense(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, title, note, emoji, amount, date, split_kind, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Title, nullable(expense.Note), nullable(expense.Emoji),
		expense.Amount, expense.Date, expense.SplitKind, expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	for _, p := range expense.Payers {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO expense_payers (expense_id, user_id, amount) VALUES (?, ?, ?)",
			expense.ID, p.UserID, p.Amount,
		); err != nil {
			return fmt.Errorf("insert expense payer: %w", err)
		}
	}
	for _, sp := range expense.Splits {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, amount, share) VALUES (?, ?, ?, ?)",
			expense.ID, sp.UserID, sp.Amount, sp.Share,
		); err != nil {
			return fmt.Errorf("insert expense split: %w", err)
		}
	}
	return nil
}

// GetExpense retrieves an expense with its payer and split rows.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var note, emoji sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, title, note, emoji, amount, date, split_kind, created_by, created_at
		 FROM expenses WHERE id = ?`, expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.Title, &note, &emoji,
		&expense.Amount, &expense.Date, &expense.SplitKind, &expense.CreatedBy, &expense.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	expense.Note = note.String
	expense.Emoji = emoji.String

	if expense.Payers, err = s.expensePayers(ctx, expenseID); err != nil {
		return nil, err
	}
	if expense.Splits, err = s.expenseSplits(ctx, expenseID); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *SQLiteStore) expensePayers(ctx context.Context, expenseID string) ([]models.PayerShare, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, amount FROM expense_payers WHERE expense_id = ? ORDER BY user_id", expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("get expense payers: %w", err)
	}
	defer rows.Close()

	var payers []models.PayerShare
	for rows.Next() {
		var p models.PayerShare
		if err := rows.Scan(&p.UserID, &p.Amount); err != nil {
			return nil, fmt.Errorf("scan expense payer: %w", err)
		}
		payers = append(payers, p)
	}
	return payers, rows.Err()
}

func (s *SQLiteStore) expenseSplits(ctx context.Context, expenseID string) ([]models.SplitShare, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, amount, share FROM expense_splits WHERE expense_id = ? ORDER BY user_id", expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("get expense splits: %w", err)
	}
	defer rows.Close()

	var splits []models.SplitShare
	for rows.Next() {
		var sp models.SplitShare
		if err := rows.Scan(&sp.UserID, &sp.Amount, &sp.Share); err != nil {
			return nil, fmt.Errorf("scan expense split: %w", err)
		}
		splits = append(splits, sp)
	}
	return splits, rows.Err()
}

// DeleteExpense removes an expense; its payer and split rows cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// ListExpensesByGroup retrieves all expenses in a group, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM expenses WHERE group_id = ? ORDER BY date DESC, created_at DESC", groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expense id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	expenses := make([]*models.Expense, 0, len(ids))
	for _, id := range ids {
		expense, err := s.GetExpense(ctx, id)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, nil
}

// nullable maps an empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
