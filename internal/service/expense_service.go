package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkowalczyk/divvy/internal/expense"
	"github.com/mkowalczyk/divvy/internal/models"
	"github.com/mkowalczyk/divvy/internal/money"
	"github.com/mkowalczyk/divvy/internal/storage"
)

// ExpenseService exposes the expense endpoints. Every create and update
// drives a full ExpenseDraft through its payer-ledger and split mutations
// and persists only drafts that pass validation, so stored expenses are
// always reconciled to the minor unit.
type ExpenseService struct {
	store    storage.Store
	alloc    *expense.IDAllocator
	limits   expense.Limits
	resolver expense.BalanceResolver
}

// NewExpenseService creates the expense endpoints. The allocator is shared
// by every draft so payer entry ids stay process-unique.
func NewExpenseService(store storage.Store, alloc *expense.IDAllocator, limits expense.Limits, minAmount expense.Amount) *ExpenseService {
	return &ExpenseService{
		store:    store,
		alloc:    alloc,
		limits:   limits,
		resolver: expense.BalanceResolver{MinAmount: minAmount},
	}
}

// Register mounts the expense routes on mux.
func (s *ExpenseService) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/expenses", s.handleCreate)
	mux.HandleFunc("GET /api/v1/expenses/{id}", s.handleGet)
	mux.HandleFunc("PUT /api/v1/expenses/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/v1/expenses/{id}", s.handleDelete)
	mux.HandleFunc("GET /api/v1/expenses/{id}/balance", s.handleBalance)
	mux.HandleFunc("GET /api/v1/groups/{id}/expenses", s.handleListByGroup)
}

// payerPayload names one payer row; the amount is a decimal string in major
// units ("12.34").
type payerPayload struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

// splitPayload selects one split strategy and its per-user inputs.
type splitPayload struct {
	Kind string `json:"kind"`
	// Selected lists the users sharing an equal split.
	Selected []string `json:"selected,omitempty"`
	// Parts maps user to a fixed decimal amount under the parts split.
	Parts map[string]string `json:"parts,omitempty"`
	// Shares maps user to an integer percentage under the shares split.
	Shares map[string]int64 `json:"shares,omitempty"`
}

type expenseRequest struct {
	GroupID string         `json:"group_id"`
	Title   string         `json:"title"`
	Note    string         `json:"note,omitempty"`
	Emoji   string         `json:"emoji,omitempty"`
	Amount  string         `json:"amount"`
	Date    int64          `json:"date"`
	Payers  []payerPayload `json:"payers"`
	Split   splitPayload   `json:"split"`
}

type allocationInfo struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
	Share  int64  `json:"share,omitempty"`
}

type balanceInfo struct {
	Status string `json:"status"`
	Amount string `json:"amount,omitempty"`
}

type expenseResponse struct {
	ID        string           `json:"id"`
	GroupID   string           `json:"group_id"`
	Title     string           `json:"title"`
	Note      string           `json:"note,omitempty"`
	Emoji     string           `json:"emoji,omitempty"`
	Amount    string           `json:"amount"`
	Date      int64            `json:"date"`
	SplitKind string           `json:"split_kind"`
	Payers    []allocationInfo `json:"payers"`
	Splits    []allocationInfo `json:"splits"`
	Balance   balanceInfo      `json:"balance"`
	CreatedBy string           `json:"created_by"`
	CreatedAt int64            `json:"created_at"`
}

func (s *ExpenseService) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req expenseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	group, ok := s.memberGroup(w, r, req.GroupID, userID)
	if !ok {
		return
	}

	draft, err := s.buildDraft(userID, group.Members, &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !draft.ValidateForSubmission() {
		writeError(w, http.StatusUnprocessableEntity, unbalancedError(draft))
		return
	}

	model := draftToModel(draft, req.GroupID, userID, req.Date)
	if err := s.store.CreateExpense(r.Context(), model); err != nil {
		writeDomainError(w, err)
		return
	}

	slog.Info("expense created", "expense_id", model.ID, "group_id", model.GroupID, "amount", model.Amount)
	writeJSON(w, http.StatusCreated, s.toResponse(model, draft, userID))
}

func (s *ExpenseService) handleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	existing, ok := s.memberExpense(w, r, r.PathValue("id"), userID)
	if !ok {
		return
	}

	var req expenseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.GroupID == "" {
		req.GroupID = existing.GroupID
	}

	group, ok := s.memberGroup(w, r, req.GroupID, userID)
	if !ok {
		return
	}

	draft, err := s.buildDraft(userID, group.Members, &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !draft.ValidateForSubmission() {
		writeError(w, http.StatusUnprocessableEntity, unbalancedError(draft))
		return
	}

	model := draftToModel(draft, req.GroupID, existing.CreatedBy, req.Date)
	model.ID = existing.ID
	model.CreatedAt = existing.CreatedAt
	if err := s.store.UpdateExpense(r.Context(), model); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.toResponse(model, draft, userID))
}

func (s *ExpenseService) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	model, ok := s.memberExpense(w, r, r.PathValue("id"), userID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.toResponse(model, s.rebuildDraft(model), userID))
}

func (s *ExpenseService) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	model, ok := s.memberExpense(w, r, r.PathValue("id"), userID)
	if !ok {
		return
	}
	if err := s.store.DeleteExpense(r.Context(), model.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *ExpenseService) handleBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	model, ok := s.memberExpense(w, r, r.PathValue("id"), userID)
	if !ok {
		return
	}
	balance := s.resolver.Resolve(s.rebuildDraft(model), expense.UserID(userID))
	writeJSON(w, http.StatusOK, toBalanceInfo(balance))
}

func (s *ExpenseService) handleListByGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	groupID := r.PathValue("id")
	if _, ok := s.memberGroup(w, r, groupID, userID); !ok {
		return
	}

	list, err := s.store.ListExpensesByGroup(r.Context(), groupID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]expenseResponse, len(list))
	for i, model := range list {
		out[i] = s.toResponse(model, s.rebuildDraft(model), userID)
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": out})
}

// buildDraft replays the request through a fresh draft: scalar fields first,
// then payer rows, then the chosen split. Any rejected step aborts the whole
// build.
func (s *ExpenseService) buildDraft(userID string, roster []string, req *expenseRequest) (*expense.ExpenseDraft, error) {
	draft := expense.NewExpenseDraft(s.alloc, expense.UserID(userID), toUserIDs(roster), s.limits, nil)

	if err := draft.SetTitle(req.Title); err != nil {
		return nil, err
	}
	if err := draft.SetNote(req.Note); err != nil {
		return nil, err
	}
	draft.SetEmoji(req.Emoji)
	if req.Date != 0 {
		if err := draft.SetDate(time.Unix(req.Date, 0)); err != nil {
			return nil, err
		}
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		return nil, err
	}
	if _, err := draft.SetAmount(expense.Amount(amount)); err != nil {
		return nil, err
	}

	// The first payer takes over the default entry; the rest get fresh
	// (or recycled) entries.
	for i, p := range req.Payers {
		entryID := draft.Ledger().DefaultEntryID()
		if i > 0 {
			entryID = draft.AddPayer().EntryID
		}
		if _, err := draft.SetPayerUser(entryID, expense.UserID(p.UserID)); err != nil {
			return nil, err
		}
		paid, err := money.Parse(p.Amount)
		if err != nil {
			return nil, err
		}
		if _, err := draft.SetPayerAmount(entryID, expense.Amount(paid)); err != nil {
			return nil, err
		}
	}

	return s.applySplit(draft, roster, &req.Split)
}

func (s *ExpenseService) applySplit(draft *expense.ExpenseDraft, roster []string, split *splitPayload) (*expense.ExpenseDraft, error) {
	kind := expense.SplitKind(split.Kind)
	if split.Kind == "" {
		kind = expense.SplitEqual
	}
	if _, err := draft.SelectSplit(kind); err != nil {
		return nil, err
	}

	switch kind {
	case expense.SplitEqual:
		// Everyone starts selected; toggle off whoever is not listed.
		for _, member := range roster {
			if !contains(split.Selected, member) {
				if _, err := draft.UpdateSplit(expense.UserID(member), 0); err != nil {
					return nil, err
				}
			}
		}
	case expense.SplitParts:
		for user, raw := range split.Parts {
			part, err := money.Parse(raw)
			if err != nil {
				return nil, err
			}
			if _, err := draft.UpdateSplit(expense.UserID(user), part); err != nil {
				return nil, err
			}
		}
	case expense.SplitShares:
		for user, share := range split.Shares {
			if _, err := draft.UpdateSplit(expense.UserID(user), share); err != nil {
				return nil, err
			}
		}
	}
	return draft, nil
}

// rebuildDraft reconstructs a valid draft from a stored expense so the
// balance resolver can run against it. Stored allocations are exact, so they
// are replayed as fixed parts regardless of the original split kind.
func (s *ExpenseService) rebuildDraft(model *models.Expense) *expense.ExpenseDraft {
	roster := make([]expense.UserID, 0, len(model.Splits))
	for _, sp := range model.Splits {
		roster = append(roster, expense.UserID(sp.UserID))
	}

	draft := expense.NewExpenseDraft(s.alloc, expense.UserID(model.CreatedBy), roster, s.limits, nil)
	_ = draft.SetTitle(model.Title)
	_, _ = draft.SetAmount(expense.Amount(model.Amount))

	for i, p := range model.Payers {
		entryID := draft.Ledger().DefaultEntryID()
		if i > 0 {
			entryID = draft.AddPayer().EntryID
		}
		_, _ = draft.SetPayerUser(entryID, expense.UserID(p.UserID))
		_, _ = draft.SetPayerAmount(entryID, expense.Amount(p.Amount))
	}

	_, _ = draft.SelectSplit(expense.SplitParts)
	for _, sp := range model.Splits {
		_, _ = draft.UpdateSplit(expense.UserID(sp.UserID), sp.Amount)
	}
	draft.ValidateForSubmission()
	return draft
}

// draftToModel captures a validated draft's reconciled state.
func draftToModel(draft *expense.ExpenseDraft, groupID, createdBy string, date int64) *models.Expense {
	model := &models.Expense{
		GroupID:   groupID,
		Title:     draft.Title(),
		Note:      draft.Note(),
		Emoji:     draft.Emoji(),
		Amount:    int64(draft.Amount()),
		Date:      date,
		SplitKind: string(draft.Splits().Active().Kind()),
		CreatedBy: createdBy,
	}
	if model.Date == 0 && !draft.Date().IsZero() {
		model.Date = draft.Date().Unix()
	}

	for _, e := range draft.Ledger().Entries() {
		if e.User != "" && e.Amount > 0 {
			model.Payers = append(model.Payers, models.PayerShare{
				UserID: string(e.User),
				Amount: int64(e.Amount),
			})
		}
	}

	shares := draft.Splits().Shares()
	for user, amount := range draft.Splits().Active().Amounts() {
		share := int64(0)
		if draft.Splits().Active().Kind() == expense.SplitShares {
			share = shares.Share(user)
		}
		if amount == 0 && share == 0 {
			continue
		}
		model.Splits = append(model.Splits, models.SplitShare{
			UserID: string(user),
			Amount: int64(amount),
			Share:  share,
		})
	}
	return model
}

func (s *ExpenseService) toResponse(model *models.Expense, draft *expense.ExpenseDraft, userID string) expenseResponse {
	resp := expenseResponse{
		ID:        model.ID,
		GroupID:   model.GroupID,
		Title:     model.Title,
		Note:      model.Note,
		Emoji:     model.Emoji,
		Amount:    money.Format(model.Amount),
		Date:      model.Date,
		SplitKind: model.SplitKind,
		CreatedBy: model.CreatedBy,
		CreatedAt: model.CreatedAt,
		Balance:   toBalanceInfo(s.resolver.Resolve(draft, expense.UserID(userID))),
	}
	for _, p := range model.Payers {
		resp.Payers = append(resp.Payers, allocationInfo{UserID: p.UserID, Amount: money.Format(p.Amount)})
	}
	for _, sp := range model.Splits {
		resp.Splits = append(resp.Splits, allocationInfo{UserID: sp.UserID, Amount: money.Format(sp.Amount), Share: sp.Share})
	}
	return resp
}

func toBalanceInfo(b expense.Balance) balanceInfo {
	info := balanceInfo{Status: string(b.Status)}
	if b.Status == expense.BalanceResolved {
		info.Amount = money.Format(int64(b.Amount))
	}
	return info
}

// memberGroup loads the group and verifies the caller is a member.
func (s *ExpenseService) memberGroup(w http.ResponseWriter, r *http.Request, groupID, userID string) (*models.Group, bool) {
	if groupID == "" {
		writeError(w, http.StatusBadRequest, errors.New("group_id required"))
		return nil, false
	}
	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	if !contains(group.Members, userID) {
		writeError(w, http.StatusForbidden, errors.New("you must be a member of this group"))
		return nil, false
	}
	return group, true
}

// memberExpense loads the expense and verifies the caller belongs to its
// group.
func (s *ExpenseService) memberExpense(w http.ResponseWriter, r *http.Request, expenseID, userID string) (*models.Expense, bool) {
	model, err := s.store.GetExpense(r.Context(), expenseID)
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	if _, ok := s.memberGroup(w, r, model.GroupID, userID); !ok {
		return nil, false
	}
	return model, true
}

func unbalancedError(draft *expense.ExpenseDraft) error {
	switch {
	case draft.Title() == "":
		return errors.New("expense is not submittable: title required")
	case draft.Amount() == 0:
		return errors.New("expense is not submittable: amount required")
	case !draft.Ledger().Valid():
		return fmt.Errorf("expense is not submittable: paid-by is off by %s", money.Format(int64(draft.Ledger().Remainder())))
	default:
		return errors.New("expense is not submittable: split does not add up")
	}
}

func toUserIDs(roster []string) []expense.UserID {
	out := make([]expense.UserID, len(roster))
	for i, r := range roster {
		out[i] = expense.UserID(r)
	}
	return out
}
