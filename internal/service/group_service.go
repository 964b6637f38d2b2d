package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mkowalczyk/divvy/internal/calculator"
	"github.com/mkowalczyk/divvy/internal/models"
	"github.com/mkowalczyk/divvy/internal/money"
	"github.com/mkowalczyk/divvy/internal/storage"
)

// GroupService exposes group, balance and settlement endpoints.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates the group endpoints.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// Register mounts the group routes on mux.
func (s *GroupService) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/groups", s.handleCreate)
	mux.HandleFunc("GET /api/v1/groups", s.handleList)
	mux.HandleFunc("GET /api/v1/groups/{id}", s.handleGet)
	mux.HandleFunc("POST /api/v1/groups/{id}/members", s.handleAddMembers)
	mux.HandleFunc("GET /api/v1/groups/{id}/balances", s.handleBalances)
	mux.HandleFunc("POST /api/v1/groups/{id}/settlements", s.handleCreateSettlement)
	mux.HandleFunc("GET /api/v1/groups/{id}/settlements", s.handleListSettlements)
}

type groupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members,omitempty"`
}

type groupResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedBy string   `json:"created_by"`
	CreatedAt int64    `json:"created_at"`
}

func toGroupResponse(g *models.Group) groupResponse {
	return groupResponse{
		ID:        g.ID,
		Name:      g.Name,
		Members:   g.Members,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt,
	}
}

func (s *GroupService) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req groupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, errors.New("name required"))
		return
	}

	// The creator is always a member.
	members := req.Members
	if !contains(members, userID) {
		members = append(members, userID)
	}

	group := &models.Group{
		Name:      req.Name,
		Members:   members,
		CreatedBy: userID,
	}
	if err := s.store.CreateGroup(r.Context(), group); err != nil {
		writeDomainError(w, err)
		return
	}

	slog.Info("group created", "group_id", group.ID, "name", group.Name, "members", len(group.Members))
	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

func (s *GroupService) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	groups, err := s.store.ListGroupsByMember(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]groupResponse, len(groups))
	for i, g := range groups {
		out[i] = toGroupResponse(g)
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": out})
}

func (s *GroupService) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	group, ok := s.member(w, r, r.PathValue("id"), userID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

type addMembersRequest struct {
	Members []string `json:"members"`
}

func (s *GroupService) handleAddMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	group, ok := s.member(w, r, r.PathValue("id"), userID)
	if !ok {
		return
	}
	var req addMembersRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Members) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("members required"))
		return
	}
	if err := s.store.AddGroupMembers(r.Context(), group.ID, req.Members); err != nil {
		writeDomainError(w, err)
		return
	}
	updated, err := s.store.GetGroup(r.Context(), group.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(updated))
}

type memberBalanceInfo struct {
	UserID    string `json:"user_id"`
	Net       string `json:"net"`
	TotalPaid string `json:"total_paid"`
	TotalOwed string `json:"total_owed"`
}

type debtEdgeInfo struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (s *GroupService) handleBalances(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	group, ok := s.member(w, r, r.PathValue("id"), userID)
	if !ok {
		return
	}

	expenses, err := s.store.ListExpensesByGroup(r.Context(), group.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	settlements, err := s.store.ListSettlementsByGroup(r.Context(), group.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	forBalance := make([]calculator.ExpenseForBalance, len(expenses))
	for i, e := range expenses {
		fb := calculator.ExpenseForBalance{
			Paid: make(map[string]int64, len(e.Payers)),
			Owed: make(map[string]int64, len(e.Splits)),
		}
		for _, p := range e.Payers {
			fb.Paid[p.UserID] += p.Amount
		}
		for _, sp := range e.Splits {
			fb.Owed[sp.UserID] += sp.Amount
		}
		forBalance[i] = fb
	}
	forSettle := make([]calculator.SettlementForBalance, len(settlements))
	for i, st := range settlements {
		forSettle[i] = calculator.SettlementForBalance{
			FromUserID: st.FromUserID,
			ToUserID:   st.ToUserID,
			Amount:     st.Amount,
		}
	}

	balances, edges := calculator.GroupBalances(forBalance, forSettle)

	outBalances := make([]memberBalanceInfo, len(balances))
	for i, b := range balances {
		outBalances[i] = memberBalanceInfo{
			UserID:    b.UserID,
			Net:       money.Format(b.Net),
			TotalPaid: money.Format(b.TotalPaid),
			TotalOwed: money.Format(b.TotalOwed),
		}
	}
	outEdges := make([]debtEdgeInfo, len(edges))
	for i, e := range edges {
		outEdges[i] = debtEdgeInfo{From: e.From, To: e.To, Amount: money.Format(e.Amount)}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"balances":    outBalances,
		"settlements": outEdges,
	})
}

type settlementRequest struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Amount     string `json:"amount"`
	Note       string `json:"note,omitempty"`
}

type settlementResponse struct {
	ID         string `json:"id"`
	GroupID    string `json:"group_id"`
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Amount     string `json:"amount"`
	Note       string `json:"note,omitempty"`
	CreatedBy  string `json:"created_by"`
	CreatedAt  int64  `json:"created_at"`
}

func toSettlementResponse(st *models.Settlement) settlementResponse {
	return settlementResponse{
		ID:         st.ID,
		GroupID:    st.GroupID,
		FromUserID: st.FromUserID,
		ToUserID:   st.ToUserID,
		Amount:     money.Format(st.Amount),
		Note:       st.Note,
		CreatedBy:  st.CreatedBy,
		CreatedAt:  st.CreatedAt,
	}
}

func (s *GroupService) handleCreateSettlement(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	group, ok := s.member(w, r, r.PathValue("id"), userID)
	if !ok {
		return
	}
	var req settlementRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	switch {
	case amount <= 0:
		writeError(w, http.StatusBadRequest, errors.New("amount must be positive"))
		return
	case req.FromUserID == "" || req.ToUserID == "":
		writeError(w, http.StatusBadRequest, errors.New("from_user_id and to_user_id required"))
		return
	case req.FromUserID == req.ToUserID:
		writeError(w, http.StatusBadRequest, errors.New("cannot settle with yourself"))
		return
	case !contains(group.Members, req.FromUserID) || !contains(group.Members, req.ToUserID):
		writeError(w, http.StatusBadRequest, errors.New("both users must be group members"))
		return
	}

	settlement := &models.Settlement{
		GroupID:    group.ID,
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Amount:     amount,
		Note:       req.Note,
		CreatedBy:  userID,
	}
	if err := s.store.CreateSettlement(r.Context(), settlement); err != nil {
		writeDomainError(w, err)
		return
	}

	slog.Info("settlement recorded", "group_id", group.ID, "from", settlement.FromUserID, "to", settlement.ToUserID, "amount", settlement.Amount)
	writeJSON(w, http.StatusCreated, toSettlementResponse(settlement))
}

func (s *GroupService) handleListSettlements(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	group, ok := s.member(w, r, r.PathValue("id"), userID)
	if !ok {
		return
	}
	settlements, err := s.store.ListSettlementsByGroup(r.Context(), group.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]settlementResponse, len(settlements))
	for i, st := range settlements {
		out[i] = toSettlementResponse(st)
	}
	writeJSON(w, http.StatusOK, map[string]any{"settlements": out})
}

// member loads the group and verifies the caller belongs to it.
func (s *GroupService) member(w http.ResponseWriter, r *http.Request, groupID, userID string) (*models.Group, bool) {
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
