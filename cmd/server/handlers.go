package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wayfarer-app/wayfarer/internal/auth"
	"github.com/wayfarer-app/wayfarer/internal/middleware"
	"github.com/wayfarer-app/wayfarer/internal/models"
	"github.com/wayfarer-app/wayfarer/internal/service"
)

// server is the thin HTTP layer over the service layer. Handlers only
// decode, delegate, and encode; every rule lives in internal/service.
type server struct {
	auth          *service.AuthService
	groups        *service.GroupService
	tours         *service.TourService
	expenses      *service.ExpenseService
	finances      *service.FinanceService
	announcements *service.AnnounceService
	notifications *service.NotificationService
}

// routes registers every authenticated endpoint. Patterns carry the full
// path because the mux is mounted without prefix stripping.
func (s *server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/groups", s.handleListGroups)
	mux.HandleFunc("POST /api/groups", s.handleCreateGroup)
	mux.HandleFunc("PUT /api/groups/{id}", s.handleUpdateGroup)
	mux.HandleFunc("DELETE /api/groups/{id}", s.handleDeleteGroup)
	mux.HandleFunc("GET /api/groups/{id}/members", s.handleListMembers)
	mux.HandleFunc("POST /api/groups/{id}/members", s.handleAddMember)
	mux.HandleFunc("DELETE /api/groups/{id}/members/{userId}", s.handleRemoveMember)

	mux.HandleFunc("GET /api/groups/{id}/itinerary", s.handleGetItinerary)
	mux.HandleFunc("GET /api/groups/{id}/map", s.handleListMapPins)
	mux.HandleFunc("POST /api/days", s.handleCreateDay)
	mux.HandleFunc("PUT /api/days/{id}", s.handleUpdateDay)
	mux.HandleFunc("PUT /api/days/{id}/status", s.handleSetDayStatus)
	mux.HandleFunc("DELETE /api/days/{id}", s.handleDeleteDay)
	mux.HandleFunc("POST /api/locations", s.handleCreateLocation)
	mux.HandleFunc("PUT /api/locations/{id}", s.handleUpdateLocation)
	mux.HandleFunc("DELETE /api/locations/{id}", s.handleDeleteLocation)
	mux.HandleFunc("POST /api/events", s.handleCreateEvent)
	mux.HandleFunc("PUT /api/events/{id}", s.handleUpdateEvent)
	mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)

	mux.HandleFunc("POST /api/events/{id}/expenses", s.handleAddSelfExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateSelfExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteSelfExpense)
	mux.HandleFunc("POST /api/admin/events/{id}/expenses", s.handleAdminAddExpenses)
	mux.HandleFunc("PUT /api/admin/expenses/{id}", s.handleAdminUpdateExpense)
	mux.HandleFunc("DELETE /api/admin/expenses/{id}", s.handleAdminDeleteExpense)
	mux.HandleFunc("GET /api/me/expenses", s.handleListMyExpenses)

	mux.HandleFunc("POST /api/groups/{id}/deposits", s.handleAddDeposit)
	mux.HandleFunc("GET /api/groups/{id}/deposits", s.handleListDeposits)
	mux.HandleFunc("GET /api/groups/{id}/balance", s.handleGetBalance)
	mux.HandleFunc("GET /api/groups/{id}/balances", s.handleGetGroupBalances)

	mux.HandleFunc("POST /api/groups/{id}/announcements", s.handleCreateAnnouncement)
	mux.HandleFunc("GET /api/groups/{id}/announcements", s.handleListAnnouncements)

	mux.HandleFunc("POST /api/subscriptions", s.handleSaveSubscription)
}

// userView is the public shape of a user, without the credential hash.
type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func viewOf(u *models.User) userView {
	return userView{ID: u.ID, Username: u.Username, Email: u.Email, Role: string(u.Role)}
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	session, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user":  viewOf(session.User),
		"token": session.Token,
	})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	session, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":  viewOf(session.User),
		"token": session.Token,
	})
}

func (s *server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListGroups(r.Context(), middleware.GetUserID(r.Context()))
	respond(w, groups, err)
}

func (s *server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if !decode(w, r, &req) {
		return
	}
	group, err := s.groups.CreateGroup(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (s *server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if !decode(w, r, &req) {
		return
	}
	err := s.groups.UpdateGroup(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"), req.Name, req.Description)
	respondOK(w, err)
}

func (s *server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	err := s.groups.DeleteGroup(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"))
	respondOK(w, err)
}

func (s *server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.groups.ListMembers(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"))
	respond(w, members, err)
}

func (s *server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	err := s.groups.AddMemberByEmail(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"), req.Email)
	respondOK(w, err)
}

func (s *server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	err := s.groups.RemoveMember(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"), r.PathValue("userId"))
	respondOK(w, err)
}

func (s *server) handleGetItinerary(w http.ResponseWriter, r *http.Request) {
	days, err := s.tours.GetItinerary(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"))
	respond(w, days, err)
}

func (s *server) handleListMapPins(w http.ResponseWriter, r *http.Request) {
	pins, err := s.tours.ListMapPins(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"))
	respond(w, pins, err)
}

func (s *server) handleCreateDay(w http.ResponseWriter, r *http.Request) {
	var day models.TourDay
	if !decode(w, r, &day) {
		return
	}
	if err := s.tours.CreateDay(r.Context(), middleware.GetUserID(r.Context()), &day); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, day)
}

func (s *server) handleUpdateDay(w http.ResponseWriter, r *http.Request) {
	var day models.TourDay
	if !decode(w, r, &day) {
		return
	}
	day.ID = r.PathValue("id")
	respondOK(w, s.tours.UpdateDay(r.Context(), middleware.GetUserID(r.Context()), &day))
}

func (s *server) handleSetDayStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.DayStatus `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	respondOK(w, s.tours.SetDayStatus(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"), req.Status))
}

func (s *server) handleDeleteDay(w http.ResponseWriter, r *http.Request) {
	respondOK(w, s.tours.DeleteDay(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id")))
}

func (s *server) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var loc models.Location
	if !decode(w, r, &loc) {
		return
	}
	if err := s.tours.CreateLocation(r.Context(), middleware.GetUserID(r.Context()), &loc); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

func (s *server) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	var loc models.Location
	if !decode(w, r, &loc) {
		return
	}
	loc.ID = r.PathValue("id")
	respondOK(w, s.tours.UpdateLocation(r.Context(), middleware.GetUserID(r.Context()), &loc))
}

func (s *server) handleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	respondOK(w, s.tours.DeleteLocation(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id")))
}

func (s *server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var event models.Event
	if !decode(w, r, &event) {
		return
	}
	if err := s.tours.CreateEvent(r.Context(), middleware.GetUserID(r.Context()), &event); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (s *server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var event models.Event
	if !decode(w, r, &event) {
		return
	}
	event.ID = r.PathValue("id")
	respondOK(w, s.tours.UpdateEvent(r.Context(), middleware.GetUserID(r.Context()), &event))
}

func (s *server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	respondOK(w, s.tours.DeleteEvent(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id")))
}

func (s *server) handleAddSelfExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decode(w, r, &req) {
		return
	}
	merged, err := s.expenses.AddSelfExpense(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"), req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"merged": merged})
}

func (s *server) handleUpdateSelfExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decode(w, r, &req) {
		return
	}
	respondOK(w, s.expenses.UpdateSelfExpense(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()), req.Quantity))
}

func (s *server) handleDeleteSelfExpense(w http.ResponseWriter, r *http.Request) {
	respondOK(w, s.expenses.DeleteSelfExpense(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context())))
}

func (s *server) handleAdminAddExpenses(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserIDs     []string        `json:"userIds"`
		Quantity    int             `json:"quantity"`
		CostPerUnit decimal.Decimal `json:"costPerUnit"`
	}
	if !decode(w, r, &req) {
		return
	}
	err := s.expenses.AdminAddExpenses(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"), req.UserIDs, req.Quantity, req.CostPerUnit)
	respondOK(w, err)
}

func (s *server) handleAdminUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity  int             `json:"quantity"`
		TotalCost decimal.Decimal `json:"totalCost"`
	}
	if !decode(w, r, &req) {
		return
	}
	err := s.expenses.AdminUpdateExpense(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"), req.Quantity, req.TotalCost)
	respondOK(w, err)
}

func (s *server) handleAdminDeleteExpense(w http.ResponseWriter, r *http.Request) {
	respondOK(w, s.expenses.AdminDeleteExpense(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id")))
}

func (s *server) handleListMyExpenses(w http.ResponseWriter, r *http.Request) {
	details, err := s.expenses.ListMyExpenses(r.Context(), middleware.GetUserID(r.Context()))
	respond(w, details, err)
}

func (s *server) handleAddDeposit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string          `json:"userId"`
		Amount decimal.Decimal `json:"amount"`
	}
	if !decode(w, r, &req) {
		return
	}
	deposit, err := s.finances.AddDeposit(r.Context(), middleware.GetUserID(r.Context()), req.UserID, r.PathValue("id"), req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deposit)
}

func (s *server) handleListDeposits(w http.ResponseWriter, r *http.Request) {
	deposits, err := s.finances.ListDeposits(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"))
	respond(w, deposits, err)
}

func (s *server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.finances.GetBalance(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"))
	respond(w, balance, err)
}

func (s *server) handleGetGroupBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.finances.GetGroupBalances(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"))
	respond(w, balances, err)
}

func (s *server) handleCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message      string `json:"message"`
		ScheduledFor *int64 `json:"scheduledFor"`
	}
	if !decode(w, r, &req) {
		return
	}

	userID := middleware.GetUserID(r.Context())
	groupID := r.PathValue("id")

	var announcement *models.Announcement
	var err error
	if req.ScheduledFor != nil {
		announcement, err = s.announcements.Schedule(r.Context(), userID, groupID, req.Message, time.Unix(*req.ScheduledFor, 0))
	} else {
		announcement, err = s.announcements.Announce(r.Context(), userID, groupID, req.Message)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, announcement)
}

func (s *server) handleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements, err := s.announcements.List(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"))
	respond(w, announcements, err)
}

func (s *server) handleSaveSubscription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subscription json.RawMessage `json:"subscription"`
	}
	if !decode(w, r, &req) {
		return
	}
	err := s.notifications.SaveSubscription(r.Context(), middleware.GetUserID(r.Context()), string(req.Subscription))
	respondOK(w, err)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respond(w http.ResponseWriter, v interface{}, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func respondOK(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, auth.ErrWeakPassword):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, auth.ErrEmailExists):
		status = http.StatusConflict
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
