package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"locationShare/internal/auth"
	"locationShare/internal/logging"
	"locationShare/internal/mapview"
	"locationShare/internal/service"
	"locationShare/models"
)

type adminExistsResponse struct {
	Exists bool `json:"exists"`
}

type userSummary struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

type loginResponse struct {
	Success bool        `json:"success"`
	User    userSummary `json:"user"`
}

type createUserResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

type listUsersResponse struct {
	Users []models.User `json:"users"`
}

type meResponse struct {
	User *auth.Principal `json:"user"`
}

type locationsResponse struct {
	Locations mapview.History `json:"locations"`
}

type markersResponse struct {
	Date    string          `json:"date"`
	Markers []models.Marker `json:"markers"`
	View    mapview.View    `json:"view"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleAdminExists(w http.ResponseWriter, r *http.Request) {
	ok, err := s.Accounts.AdminExists(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adminExistsResponse{Exists: ok})
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	c := decodeCredentials(r)
	u, err := s.Accounts.Bootstrap(r.Context(), c.Username, c.Password)
	authAttempts.WithLabelValues("init", outcome(err)).Inc()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !s.establish(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	c := decodeCredentials(r)
	u, err := s.Accounts.Login(r.Context(), c.Username, c.Password)
	authAttempts.WithLabelValues("login", outcome(err)).Inc()
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logging.Ctx(r.Context()).Info().Str("username", c.Username).Msg("login rejected")
		}
		writeServiceError(w, r, err)
		return
	}
	if !s.establish(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		User:    userSummary{Username: u.Username, Role: u.Role},
	})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.FromContext(r.Context())
	c := decodeCredentials(r)
	u, err := s.Accounts.CreateUser(r.Context(), caller, c.Username, c.Password)
	authAttempts.WithLabelValues("users", outcome(err)).Inc()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, createUserResponse{Success: true, ID: u.ID})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.FromContext(r.Context())
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	users, err := s.Accounts.ListUsers(r.Context(), caller, limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listUsersResponse{Users: users})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	writeJSON(w, http.StatusOK, meResponse{User: p})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Destroy(w, r); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("destroy session")
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, locationsResponse{Locations: s.History})
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	q, err := parseMarkersQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query")
		return
	}
	people := q.Users
	if q.AllUsers {
		people = s.History.People()
	}
	markers := mapview.Markers(s.History, mapview.NewSelection(q.Date, people...))
	if markers == nil {
		markers = []models.Marker{}
	}
	writeJSON(w, http.StatusOK, markersResponse{Date: q.Date, Markers: markers, View: mapview.Fit(markers)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.DB.PingContext(ctx); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// establish starts a session for u, writing a 500 and returning false on failure.
func (s *Server) establish(w http.ResponseWriter, r *http.Request, u *models.User) bool {
	if err := s.Sessions.Establish(w, r, service.PrincipalFor(u)); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("establish session")
		writeError(w, http.StatusInternalServerError, "internal error")
		return false
	}
	return true
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, service.ErrMissingFields):
		return "missing"
	case errors.Is(err, service.ErrAdminExists):
		return "admin_exists"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "invalid"
	case errors.Is(err, service.ErrUnauthorized):
		return "unauthorized"
	default:
		return "error"
	}
}
