package server

import (
	"net/http"
	"strings"

	"github.com/mkellaway/papertrade/internal/common"
)

// handleUserMe handles GET and PUT for /api/users/me — the authenticated
// user's own profile.
func (s *Server) handleUserMe(w http.ResponseWriter, r *http.Request) {
	userID := common.ResolveUserID(r.Context())
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleUserGet(w, r, userID)
	case http.MethodPut:
		s.handleUserUpdate(w, r, userID)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

func (s *Server) handleUserGet(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	store := s.app.Storage.InternalStore()

	user, err := store.GetUser(ctx, userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	// Seed the cash balance lazily so pre-existing accounts pick up the
	// configured starting balance on first contact.
	balance, err := store.EnsureCashBalance(ctx, userID, s.app.Config.Simulation.StartingBalance)
	if err == nil {
		user.CashBalance = balance
	}

	WriteJSON(w, http.StatusOK, userResponse(user))
}

func (s *Server) handleUserUpdate(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	store := s.app.Storage.InternalStore()

	user, err := store.GetUser(ctx, userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			WriteError(w, http.StatusBadRequest, "password must be at least 8 characters")
			return
		}
		hash, err := hashPassword(req.Password)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to hash password")
			WriteError(w, http.StatusInternalServerError, "failed to update account")
			return
		}
		user.PasswordHash = hash
	}

	if err := store.SaveUser(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to update user")
		WriteError(w, http.StatusInternalServerError, "failed to update account")
		return
	}

	WriteJSON(w, http.StatusOK, userResponse(user))
}
