package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/nats-backoffice/auth"
	"github.com/diewo77/nats-backoffice/httpx"
	"github.com/diewo77/nats-backoffice/internal/services"
	"go.uber.org/zap"
)

type AuthHandler struct {
	users    *services.UserService
	sessions *auth.Manager
	errs     errorWriter
}

func NewAuthHandler(users *services.UserService, sessions *auth.Manager, log *zap.Logger, dev bool) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, errs: newErrorWriter(log, dev)}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login accepts JSON or form credentials. On success it sets the session
// cookie and returns the user and the raw token for Bearer clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := httpx.DecodeJSON(r, &in); err != nil {
			invalidJSON(w)
			return
		}
	} else {
		in.Email = r.FormValue("email")
		in.Password = r.FormValue("password")
	}

	user, err := h.users.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		h.errs.write(w, r, err, "Failed to sign in")
		return
	}
	token := h.sessions.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, map[string]any{"user": user, "token": token})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Me(r.Context())
	if err != nil {
		h.errs.write(w, r, err, "Failed to fetch user")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": user})
}
