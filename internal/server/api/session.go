package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/fingerspell/internal/logger"
	"github.com/ayusman/fingerspell/internal/store"
)

const (
	// UserCookie carries the user id between requests.
	UserCookie = "fingerspell_user"
	// UserHeader is accepted instead of the cookie by API clients.
	UserHeader = "X-User-ID"

	cookieMaxAge = 365 * 24 * time.Hour
)

// UserID returns the user id carried by r, or "".
func UserID(r *http.Request) string {
	if id := r.Header.Get(UserHeader); id != "" {
		return id
	}
	if c, err := r.Cookie(UserCookie); err == nil {
		return c.Value
	}
	return ""
}

// resolveUser loads the user named by r. It returns nil, nil when the
// request carries no user and store.ErrNotFound for an unknown id.
func resolveUser(s *store.Store, r *http.Request) (*store.User, error) {
	id := UserID(r)
	if id == "" {
		return nil, nil
	}
	return s.Users().GetByID(id)
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func toUserResponse(u *store.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// SessionHandler hands out the guest identity.
type SessionHandler struct {
	store *store.Store
	log   logrus.FieldLogger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(s *store.Store, log logrus.FieldLogger) *SessionHandler {
	return &SessionHandler{store: s, log: logger.OrDiscard(log)}
}

// ServeHTTP handles GET /api/session. A request that already names a known
// user keeps it; otherwise the guest user is ensured and set in the cookie.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	u, err := resolveUser(h.store, r)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.log.WithError(err).Error("resolving session user")
		WriteError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}

	if u == nil {
		u, err = h.store.Users().EnsureGuest()
		if err != nil {
			h.log.WithError(err).Error("ensuring guest user")
			WriteError(w, http.StatusInternalServerError, "Failed to create guest user")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     UserCookie,
		Value:    u.ID,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	WriteJSON(w, http.StatusOK, toUserResponse(u))
}
