package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/nats-backoffice/httpx"
)

type ctxKey string

const (
	CookieName    = "session"
	sessionCtxKey = ctxKey("session")
)

// Session is the verified identity attached to a request.
type Session struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// Lookup loads the current state of a user. It returns (nil, nil) when the
// user no longer exists so that stale tokens stop working.
type Lookup func(ctx context.Context, userID string) (*Session, error)

// Manager issues and verifies signed session tokens.
// Token layout: <userID>.<expiry unix>.<base64url hmac-sha256>.
type Manager struct {
	secret []byte
	ttl    time.Duration
	lookup Lookup
	now    func() time.Time
	secure bool
}

// NewManager builds a Manager. lookup may be nil in which case the session
// only carries the user id read from the token.
func NewManager(secret string, ttl time.Duration, lookup Lookup) *Manager {
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, lookup: lookup, now: time.Now}
}

// SetSecureCookie marks issued cookies as Secure (HTTPS only).
func (m *Manager) SetSecureCookie(v bool) { m.secure = v }

func (m *Manager) sign(payload string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Issue returns a signed token for userID and its expiry.
func (m *Manager) Issue(userID string) (string, time.Time) {
	exp := m.now().Add(m.ttl)
	payload := userID + "." + strconv.FormatInt(exp.Unix(), 10)
	return payload + "." + m.sign(payload), exp
}

// Verify checks signature and expiry and returns the embedded user id.
func (m *Manager) Verify(token string) (string, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" {
		return "", false
	}
	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(m.sign(payload))) {
		return "", false
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || m.now().Unix() >= exp {
		return "", false
	}
	return parts[0], true
}

// CreateSession sets the signed session cookie and returns the raw token,
// which API clients may send back as a Bearer token.
func (m *Manager) CreateSession(w http.ResponseWriter, userID string) string {
	token, exp := m.Issue(userID)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
	return token
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate resolves the session carried by r, if any.
func (m *Manager) Authenticate(r *http.Request) (Session, bool) {
	token := tokenFromRequest(r)
	if token == "" {
		return Session{}, false
	}
	uid, ok := m.Verify(token)
	if !ok {
		return Session{}, false
	}
	if m.lookup == nil {
		return Session{UserID: uid}, true
	}
	s, err := m.lookup(r.Context(), uid)
	if err != nil || s == nil {
		return Session{}, false
	}
	return *s, true
}

// Middleware attaches the session to the request context if present.
// It never rejects a request; see RequireSession.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := m.Authenticate(r); ok {
			r = r.WithContext(WithSession(r.Context(), s))
		}
		next.ServeHTTP(w, r)
	})
}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, s)
}

// SessionFromContext extracts the session stored by Middleware.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionCtxKey).(Session)
	if !ok || s.UserID == "" {
		return Session{}, false
	}
	return s, true
}

// RequireSession returns 401 JSON when no session is attached.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
