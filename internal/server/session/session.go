// Package session implements the stateless client-held session: an HMAC-signed
// JWT carried in an httpOnly cookie. Nothing is stored server-side, so a token
// that fails verification is simply treated as "no session".
//
// Two time windows bound a session: an absolute duration counted from issuance
// and a shorter activity window counted from the last validated request. The
// activity window slides (the cookie is re-signed on every validated request),
// the absolute duration never does.
package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// Identity is the authenticated user summary embedded in a session token.
type Identity struct {
	UserID   string
	Username string
	Email    string
	Role     string
}

// Claims is the signed session payload. A token with an empty UserID is an
// anonymous session: it carries no identity but may hold a post-login
// redirect target recorded by the authorization gate.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string `json:"uid,omitempty"`
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
	RedirectTo   string `json:"redirect_to,omitempty"`
	LastActivity int64  `json:"lat"`
}

// Identity returns the embedded identity summary, or nil for anonymous tokens.
func (c *Claims) Identity() *Identity {
	if c.UserID == "" {
		return nil
	}
	return &Identity{UserID: c.UserID, Username: c.Username, Email: c.Email, Role: c.Role}
}

// Manager issues, validates and destroys session cookies.
type Manager struct {
	secret         []byte
	duration       time.Duration
	activeDuration time.Duration

	now func() time.Time
}

// NewManager constructs a Manager. duration is the absolute session lifetime,
// activeDuration the sliding inactivity window.
func NewManager(secret string, duration, activeDuration time.Duration) *Manager {
	return &Manager{
		secret:         []byte(secret),
		duration:       duration,
		activeDuration: activeDuration,
		now:            time.Now,
	}
}

// Issue signs a fresh session for the given identity and sets the cookie.
func (m *Manager) Issue(w http.ResponseWriter, identity *Identity) error {
	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(now)},
		UserID:           identity.UserID,
		Username:         identity.Username,
		Email:            identity.Email,
		Role:             identity.Role,
		LastActivity:     now.Unix(),
	}
	return m.write(w, claims)
}

// Remember sets an anonymous session carrying only the URL to return to
// after a successful login.
func (m *Manager) Remember(w http.ResponseWriter, redirectTo string) error {
	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(now)},
		RedirectTo:       redirectTo,
		LastActivity:     now.Unix(),
	}
	return m.write(w, claims)
}

// Validate parses and verifies the session cookie on the request. It returns
// common.ErrInvalidSession when the cookie is absent, the signature does not
// verify, the absolute duration has elapsed since issuance, or the activity
// window has elapsed since the last validated request. The returned claims
// may be anonymous; use Claims.Identity to tell.
func (m *Manager) Validate(r *http.Request) (*Claims, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, common.ErrInvalidSession
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidSession
	}
	if claims.IssuedAt == nil {
		return nil, common.ErrInvalidSession
	}

	now := m.now()
	if now.Sub(claims.IssuedAt.Time) > m.duration {
		return nil, common.ErrInvalidSession
	}
	if now.Sub(time.Unix(claims.LastActivity, 0)) > m.activeDuration {
		return nil, common.ErrInvalidSession
	}

	return claims, nil
}

// Refresh re-signs the claims with an updated activity timestamp, keeping the
// original issuance time so the absolute duration still counts from login.
func (m *Manager) Refresh(w http.ResponseWriter, claims *Claims) error {
	claims.LastActivity = m.now().Unix()
	return m.write(w, claims)
}

// Destroy expires the session cookie. It never fails: an absent cookie is
// already the state Destroy establishes.
func (m *Manager) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (m *Manager) write(w http.ResponseWriter, claims *Claims) error {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(m.duration.Seconds()),
	})
	return nil
}
