package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

func newTestManager() *Manager {
	return NewManager("test-secret", 30*time.Minute, 5*time.Minute)
}

func issueAndExtract(t *testing.T, m *Manager, identity *Identity) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, m.Issue(w, identity))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func requestWithCookie(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	r.AddCookie(c)
	return r
}

func TestIssueAndValidate_RoundTrip(t *testing.T) {
	m := newTestManager()
	alice := &Identity{UserID: "u-1", Username: "alice", Email: "a@x.com"}

	cookie := issueAndExtract(t, m, alice)
	assert.Equal(t, CookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)

	claims, err := m.Validate(requestWithCookie(cookie))
	require.NoError(t, err)
	require.NotNil(t, claims.Identity())
	assert.Equal(t, alice, claims.Identity())
}

func TestValidate_NoCookie(t *testing.T) {
	m := newTestManager()

	_, err := m.Validate(httptest.NewRequest(http.MethodGet, "/", nil))
	if !errors.Is(err, common.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestValidate_TamperedToken(t *testing.T) {
	m := newTestManager()
	cookie := issueAndExtract(t, m, &Identity{UserID: "u-1"})
	cookie.Value += "x"

	_, err := m.Validate(requestWithCookie(cookie))
	if !errors.Is(err, common.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	m := newTestManager()
	cookie := issueAndExtract(t, m, &Identity{UserID: "u-1"})

	other := NewManager("other-secret", 30*time.Minute, 5*time.Minute)
	_, err := other.Validate(requestWithCookie(cookie))
	if !errors.Is(err, common.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestValidate_ActivityWindowElapsed(t *testing.T) {
	m := newTestManager()
	cookie := issueAndExtract(t, m, &Identity{UserID: "u-1"})

	m.now = func() time.Time { return time.Now().Add(6 * time.Minute) }
	_, err := m.Validate(requestWithCookie(cookie))
	if !errors.Is(err, common.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession after idle window, got %v", err)
	}
}

// A session kept active by refreshes is still rejected once the absolute
// duration since issuance has elapsed.
func TestValidate_AbsoluteDurationCeiling(t *testing.T) {
	m := newTestManager()
	start := time.Now()
	m.now = func() time.Time { return start }

	cookie := issueAndExtract(t, m, &Identity{UserID: "u-1", Username: "alice"})

	// Refresh every 4 minutes, inside the 5-minute activity window.
	for elapsed := 4 * time.Minute; elapsed < 32*time.Minute; elapsed += 4 * time.Minute {
		m.now = func() time.Time { return start.Add(elapsed) }

		claims, err := m.Validate(requestWithCookie(cookie))
		if elapsed > 30*time.Minute {
			if !errors.Is(err, common.ErrInvalidSession) {
				t.Fatalf("expected ErrInvalidSession at %v, got %v", elapsed, err)
			}
			return
		}
		require.NoError(t, err, "at %v", elapsed)

		w := httptest.NewRecorder()
		require.NoError(t, m.Refresh(w, claims))
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		cookie = cookies[0]
	}
	t.Fatalf("session never hit the absolute ceiling")
}

func TestRefresh_KeepsIssuedAt(t *testing.T) {
	m := newTestManager()
	start := time.Now().Truncate(time.Second)
	m.now = func() time.Time { return start }

	cookie := issueAndExtract(t, m, &Identity{UserID: "u-1"})

	m.now = func() time.Time { return start.Add(2 * time.Minute) }
	claims, err := m.Validate(requestWithCookie(cookie))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, m.Refresh(w, claims))
	refreshed, err := m.Validate(requestWithCookie(w.Result().Cookies()[0]))
	require.NoError(t, err)

	assert.Equal(t, start.Unix(), refreshed.IssuedAt.Unix())
	assert.Equal(t, start.Add(2*time.Minute).Unix(), refreshed.LastActivity)
}

func TestRemember_AnonymousCarriesRedirect(t *testing.T) {
	m := newTestManager()

	w := httptest.NewRecorder()
	require.NoError(t, m.Remember(w, "/tasks/add"))

	claims, err := m.Validate(requestWithCookie(w.Result().Cookies()[0]))
	require.NoError(t, err)
	assert.Nil(t, claims.Identity(), "anonymous session must not yield an identity")
	assert.Equal(t, "/tasks/add", claims.RedirectTo)
}

func TestDestroy_ExpiresCookie(t *testing.T) {
	m := newTestManager()

	w := httptest.NewRecorder()
	m.Destroy(w)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
