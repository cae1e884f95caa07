package server

import (
	"net/http"
	"testing"

	"blogchef/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// adminSession signs up and logs in an admin, returning the session cookie
// value and the CSRF token from the login response.
func adminSession(t *testing.T, app *fiber.App, email string) (cookie, csrf string) {
	t.Helper()

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/admin/signup", map[string]string{
		"name": "Root", "email": email, "password": "hunter22",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/admin/login", map[string]string{
		"email": email, "password": "hunter22",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie = sessionCookie(t, resp)
	body := decodeBody(t, resp)
	csrf, ok := body["csrf_token"].(string)
	require.True(t, ok, "login response should carry a CSRF token")
	require.NotEmpty(t, csrf)
	return cookie, csrf
}

func withSession(req *http.Request, cookie string) *http.Request {
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: cookie})
	return req
}

// createFlaggedPost posts profane content through the API and returns its id.
func createFlaggedPost(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	resp, err := app.Test(authedRequest(t, http.MethodPost, "/api/posts", token, map[string]string{
		"title": "Hot offer", "content": "buy cheap viagra now",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	post := decodeBody(t, resp)["post"].(map[string]any)
	require.Equal(t, false, post["is_approved"])
	return int(post["id"].(float64))
}

func TestAdminLogin_NonAdminRejected(t *testing.T) {
	_, app := newTestServer(t)
	signupAndLogin(t, app, "Ada", "ada@example.com", "secret1")

	// Valid credentials, but not an admin account.
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/admin/login", map[string]string{
		"email": "ada@example.com", "password": "secret1",
	}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminDashboard(t *testing.T) {
	_, app := newTestServer(t)
	token := signupAndLogin(t, app, "Spammer", "spam@example.com", "secret1")
	createFlaggedPost(t, app, token)

	// No session.
	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/admin/dashboard", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	cookie, _ := adminSession(t, app, "root@example.com")
	resp, err = app.Test(withSession(jsonRequest(t, http.MethodGet, "/admin/dashboard", nil), cookie))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	flagged := body["flagged_posts"].([]any)
	require.Len(t, flagged, 1)
	assert.Equal(t, "Hot offer", flagged[0].(map[string]any)["title"])
}

func TestModerate_ApproveFlow(t *testing.T) {
	_, app := newTestServer(t)
	token := signupAndLogin(t, app, "Spammer", "spam@example.com", "secret1")
	postID := createFlaggedPost(t, app, token)
	cookie, csrf := adminSession(t, app, "root@example.com")

	// Flagged post is withheld from the public listing.
	require.Empty(t, listedTitles(t, app))

	req := withSession(jsonRequest(t, http.MethodPost, "/admin/moderate", map[string]any{
		"task": "approve", "postId": postID,
	}), cookie)
	req.Header.Set("X-CSRF-Token", csrf)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, listedTitles(t, app), "Hot offer")

	// The moderation queue is empty again.
	resp, err = app.Test(withSession(jsonRequest(t, http.MethodGet, "/admin/dashboard", nil), cookie))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody(t, resp)["flagged_posts"])
}

func TestModerate_RejectFlow(t *testing.T) {
	_, app := newTestServer(t)
	token := signupAndLogin(t, app, "Spammer", "spam@example.com", "secret1")
	postID := createFlaggedPost(t, app, token)
	cookie, csrf := adminSession(t, app, "root@example.com")

	req := withSession(jsonRequest(t, http.MethodPost, "/admin/moderate", map[string]any{
		"task": "reject", "postId": postID,
	}), cookie)
	req.Header.Set("X-CSRF-Token", csrf)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Rejected means gone.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/posts/"+itoa(postID), nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestModerate_RequiresCSRF(t *testing.T) {
	_, app := newTestServer(t)
	token := signupAndLogin(t, app, "Spammer", "spam@example.com", "secret1")
	postID := createFlaggedPost(t, app, token)
	cookie, _ := adminSession(t, app, "root@example.com")

	// Valid session, no CSRF token.
	req := withSession(jsonRequest(t, http.MethodPost, "/admin/moderate", map[string]any{
		"task": "approve", "postId": postID,
	}), cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Wrong CSRF token.
	req = withSession(jsonRequest(t, http.MethodPost, "/admin/moderate", map[string]any{
		"task": "approve", "postId": postID,
	}), cookie)
	req.Header.Set("X-CSRF-Token", "forged")
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The post stays flagged.
	assert.Empty(t, listedTitles(t, app))
}

func TestModerate_UnknownTask(t *testing.T) {
	_, app := newTestServer(t)
	cookie, csrf := adminSession(t, app, "root@example.com")

	req := withSession(jsonRequest(t, http.MethodPost, "/admin/moderate", map[string]any{
		"task": "shadowban", "postId": 1,
	}), cookie)
	req.Header.Set("X-CSRF-Token", csrf)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestAdminLogout(t *testing.T) {
	_, app := newTestServer(t)
	cookie, _ := adminSession(t, app, "root@example.com")

	resp, err := app.Test(withSession(jsonRequest(t, http.MethodPost, "/admin/logout", nil), cookie))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The destroyed session no longer opens the dashboard.
	resp, err = app.Test(withSession(jsonRequest(t, http.MethodGet, "/admin/dashboard", nil), cookie))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionOfDeletedUserRejected(t *testing.T) {
	s, app := newTestServer(t)
	cookie, _ := adminSession(t, app, "root@example.com")

	// Remove the admin behind the session's back.
	user, err := s.userRepo.GetAdminByEmail(t.Context(), "root@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NoError(t, s.userRepo.Delete(t.Context(), user.ID))

	resp, err := app.Test(withSession(jsonRequest(t, http.MethodGet, "/admin/dashboard", nil), cookie))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
