package server

import (
	"net/http"
	"strconv"
	"testing"

	"blogchef/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedRequest(t *testing.T, method, target, token string, payload any) *http.Request {
	t.Helper()
	req := jsonRequest(t, method, target, payload)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func itoa(v int) string { return strconv.Itoa(v) }

func listedTitles(t *testing.T, app *fiber.App) []string {
	t.Helper()
	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/posts", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	raw, _ := body["posts"].([]any)
	titles := make([]string, 0, len(raw))
	for _, p := range raw {
		post := p.(map[string]any)
		titles = append(titles, post["title"].(string))
	}
	return titles
}

func TestCreatePost(t *testing.T) {
	_, app := newTestServer(t)
	token := signupAndLogin(t, app, "Ada", "ada@example.com", "secret1")

	resp, err := app.Test(authedRequest(t, http.MethodPost, "/api/posts", token, map[string]string{
		"title":   "Weeknight pasta",
		"content": "Boil water, add salt, cook until al dente.",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	post := body["post"].(map[string]any)
	assert.Equal(t, true, post["is_approved"])

	assert.Contains(t, listedTitles(t, app), "Weeknight pasta")
}

func TestCreatePost_Unauthenticated(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/posts", map[string]string{
		"title": "No token", "content": "should fail",
	}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreatePost_ProfanityHeldFromListing(t *testing.T) {
	_, app := newTestServer(t)
	token := signupAndLogin(t, app, "Spammer", "spam@example.com", "secret1")

	resp, err := app.Test(authedRequest(t, http.MethodPost, "/api/posts", token, map[string]string{
		"title":   "Great deal",
		"content": "buy cheap viagra now",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	post := body["post"].(map[string]any)
	assert.Equal(t, false, post["is_approved"])

	assert.Empty(t, listedTitles(t, app), "flagged post must not appear publicly")
}

func TestGetPost(t *testing.T) {
	_, app := newTestServer(t)
	token := signupAndLogin(t, app, "Ada", "ada@example.com", "secret1")

	resp, err := app.Test(authedRequest(t, http.MethodPost, "/api/posts", token, map[string]string{
		"title": "Lookup me", "content": "content",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)["post"].(map[string]any)
	id := int(created["id"].(float64))

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/posts/"+itoa(id), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decodeBody(t, resp)["post"].(map[string]any)
	assert.Equal(t, "Lookup me", fetched["title"])

	// Unknown id.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/posts/99999", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Non-numeric id.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/posts/abc", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDeletePost_AdminOnly(t *testing.T) {
	s, app := newTestServer(t)
	token := signupAndLogin(t, app, "Ada", "ada@example.com", "secret1")

	resp, err := app.Test(authedRequest(t, http.MethodPost, "/api/posts", token, map[string]string{
		"title": "Doomed", "content": "content",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)["post"].(map[string]any)
	id := itoa(int(created["id"].(float64)))

	// The author is not an admin, so even their own post is off limits.
	resp, err = app.Test(authedRequest(t, http.MethodDelete, "/api/posts/"+id, token, nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Promote and retry.
	require.NoError(t, s.db.Model(&models.User{}).
		Where("email = ?", "ada@example.com").
		Update("is_admin", true).Error)

	resp, err = app.Test(authedRequest(t, http.MethodDelete, "/api/posts/"+id, token, nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/posts/"+id, nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
