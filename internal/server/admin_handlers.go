package server

import (
	"time"

	"blogchef/internal/auth"
	"blogchef/internal/models"
	"blogchef/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminSignup handles POST /admin/signup
func (s *Server) AdminSignup(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusUnprocessableEntity,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Signup(c.UserContext(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  true,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": userResponse(user),
	})
}

// AdminLogin handles POST /admin/login. A successful login creates a
// server-side session, sets the session cookie, and returns the CSRF token
// the client must echo on state-changing admin requests.
func (s *Server) AdminLogin(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusUnprocessableEntity,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.AdminLogin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondAppError(c, err)
	}

	sess := auth.Session{
		UserID:       user.ID,
		Name:         user.Name,
		Email:        user.Email,
		LastLoggedIn: user.LastLoggedIn,
		CSRFToken:    auth.NewCSRFToken(),
	}
	sessionID, err := s.sessions.Create(c.UserContext(), sess)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookie,
		Value:    sessionID,
		Expires:  time.Now().Add(auth.SessionTTL),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"user":       userResponse(user),
		"csrf_token": sess.CSRFToken,
	})
}

// AdminDashboard handles GET /admin/dashboard: the moderation queue of
// flagged posts, newest first. Never served from cache.
func (s *Server) AdminDashboard(c *fiber.Ctx) error {
	posts, err := s.postService.ListFlagged(c.UserContext())
	if err != nil {
		return respondAppError(c, err)
	}

	sess := c.Locals("session").(*auth.Session)
	return c.JSON(fiber.Map{
		"admin": fiber.Map{
			"name":  sess.Name,
			"email": sess.Email,
		},
		"flagged_posts": posts,
	})
}

// Moderate handles POST /admin/moderate: {task: approve|reject, postId}.
// Approve lifts the hold; reject deletes the post. Both invalidate the
// cached listing and the per-post entry.
func (s *Server) Moderate(c *fiber.Ctx) error {
	var req struct {
		Task   string `json:"task"`
		PostID uint   `json:"postId"`
	}
	if err := c.BodyParser(&req); err != nil || req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusUnprocessableEntity,
			models.NewValidationError("task and postId are required"))
	}

	switch req.Task {
	case "approve":
		if err := s.postService.ApprovePost(c.UserContext(), req.PostID); err != nil {
			return respondAppError(c, err)
		}
	case "reject":
		if err := s.postService.RejectPost(c.UserContext(), req.PostID); err != nil {
			return respondAppError(c, err)
		}
	default:
		return models.RespondWithError(c, fiber.StatusUnprocessableEntity,
			models.NewValidationError("task must be approve or reject"))
	}

	return c.JSON(fiber.Map{
		"task":   req.Task,
		"postId": req.PostID,
	})
}

// AdminLogout handles POST /admin/logout
func (s *Server) AdminLogout(c *fiber.Ctx) error {
	sessionID := c.Locals("sessionID").(string)
	if err := s.sessions.Destroy(c.UserContext(), sessionID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})

	return c.JSON(fiber.Map{"logged_out": true})
}
