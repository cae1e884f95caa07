package server

import (
	"blogchef/internal/models"
	"blogchef/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts. Only approved posts are listed; the
// result is served through the read-through cache when Redis is up.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetPost handles GET /api/posts/:postId
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "postId")
	if err != nil {
		return respondAppError(c, err)
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"post": post})
}

// CreatePost handles POST /api/posts. The moderation gate runs inside the
// service; a flagged post is accepted but held back from the public listing.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondAppError(c, models.NewValidationError("Invalid request body"))
	}

	userID := c.Locals("userID").(uint)
	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

// DeletePost handles DELETE /api/posts/:postId. Admin-only.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "postId")
	if err != nil {
		return respondAppError(c, err)
	}

	if err := s.postService.DeletePost(c.UserContext(), id); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": id})
}
