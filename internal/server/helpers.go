package server

import (
	"strconv"

	"blogchef/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respondAppError maps an AppError code to its HTTP status. Anything without
// a known code is a store or programming failure and reports as 500.
func respondAppError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if appErr, ok := err.(*models.AppError); ok {
		switch appErr.Code {
		case "VALIDATION_ERROR":
			status = fiber.StatusUnprocessableEntity
		case "UNAUTHORIZED":
			status = fiber.StatusUnauthorized
		case "NOT_FOUND":
			status = fiber.StatusNotFound
		case "DUPLICATE_EMAIL":
			status = fiber.StatusConflict
		}
	}
	return models.RespondWithError(c, status, err)
}

// parseIDParam parses a positive integer route parameter.
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + name)
	}
	return uint(id), nil
}

// userResponse strips fields that never belong in a response body.
func userResponse(user *models.User) fiber.Map {
	return fiber.Map{
		"id":             user.ID,
		"name":           user.Name,
		"email":          user.Email,
		"is_admin":       user.IsAdmin,
		"created_at":     user.CreatedAt,
		"last_logged_in": user.LastLoggedIn,
	}
}
