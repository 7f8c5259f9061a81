package handlers

import (
	"github.com/kamau254/course_finance/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// statusFromServiceError maps the service error kinds onto HTTP statuses.
func statusFromServiceError(err error) int {
	switch {
	case services.IsValidation(err):
		return fiber.StatusBadRequest
	case services.IsConflict(err):
		return fiber.StatusConflict
	case services.IsNotFound(err):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func serviceError(c *fiber.Ctx, err error) error {
	return c.Status(statusFromServiceError(err)).JSON(fiber.Map{"error": err.Error()})
}

func currentUserID(c *fiber.Ctx) uuid.UUID {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	return userID
}
