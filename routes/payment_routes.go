package routes

import (
	"github.com/kamau254/course_finance/handlers"
	"github.com/gofiber/fiber/v2"
)

// PaymentRoutes registers the gateway webhook, which is called
// server-to-server and carries no user JWT.
func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	payments := api.Group("/payments")
	payments.Post("/webhook/approved", handlers.HandlePaymentApproved)
}
