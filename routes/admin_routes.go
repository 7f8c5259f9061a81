package routes

import (
	"github.com/kamau254/course_finance/handlers"
	"github.com/kamau254/course_finance/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/payout-requests", handlers.ListAllPayoutRequests)
	admin.Post("/payout-requests/:requestId/approve", handlers.ApprovePayoutRequest)
	admin.Post("/payout-requests/:requestId/reject", handlers.RejectPayoutRequest)

	agreements := admin.Group("/agreements")
	agreements.Get("", handlers.ListRevenueAgreements)
	agreements.Post("", handlers.CreateRevenueAgreement)
	agreements.Put("/:agreementId", handlers.ManageRevenueAgreement)

	admin.Get("/earnings", handlers.ListAllEarnings)
	admin.Get("/audit-trail/:entityType/:entityId", handlers.GetAuditTrail)
}
