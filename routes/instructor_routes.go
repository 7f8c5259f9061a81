package routes

import (
	"github.com/kamau254/course_finance/handlers"
	"github.com/kamau254/course_finance/middleware"
	ws "github.com/kamau254/course_finance/websocket"
	"github.com/gofiber/fiber/v2"
)

func InstructorRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	instructor := api.Group("/instructor", middleware.Protected(), middleware.InstructorRequired())

	earnings := instructor.Group("/earnings")
	earnings.Get("", handlers.ListMyEarnings)
	earnings.Get("/balance", handlers.GetAvailableBalance)
	earnings.Get("/summary", handlers.GetEarningsSummary)
	earnings.Get("/export", handlers.ExportEarningsCsv)
	earnings.Get("/statement", handlers.DownloadEarningsStatement)

	payouts := instructor.Group("/payout-requests")
	payouts.Post("", handlers.CreatePayoutRequest)
	payouts.Get("", handlers.ListMyPayoutRequests)
	payouts.Post("/:requestId/re-request", handlers.ReRequestPayout)
	payouts.Post("/:requestId/cancel", handlers.CancelPayoutRequest)

	app.Use("/ws", ws.UpgradeRequired)
	app.Get("/ws/:userId", ws.ServeWS())
}
