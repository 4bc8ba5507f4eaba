// handlers/admin.go
package handlers

import (
	"github.com/lanzy-lanzy/blackcobra/middleware"
	"github.com/lanzy-lanzy/blackcobra/models"
	"github.com/lanzy-lanzy/blackcobra/services"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes wires the admin-only surfaces: promotions, the payment
// ledger, belts and the dashboard aggregator.
func SetupAdminRoutes(
	app *fiber.App,
	promotionService *services.PromotionService,
	paymentService *services.PaymentService,
	beltService *services.BeltService,
	dashboardService *services.DashboardService,
) {
	secured := app.Group("/", middleware.AuthMiddleware())
	admin := secured.Group("/", middleware.RequireRoles(models.RoleAdmin))

	// Belt ladder
	admin.Get("/belts", beltService.ListHandler)

	// Promotion management
	admin.Get("/promotions", promotionService.CandidatesHandler)
	admin.Post("/promotions/:trainee_id", promotionService.PromoteHandler)
	admin.Get("/promotions/history", promotionService.HistoryHandler)

	// Payment management
	admin.Get("/payments", paymentService.ListHandler)
	admin.Post("/payments", paymentService.CreateHandler)
	admin.Post("/payments/:id/mark-paid", paymentService.MarkPaidHandler)
	admin.Get("/payments/reports", paymentService.ReportsHandler)

	// Dashboard statistics & charts
	admin.Get("/dashboard/statistics", dashboardService.StatisticsHandler)
	admin.Post("/dashboard/statistics/recompute", dashboardService.RecomputeHandler)
	admin.Get("/chart-data", dashboardService.ChartDataHandler)
}
