// handlers/event.go
package handlers

import (
	"github.com/lanzy-lanzy/blackcobra/middleware"
	"github.com/lanzy-lanzy/blackcobra/models"
	"github.com/lanzy-lanzy/blackcobra/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEventRoutes(app *fiber.App, eventService *services.EventService) {
	secured := app.Group("/", middleware.AuthMiddleware())

	// Trainee-facing published events + registration
	trainee := secured.Group("/trainee/events", middleware.RequireRoles(models.RoleTrainee))
	trainee.Get("/", eventService.PublishedHandler)
	trainee.Get("/:id", eventService.PublishedDetailHandler)
	trainee.Post("/:id/register", eventService.RegisterHandler)
	trainee.Delete("/:id/register", eventService.UnregisterHandler)

	// 🔒 Admin event management
	admin := secured.Group("/events", middleware.RequireRoles(models.RoleAdmin))
	admin.Get("/", eventService.ListHandler)
	admin.Get("/calendar", eventService.CalendarHandler)
	admin.Post("/", eventService.CreateHandler)
	admin.Get("/:id", eventService.DetailHandler)
	admin.Put("/:id", eventService.UpdateHandler)
	admin.Delete("/:id", eventService.DeleteHandler)
}
