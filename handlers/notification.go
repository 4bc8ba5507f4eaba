// handlers/notification.go
package handlers

import (
	"github.com/lanzy-lanzy/blackcobra/middleware"
	"github.com/lanzy-lanzy/blackcobra/services"

	"github.com/gofiber/fiber/v2"
)

func SetupNotificationRoutes(app *fiber.App, notificationService *services.NotificationService) {
	// Any authenticated role sees its own notifications.
	secured := app.Group("/notifications", middleware.AuthMiddleware())
	secured.Get("/", notificationService.ListHandler)
	secured.Post("/:id/read", notificationService.MarkReadHandler)
	secured.Post("/read-all", notificationService.MarkAllReadHandler)
}
