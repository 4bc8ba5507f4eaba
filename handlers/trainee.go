// handlers/trainee.go
package handlers

import (
	"github.com/lanzy-lanzy/blackcobra/middleware"
	"github.com/lanzy-lanzy/blackcobra/models"
	"github.com/lanzy-lanzy/blackcobra/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTraineeRoutes(app *fiber.App, traineeService *services.TraineeService) {
	secured := app.Group("/", middleware.AuthMiddleware())

	// Trainee self-service views
	trainee := secured.Group("/trainee", middleware.RequireRoles(models.RoleTrainee))
	trainee.Get("/profile", traineeService.ProfileHandler)
	trainee.Get("/matches", traineeService.MyMatchesHandler)
	trainee.Get("/payments", traineeService.MyPaymentsHandler)

	// 🔒 Admin trainee management
	admin := secured.Group("/trainees", middleware.RequireRoles(models.RoleAdmin))
	admin.Get("/", traineeService.ListHandler)
	admin.Post("/", traineeService.CreateHandler)
	admin.Get("/pending", traineeService.PendingHandler)
	admin.Put("/:id", traineeService.UpdateHandler)
	admin.Delete("/:id", traineeService.DeleteHandler)
	admin.Post("/:id/approve", traineeService.ApproveHandler)
	admin.Post("/:id/profile-image", traineeService.UploadProfileImageHandler)
}
