// handlers/auth.go
package handlers

import (
	"github.com/lanzy-lanzy/blackcobra/middleware"
	"github.com/lanzy-lanzy/blackcobra/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService) {
	// 🔓 Public routes
	app.Post("/register", authService.RegisterHandler)
	app.Post("/login", authService.LoginHandler)

	// 🔐 Authenticated
	secured := app.Group("/", middleware.AuthMiddleware())
	secured.Get("/me", authService.MeHandler)
}
