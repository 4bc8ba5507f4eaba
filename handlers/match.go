// handlers/match.go
package handlers

import (
	"github.com/lanzy-lanzy/blackcobra/middleware"
	"github.com/lanzy-lanzy/blackcobra/models"
	"github.com/lanzy-lanzy/blackcobra/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService) {
	secured := app.Group("/", middleware.AuthMiddleware())

	// 🔒 Admin schedules matches under events
	secured.Post("/matches", middleware.RequireRoles(models.RoleAdmin), matchService.CreateHandler)

	// Judge-only scoring. The service re-checks assignment: a judge can only
	// touch matches assigned to them, and admins are not implicitly allowed.
	judge := secured.Group("/matches", middleware.RequireRoles(models.RoleJudge))
	judge.Get("/upcoming", matchService.UpcomingHandler)
	judge.Get("/recent", matchService.RecentHandler)
	judge.Get("/:id/score", matchService.ScoringHandler)
	judge.Post("/:id/update-score", matchService.UpdateScoreHandler)
	judge.Post("/:id/complete", matchService.CompleteHandler)
}
