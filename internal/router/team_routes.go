package router

import (
	"github.com/labstack/echo/v4"

	"github.com/aryanaichra/project-tracker/internal/handler"
	"github.com/aryanaichra/project-tracker/internal/middleware"
)

// RegisterTeams wires the team surface. Teams sit outside any single
// project, so routes take only JWT auth; the handler enforces the
// team-admin rule on mutations and the membership fan-out runs inside
// the handler through the syncer.
func RegisterTeams(e *echo.Echo, t *handler.TeamHandler, jwtSecret string) {
	g := e.Group("/v1/teams")
	g.Use(middleware.JWTAuth(jwtSecret))

	g.POST("", t.Create)
	g.GET("", t.List)
	g.GET("/:team_id", t.Get)
	g.DELETE("/:team_id", t.Delete)

	g.POST("/:team_id/members", t.AddMember)
	g.DELETE("/:team_id/members/:user_id", t.RemoveMember)

	g.POST("/:team_id/projects", t.AssociateProject)
	g.DELETE("/:team_id/projects/:project_id", t.DissociateProject)
}
