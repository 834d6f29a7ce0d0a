package router

import (
	"github.com/labstack/echo/v4"

	"github.com/aryanaichra/project-tracker/internal/handler"
	"github.com/aryanaichra/project-tracker/internal/middleware"
	"github.com/aryanaichra/project-tracker/internal/rbac"
)

// RegisterProjects wires the project, membership, item, comment and
// report surfaces. Every project- or item-scoped route carries the
// authorization guard with the action it gates; routes on blanket edit
// and delete actions enable the own-resource fallback.
func RegisterProjects(
	e *echo.Echo,
	guard middleware.Guard,
	p *handler.ProjectHandler,
	m *handler.MemberHandler,
	i *handler.ItemHandler,
	r *handler.ReportHandler,
	jwtSecret string,
	cache echo.MiddlewareFunc,
) {
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))

	// Project collection: creation and listing need a session but no
	// membership, since the caller is not inside any project yet.
	v1.POST("/projects", p.Create)
	v1.GET("/projects", p.List)

	// The caller's own worklist spans projects; the query scopes rows
	// to items the caller reported or holds, so no project guard runs.
	v1.GET("/me/items", i.ListMine)

	pr := v1.Group("/projects/:project_id")
	pr.GET("", p.Get, guard.RequireProjectRole(rbac.ActionViewProjectSettings, false))
	pr.PATCH("", p.Update, guard.RequireProjectRole(rbac.ActionManageProject, false))
	pr.DELETE("", p.Delete, guard.RequireProjectRole(rbac.ActionDeleteProject, false))
	pr.POST("/transfer-admin", p.TransferAdmin, guard.RequireProjectRole(rbac.ActionTransferAdmin, false))

	pr.GET("/members", m.List, guard.RequireProjectRole(rbac.ActionViewProjectSettings, false))
	pr.POST("/members", m.Add, guard.RequireProjectRole(rbac.ActionAddRemoveMembers, false))
	pr.PATCH("/members/:user_id", m.ChangeRole, guard.RequireProjectRole(rbac.ActionChangeRoles, false))
	pr.DELETE("/members/:user_id", m.Remove, guard.RequireProjectRole(rbac.ActionAddRemoveMembers, false))

	pr.GET("/columns", p.ListColumns, guard.RequireProjectRole(rbac.ActionViewTasks, false))
	pr.POST("/columns", p.CreateColumn, guard.RequireProjectRole(rbac.ActionManageProject, false))

	pr.GET("/items", i.ListByProject, guard.RequireProjectRole(rbac.ActionViewTasks, false))
	pr.POST("/items", i.Create, guard.RequireProjectRole(rbac.ActionCreateTask, false))

	pr.GET("/activity", r.ProjectActivity, guard.RequireProjectRole(rbac.ActionViewProjectSettings, false))
	pr.GET("/report", r.Report, guard.RequireProjectRole(rbac.ActionViewProjectSettings, false), cache)

	// Item routes resolve their project through the item itself.
	it := v1.Group("/items/:item_id")
	it.GET("", i.Get, guard.RequireProjectRole(rbac.ActionViewTasks, false))
	it.PATCH("", i.Update, guard.RequireProjectRole(rbac.ActionEditAnyTask, true))
	it.DELETE("", i.Delete, guard.RequireProjectRole(rbac.ActionDeleteAnyTask, true))
	it.GET("/children", i.ListChildren, guard.RequireProjectRole(rbac.ActionViewTasks, false))
	it.GET("/comments", i.ListComments, guard.RequireProjectRole(rbac.ActionViewTasks, false))
	it.POST("/comments", i.AddComment, guard.RequireProjectRole(rbac.ActionCreateTask, false))
	it.GET("/activity", i.ListActivity, guard.RequireProjectRole(rbac.ActionViewTasks, false))
}
