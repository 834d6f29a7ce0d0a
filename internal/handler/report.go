package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aryanaichra/project-tracker/internal/access"
	"github.com/aryanaichra/project-tracker/internal/repository"
)

// projectActivityLimit caps how many feed rows the project activity
// endpoints return.
const projectActivityLimit = 50

// ReportHandler serves the aggregated project report and the project
// activity feed.
type ReportHandler struct {
	Projects *repository.ProjectRepo
	Members  *repository.MemberRepo
	Items    *repository.ItemRepo
	Activity *repository.ActivityRepo
	Access   access.Store
}

func NewReportHandler(p *repository.ProjectRepo, m *repository.MemberRepo, i *repository.ItemRepo, a *repository.ActivityRepo, acc access.Store) *ReportHandler {
	return &ReportHandler{Projects: p, Members: m, Items: i, Activity: a, Access: acc}
}

// Report returns the project with its members, items, per-status counts
// and the caller's team access tier.
func (h *ReportHandler) Report(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	projectID := guardProjectID(c)
	p, err := h.Projects.GetByID(ctx, projectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return internalError(c, "load project failed")
	}
	members, err := h.Members.ListByProject(ctx, projectID)
	if err != nil {
		return internalError(c, "list members failed")
	}
	items, err := h.Items.ListByProject(ctx, projectID)
	if err != nil {
		return internalError(c, "list items failed")
	}
	tier, err := access.Resolve(ctx, h.Access, uid, projectID)
	if err != nil {
		return internalError(c, "resolve access failed")
	}

	stats := map[string]int{}
	itemsOut := make([]itemResp, 0, len(items))
	for _, it := range items {
		stats[it.Status]++
		itemsOut = append(itemsOut, toItemResp(it))
	}
	membersOut := make([]memberResp, 0, len(members))
	for _, m := range members {
		membersOut = append(membersOut, memberResp{
			UserID:   m.UserID,
			Username: m.Username,
			Email:    m.Email,
			Role:     m.Role,
			Source:   m.Source,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"project":      toProjectResp(p),
		"members":      membersOut,
		"items":        itemsOut,
		"status_stats": stats,
		"access_level": tier,
	})
}

// ProjectActivity returns the project's recent audit rows, newest first.
func (h *ReportHandler) ProjectActivity(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Activity.ListByProject(ctx, guardProjectID(c), projectActivityLimit)
	if err != nil {
		return internalError(c, "list activity failed")
	}
	return c.JSON(http.StatusOK, toActivityResp(rows))
}
