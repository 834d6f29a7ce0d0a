package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aryanaichra/project-tracker/internal/model"
	"github.com/aryanaichra/project-tracker/internal/repository"
)

// ProjectHandler bundles dependencies for project endpoints.
type ProjectHandler struct {
	Projects *repository.ProjectRepo
	Columns  *repository.ColumnRepo
}

func NewProjectHandler(p *repository.ProjectRepo, cols *repository.ColumnRepo) *ProjectHandler {
	return &ProjectHandler{Projects: p, Columns: cols}
}

// ----- DTOs -----

type projectReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type projectPatchReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	OwnerTeamID *uint64 `json:"owner_team_id"`
}

type transferAdminReq struct {
	UserID uint64 `json:"user_id"`
}

type projectResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AdminID     uint64    `json:"admin_id"`
	OwnerTeamID *uint64   `json:"owner_team_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProjectResp(p model.Project) projectResp {
	return projectResp{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		AdminID:     p.AdminID,
		OwnerTeamID: p.OwnerTeamID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Create makes a new project; the caller becomes its admin member and
// the board is seeded with the default columns.
func (h *ProjectHandler) Create(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	var req projectReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return badRequest(c, "name required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Projects.Create(ctx, req.Name, req.Description, uid)
	if err != nil {
		return internalError(c, "create project failed")
	}
	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		return internalError(c, "load project failed")
	}
	return c.JSON(http.StatusCreated, toProjectResp(p))
}

// List returns the projects the caller is a member of.
func (h *ProjectHandler) List(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	projects, err := h.Projects.ListForUser(ctx, uid)
	if err != nil {
		return internalError(c, "list projects failed")
	}
	out := make([]projectResp, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResp(p))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one project. Access was already settled by the guard.
func (h *ProjectHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, guardProjectID(c))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return internalError(c, "load project failed")
	}
	return c.JSON(http.StatusOK, toProjectResp(p))
}

// Update patches the project's name, description or owning team.
func (h *ProjectHandler) Update(c echo.Context) error {
	var req projectPatchReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
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

	name, desc := p.Name, p.Description
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			return badRequest(c, "name cannot be empty")
		}
	}
	if req.Description != nil {
		desc = *req.Description
	}
	if err := h.Projects.Update(ctx, projectID, name, desc); err != nil {
		return internalError(c, "update project failed")
	}
	if req.OwnerTeamID != nil {
		if err := h.Projects.SetOwnerTeam(ctx, projectID, *req.OwnerTeamID); err != nil {
			return internalError(c, "set owner team failed")
		}
	}

	p, err = h.Projects.GetByID(ctx, projectID)
	if err != nil {
		return internalError(c, "load project failed")
	}
	return c.JSON(http.StatusOK, toProjectResp(p))
}

// Delete removes the project and everything scoped to it.
func (h *ProjectHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Projects.Delete(ctx, guardProjectID(c)); err != nil {
		return internalError(c, "delete project failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// TransferAdmin hands the admin role to another member. The previous
// admin drops to manager; both role rows and the legacy admin_id column
// are rewritten in one transaction.
func (h *ProjectHandler) TransferAdmin(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	var req transferAdminReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return badRequest(c, "user_id required")
	}
	if req.UserID == uid {
		return badRequest(c, "already the admin")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	projectID := guardProjectID(c)
	if err := h.Projects.TransferAdmin(ctx, projectID, uid, req.UserID); err != nil {
		if err == sql.ErrNoRows {
			return badRequest(c, "target user is not a project member")
		}
		return internalError(c, "transfer admin failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"project_id": projectID, "admin_id": req.UserID})
}

type columnResp struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Position uint32 `json:"position"`
}

func toColumnResp(col model.Column) columnResp {
	return columnResp{ID: col.ID, Name: col.Name, Position: col.Position}
}

// ListColumns returns the project's board columns.
func (h *ProjectHandler) ListColumns(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	cols, err := h.Columns.ListByProject(ctx, guardProjectID(c))
	if err != nil {
		return internalError(c, "list columns failed")
	}
	out := make([]columnResp, 0, len(cols))
	for _, col := range cols {
		out = append(out, toColumnResp(col))
	}
	return c.JSON(http.StatusOK, out)
}

// CreateColumn appends a new board column.
func (h *ProjectHandler) CreateColumn(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return badRequest(c, "name required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	col, err := h.Columns.Create(ctx, guardProjectID(c), req.Name)
	if err != nil {
		return internalError(c, "create column failed")
	}
	return c.JSON(http.StatusCreated, toColumnResp(col))
}
