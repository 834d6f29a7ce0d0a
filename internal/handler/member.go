package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aryanaichra/project-tracker/internal/rbac"
	"github.com/aryanaichra/project-tracker/internal/repository"
)

// MemberHandler bundles dependencies for project membership endpoints.
type MemberHandler struct {
	Members *repository.MemberRepo
	Users   *repository.UserRepo
}

func NewMemberHandler(m *repository.MemberRepo, u *repository.UserRepo) *MemberHandler {
	return &MemberHandler{Members: m, Users: u}
}

type addMemberReq struct {
	UserID uint64 `json:"user_id"`
	Role   string `json:"role"`
}

type changeRoleReq struct {
	Role string `json:"role"`
}

type memberResp struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Source   string `json:"source"`
}

// Add grants a user direct membership with the given role. Defaults to
// member when the role is omitted.
func (h *MemberHandler) Add(c echo.Context) error {
	var req addMemberReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return badRequest(c, "user_id required")
	}
	if req.Role == "" {
		req.Role = rbac.RoleMember
	}
	if !rbac.ValidRole(req.Role) {
		return badRequest(c, "unknown role")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, req.UserID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return internalError(c, "load user failed")
	}

	projectID := guardProjectID(c)
	if err := h.Members.Add(ctx, projectID, req.UserID, req.Role); err != nil {
		if err == repository.ErrDuplicateMember {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already a project member"})
		}
		return internalError(c, "add member failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"project_id": projectID,
		"user_id":    req.UserID,
		"role":       req.Role,
	})
}

// List returns the project's members.
func (h *MemberHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	members, err := h.Members.ListByProject(ctx, guardProjectID(c))
	if err != nil {
		return internalError(c, "list members failed")
	}
	out := make([]memberResp, 0, len(members))
	for _, m := range members {
		out = append(out, memberResp{
			UserID:   m.UserID,
			Username: m.Username,
			Email:    m.Email,
			Role:     m.Role,
			Source:   m.Source,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// ChangeRole rewrites a member's role. The row becomes a direct grant so
// later team retractions cannot take the role away.
func (h *MemberHandler) ChangeRole(c echo.Context) error {
	targetID := paramUint(c, "user_id")
	if targetID == 0 {
		return badRequest(c, "invalid user id")
	}
	var req changeRoleReq
	if err := c.Bind(&req); err != nil || !rbac.ValidRole(req.Role) {
		return badRequest(c, "valid role required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	projectID := guardProjectID(c)
	if err := h.Members.ChangeRole(ctx, projectID, targetID, req.Role); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not a project member"})
		}
		return internalError(c, "change role failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"project_id": projectID,
		"user_id":    targetID,
		"role":       req.Role,
	})
}

// Remove revokes a user's membership.
func (h *MemberHandler) Remove(c echo.Context) error {
	targetID := paramUint(c, "user_id")
	if targetID == 0 {
		return badRequest(c, "invalid user id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Members.Delete(ctx, guardProjectID(c), targetID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not a project member"})
		}
		return internalError(c, "remove member failed")
	}
	return c.NoContent(http.StatusNoContent)
}
