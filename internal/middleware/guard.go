package middleware

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aryanaichra/project-tracker/internal/model"
	"github.com/aryanaichra/project-tracker/internal/rbac"
)

// Context keys populated by the guard for downstream handlers.
const (
	CtxProjectID   = "project_id"
	CtxProjectRole = "project_role"
	CtxMember      = "project_member"
	CtxItem        = "guard_item"
)

// Route parameter names the guard resolves the target project from.
const (
	ParamProjectID = "project_id"
	ParamItemID    = "item_id"
)

// Narrow store views consumed by the guard. The repositories satisfy
// these directly; tests substitute fakes. Absent rows are reported as
// sql.ErrNoRows by both.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

type MemberStore interface {
	Get(ctx context.Context, projectID, userID uint64) (model.ProjectMember, error)
}

type ItemStore interface {
	GetByID(ctx context.Context, id uint64) (model.Item, error)
}

// Guard bundles the stores needed to make per-request authorization
// decisions. One Guard is built at startup and shared by all routes.
type Guard struct {
	Users   UserStore
	Members MemberStore
	Items   ItemStore
}

// RequireProjectRole wraps a project- or item-scoped route with an
// allow/deny decision evaluated before the handler runs. It expects
// JWTAuth to have run first. The decision order:
//
//  1. the authenticated principal must still exist (404 otherwise);
//  2. the target project id is taken from the :project_id parameter, or
//     resolved through the :item_id parameter's item (400 when neither
//     is present — a caller-contract violation, not a denial);
//  3. the caller must hold a membership row for that project (403);
//  4. the membership role must grant the action, or — when allowOwn is
//     set and an item is in scope — grant the derived own-resource
//     action with the caller being the item's reporter or assignee.
//
// On success the resolved role, membership row, project id and (when an
// item route) the item itself are attached to the request context, so
// handlers never repeat the lookups.
func (g Guard) RequireProjectRole(action string, allowOwn bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(CtxUserID).(uint64)
			if !ok || userID == 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			// The token may outlive its user; a valid signature is not
			// proof the principal still exists.
			if _, err := g.Users.GetByID(ctx, userID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
			}

			projectID, item, errResp := g.resolveProject(ctx, c)
			if errResp != nil {
				return errResp
			}

			member, err := g.Members.Get(ctx, projectID, userID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return c.JSON(http.StatusForbidden, echo.Map{"error": "not a project member"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load membership failed"})
			}

			allowed := rbac.HasPermission(member.Role, action)
			if !allowed && allowOwn {
				// Own-resource fallback: a narrower permission that only
				// applies when the caller owns the item in question.
				own := rbac.OwnAction(action)
				if own != "" && item != nil && rbac.HasPermission(member.Role, own) {
					if item.ReporterID == userID || (item.AssigneeID != nil && *item.AssigneeID == userID) {
						allowed = true
					} else {
						return c.JSON(http.StatusForbidden, echo.Map{"error": "not reporter or assignee"})
					}
				}
			}
			if !allowed {
				log.Printf("rbac: role %q denied action %q on project %d", member.Role, action, projectID)
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": fmt.Sprintf("role %q cannot perform %q", member.Role, action),
				})
			}

			c.Set(CtxProjectID, projectID)
			c.Set(CtxProjectRole, member.Role)
			c.Set(CtxMember, member)
			if item != nil {
				c.Set(CtxItem, *item)
			}
			return next(c)
		}
	}
}

// resolveProject determines the target project id for the request: an
// explicit :project_id parameter wins, otherwise the :item_id parameter
// is followed to the referenced item's project. The third return value
// is a non-nil response when resolution failed and the request is done.
func (g Guard) resolveProject(ctx context.Context, c echo.Context) (uint64, *model.Item, error) {
	if raw := c.Param(ParamProjectID); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return 0, nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id"})
		}
		return id, nil, nil
	}
	if raw := c.Param(ParamItemID); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return 0, nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
		}
		item, err := g.Items.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, nil, c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
			}
			return 0, nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "load item failed"})
		}
		return item.ProjectID, &item, nil
	}
	return 0, nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "project id not found in request"})
}

// ItemFromContext returns the item resolved by the guard on item-scoped
// routes, sparing handlers a second lookup.
func ItemFromContext(c echo.Context) (model.Item, bool) {
	it, ok := c.Get(CtxItem).(model.Item)
	return it, ok
}

// MemberFromContext returns the membership row attached by the guard.
func MemberFromContext(c echo.Context) (model.ProjectMember, bool) {
	m, ok := c.Get(CtxMember).(model.ProjectMember)
	return m, ok
}
