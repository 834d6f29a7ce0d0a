package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aryanaichra/project-tracker/internal/membership"
	"github.com/aryanaichra/project-tracker/internal/model"
	"github.com/aryanaichra/project-tracker/internal/repository"
)

// TeamHandler bundles dependencies for team endpoints. Every mutation
// that changes who is on a team or which projects a team serves goes
// through the membership syncer so project membership rows follow.
type TeamHandler struct {
	Teams *repository.TeamRepo
	Users *repository.UserRepo
	Sync  *membership.Syncer
}

func NewTeamHandler(t *repository.TeamRepo, u *repository.UserRepo, s *membership.Syncer) *TeamHandler {
	return &TeamHandler{Teams: t, Users: u, Sync: s}
}

type teamReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type teamMemberReq struct {
	UserID uint64 `json:"user_id"`
}

type teamProjectReq struct {
	ProjectID uint64 `json:"project_id"`
}

type teamMemberResp struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type teamResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AdminID     uint64    `json:"admin_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTeamResp(t model.Team) teamResp {
	return teamResp{ID: t.ID, Name: t.Name, Description: t.Description, AdminID: t.AdminID, CreatedAt: t.CreatedAt}
}

// loadTeam fetches the team from the :team_id parameter; a nil *model.Team
// return means the error response was already written.
func (h *TeamHandler) loadTeam(c echo.Context) (*model.Team, error) {
	id := paramUint(c, "team_id")
	if id == 0 {
		return nil, badRequest(c, "invalid team id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Teams.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "team not found"})
		}
		return nil, internalError(c, "load team failed")
	}
	return &t, nil
}

// requireTeamAdmin writes a 403 and returns false unless the caller
// administers the team.
func requireTeamAdmin(c echo.Context, t *model.Team, uid uint64) bool {
	if t.AdminID != uid {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "team admin only"})
		return false
	}
	return true
}

// Create makes a new team with the caller as admin and first member.
func (h *TeamHandler) Create(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	var req teamReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return badRequest(c, "name required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Teams.Create(ctx, req.Name, req.Description, uid)
	if err != nil {
		return internalError(c, "create team failed")
	}
	return c.JSON(http.StatusCreated, toTeamResp(t))
}

// List returns the teams the caller belongs to.
func (h *TeamHandler) List(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	teams, err := h.Teams.ListForUser(ctx, uid)
	if err != nil {
		return internalError(c, "list teams failed")
	}
	out := make([]teamResp, 0, len(teams))
	for _, t := range teams {
		out = append(out, toTeamResp(t))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one team with its members.
func (h *TeamHandler) Get(c echo.Context) error {
	t, err := h.loadTeam(c)
	if t == nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	members, err := h.Teams.ListMembers(ctx, t.ID)
	if err != nil {
		return internalError(c, "list team members failed")
	}
	out := make([]teamMemberResp, 0, len(members))
	for _, m := range members {
		out = append(out, teamMemberResp{UserID: m.UserID, Username: m.Username, Email: m.Email})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"team":    toTeamResp(*t),
		"members": out,
	})
}

// Delete removes a team. Each project association is unwound through the
// syncer first so fanned-out memberships are retracted before the team
// rows disappear.
func (h *TeamHandler) Delete(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	t, err := h.loadTeam(c)
	if t == nil {
		return err
	}
	if !requireTeamAdmin(c, t, uid) {
		return nil
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	projects, err := h.Teams.ProjectIDsForTeam(ctx, t.ID)
	if err != nil {
		return internalError(c, "list team projects failed")
	}
	for _, pid := range projects {
		if err := h.Teams.Dissociate(ctx, pid, t.ID); err != nil && err != sql.ErrNoRows {
			return internalError(c, "dissociate failed")
		}
		if err := h.Sync.ProjectDissociated(ctx, t.ID, pid); err != nil {
			return internalError(c, "membership sync failed")
		}
	}
	if err := h.Teams.Delete(ctx, t.ID); err != nil {
		return internalError(c, "delete team failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// AddMember enrolls a user and fans their membership out to every
// project the team serves.
func (h *TeamHandler) AddMember(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	t, err := h.loadTeam(c)
	if t == nil {
		return err
	}
	if !requireTeamAdmin(c, t, uid) {
		return nil
	}
	var req teamMemberReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return badRequest(c, "user_id required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, req.UserID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return internalError(c, "load user failed")
	}
	if err := h.Teams.AddMember(ctx, t.ID, req.UserID); err != nil {
		if err == repository.ErrDuplicateMember {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already a team member"})
		}
		return internalError(c, "add team member failed")
	}
	if err := h.Sync.UserJoinedTeam(ctx, t.ID, req.UserID); err != nil {
		return internalError(c, "membership sync failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{"team_id": t.ID, "user_id": req.UserID})
}

// RemoveMember drops a user from the team, then retracts project
// memberships they held only through this team. The team admin cannot
// be removed.
func (h *TeamHandler) RemoveMember(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	t, err := h.loadTeam(c)
	if t == nil {
		return err
	}
	targetID := paramUint(c, "user_id")
	if targetID == 0 {
		return badRequest(c, "invalid user id")
	}
	// Members may leave on their own; removing anyone else takes admin.
	if targetID != uid && !requireTeamAdmin(c, t, uid) {
		return nil
	}
	if targetID == t.AdminID {
		return badRequest(c, "team admin cannot be removed")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Teams.RemoveMember(ctx, t.ID, targetID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not a team member"})
		}
		return internalError(c, "remove team member failed")
	}
	// The row is gone, so the user's remaining teams define which
	// project memberships survive.
	if err := h.Sync.UserLeftTeam(ctx, t.ID, targetID); err != nil {
		return internalError(c, "membership sync failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// AssociateProject links the team to a project and backfills membership
// rows for every current team member.
func (h *TeamHandler) AssociateProject(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	t, err := h.loadTeam(c)
	if t == nil {
		return err
	}
	if !requireTeamAdmin(c, t, uid) {
		return nil
	}
	var req teamProjectReq
	if err := c.Bind(&req); err != nil || req.ProjectID == 0 {
		return badRequest(c, "project_id required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Teams.Associate(ctx, req.ProjectID, t.ID); err != nil {
		if err == repository.ErrDuplicateAssociation {
			return c.JSON(http.StatusConflict, echo.Map{"error": "association already exists"})
		}
		return internalError(c, "associate failed")
	}
	if err := h.Sync.ProjectAssociated(ctx, t.ID, req.ProjectID); err != nil {
		return internalError(c, "membership sync failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{"team_id": t.ID, "project_id": req.ProjectID})
}

// DissociateProject unlinks the team from a project and retracts
// memberships that have no surviving path.
func (h *TeamHandler) DissociateProject(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	t, err := h.loadTeam(c)
	if t == nil {
		return err
	}
	if !requireTeamAdmin(c, t, uid) {
		return nil
	}
	projectID := paramUint(c, "project_id")
	if projectID == 0 {
		return badRequest(c, "invalid project id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Teams.Dissociate(ctx, projectID, t.ID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "association not found"})
		}
		return internalError(c, "dissociate failed")
	}
	// Retraction runs after the association row is gone so the remaining
	// associations define the surviving paths.
	if err := h.Sync.ProjectDissociated(ctx, t.ID, projectID); err != nil {
		return internalError(c, "membership sync failed")
	}
	return c.NoContent(http.StatusNoContent)
}
