package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aryanaichra/project-tracker/internal/activity"
	"github.com/aryanaichra/project-tracker/internal/middleware"
	"github.com/aryanaichra/project-tracker/internal/model"
	"github.com/aryanaichra/project-tracker/internal/repository"
)

// ItemHandler bundles dependencies for item, comment and item-activity
// endpoints.
type ItemHandler struct {
	Items    *repository.ItemRepo
	Columns  *repository.ColumnRepo
	Comments *repository.CommentRepo
	Activity *repository.ActivityRepo
	Recorder *activity.Recorder
}

func NewItemHandler(i *repository.ItemRepo, cols *repository.ColumnRepo, cm *repository.CommentRepo, a *repository.ActivityRepo, rec *activity.Recorder) *ItemHandler {
	return &ItemHandler{Items: i, Columns: cols, Comments: cm, Activity: a, Recorder: rec}
}

// ----- DTOs -----

type createItemReq struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	ColumnID    uint64  `json:"column_id"`
	ParentID    *uint64 `json:"parent_id"`
	AssigneeID  *uint64 `json:"assignee_id"`
	DueDate     string  `json:"due_date"` // 2006-01-02
}

// patchItemReq mirrors activity.ItemPatch on the wire: absent fields are
// left unchanged, assignee_id 0 clears the assignee.
type patchItemReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	ColumnID    *uint64 `json:"column_id"`
	AssigneeID  *uint64 `json:"assignee_id"`
	DueDate     *string `json:"due_date"` // 2006-01-02
}

type itemResp struct {
	ID          uint64    `json:"id"`
	ProjectID   uint64    `json:"project_id"`
	ColumnID    uint64    `json:"column_id"`
	ParentID    *uint64   `json:"parent_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	DueDate     string    `json:"due_date,omitempty"`
	ReporterID  uint64    `json:"reporter_id"`
	AssigneeID  *uint64   `json:"assignee_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toItemResp(it model.Item) itemResp {
	resp := itemResp{
		ID:          it.ID,
		ProjectID:   it.ProjectID,
		ColumnID:    it.ColumnID,
		ParentID:    it.ParentID,
		Title:       it.Title,
		Description: it.Description,
		Type:        it.Type,
		Status:      it.Status,
		Priority:    it.Priority,
		ReporterID:  it.ReporterID,
		AssigneeID:  it.AssigneeID,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
	if it.DueDate != nil {
		resp.DueDate = it.DueDate.Format(activity.DateLayout)
	}
	return resp
}

// Item kinds and workflow values accepted on the wire.
var (
	itemTypes      = map[string]bool{"task": true, "bug": true, "story": true}
	itemStatuses   = map[string]bool{"todo": true, "in_progress": true, "in_review": true, "done": true}
	itemPriorities = map[string]bool{"low": true, "medium": true, "high": true, "critical": true}
)

// Create makes a new item in the project; the caller becomes reporter.
func (h *ItemHandler) Create(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	var req createItemReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return badRequest(c, "title required")
	}
	if req.Type == "" {
		req.Type = "task"
	}
	if req.Status == "" {
		req.Status = "todo"
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}
	if !itemTypes[req.Type] || !itemStatuses[req.Status] || !itemPriorities[req.Priority] {
		return badRequest(c, "unknown type, status or priority")
	}

	var due *time.Time
	if req.DueDate != "" {
		t, err := time.Parse(activity.DateLayout, req.DueDate)
		if err != nil {
			return badRequest(c, "due_date must be YYYY-MM-DD")
		}
		due = &t
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	projectID := guardProjectID(c)

	// Column must belong to this board; default to the first column.
	if req.ColumnID == 0 {
		cols, err := h.Columns.ListByProject(ctx, projectID)
		if err != nil || len(cols) == 0 {
			return internalError(c, "load columns failed")
		}
		req.ColumnID = cols[0].ID
	} else if _, err := h.Columns.Get(ctx, projectID, req.ColumnID); err != nil {
		if err == sql.ErrNoRows {
			return badRequest(c, "column does not belong to this project")
		}
		return internalError(c, "load column failed")
	}

	if req.ParentID != nil {
		parent, err := h.Items.GetByID(ctx, *req.ParentID)
		if err != nil || parent.ProjectID != projectID {
			return badRequest(c, "parent item not in this project")
		}
		if parent.ParentID != nil {
			return badRequest(c, "subtasks cannot be nested")
		}
	}

	it, err := h.Items.Create(ctx, model.Item{
		ProjectID:   projectID,
		ColumnID:    req.ColumnID,
		ParentID:    req.ParentID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     due,
		ReporterID:  uid,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return internalError(c, "create item failed")
	}

	h.Recorder.Record(ctx, it, uid, model.ActivityCreated, "created "+it.Type+" \""+it.Title+"\"")
	return c.JSON(http.StatusCreated, toItemResp(it))
}

// ListByProject returns the project's items.
func (h *ItemHandler) ListByProject(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Items.ListByProject(ctx, guardProjectID(c))
	if err != nil {
		return internalError(c, "list items failed")
	}
	out := make([]itemResp, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResp(it))
	}
	return c.JSON(http.StatusOK, out)
}

// ListMine returns the caller's items across all projects: everything
// they reported plus everything assigned to them.
func (h *ItemHandler) ListMine(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Items.ListForUser(ctx, uid)
	if err != nil {
		return internalError(c, "list items failed")
	}
	out := make([]itemResp, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResp(it))
	}
	return c.JSON(http.StatusOK, out)
}

// ListChildren returns the subtasks of the item the guard resolved.
func (h *ItemHandler) ListChildren(c echo.Context) error {
	it, ok := middleware.ItemFromContext(c)
	if !ok {
		return internalError(c, "item not resolved")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	children, err := h.Items.ListChildren(ctx, it.ID)
	if err != nil {
		return internalError(c, "list subtasks failed")
	}
	out := make([]itemResp, 0, len(children))
	for _, ch := range children {
		out = append(out, toItemResp(ch))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns the item the guard already resolved for this route.
func (h *ItemHandler) Get(c echo.Context) error {
	it, ok := middleware.ItemFromContext(c)
	if !ok {
		return internalError(c, "item not resolved")
	}
	return c.JSON(http.StatusOK, toItemResp(it))
}

// Update applies a whitelisted patch to the item and records the
// field-level diff. A patch that changes nothing writes no audit row.
func (h *ItemHandler) Update(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	it, ok := middleware.ItemFromContext(c)
	if !ok {
		return internalError(c, "item not resolved")
	}
	var req patchItemReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	if req.Type != nil && !itemTypes[*req.Type] {
		return badRequest(c, "unknown type")
	}
	if req.Status != nil && !itemStatuses[*req.Status] {
		return badRequest(c, "unknown status")
	}
	if req.Priority != nil && !itemPriorities[*req.Priority] {
		return badRequest(c, "unknown priority")
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return badRequest(c, "title cannot be empty")
	}

	patch := activity.ItemPatch{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		Priority:    req.Priority,
		ColumnID:    req.ColumnID,
		AssigneeID:  req.AssigneeID,
	}
	if req.DueDate != nil {
		t, err := time.Parse(activity.DateLayout, *req.DueDate)
		if err != nil {
			return badRequest(c, "due_date must be YYYY-MM-DD")
		}
		patch.DueDate = &t
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if patch.ColumnID != nil {
		if _, err := h.Columns.Get(ctx, it.ProjectID, *patch.ColumnID); err != nil {
			if err == sql.ErrNoRows {
				return badRequest(c, "column does not belong to this project")
			}
			return internalError(c, "load column failed")
		}
	}

	changes := activity.Diff(it, patch)
	patch.Apply(&it)
	if err := h.Items.Update(ctx, it); err != nil {
		return internalError(c, "update item failed")
	}
	if len(changes) > 0 {
		h.Recorder.Record(ctx, it, uid, model.ActivityUpdated, activity.Details(changes))
	}
	return c.JSON(http.StatusOK, toItemResp(it))
}

// Delete removes the item; the audit row outlives it.
func (h *ItemHandler) Delete(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	it, ok := middleware.ItemFromContext(c)
	if !ok {
		return internalError(c, "item not resolved")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Items.Delete(ctx, it.ID); err != nil {
		return internalError(c, "delete item failed")
	}
	h.Recorder.Record(ctx, it, uid, model.ActivityDeleted, "deleted "+it.Type+" \""+it.Title+"\"")
	return c.NoContent(http.StatusNoContent)
}

// ----- comments -----

type commentReq struct {
	Body string `json:"body"`
}

type commentResp struct {
	ID        uint64    `json:"id"`
	ItemID    uint64    `json:"item_id"`
	UserID    uint64    `json:"user_id"`
	Username  string    `json:"username"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// AddComment attaches a comment to the item.
func (h *ItemHandler) AddComment(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	it, ok := middleware.ItemFromContext(c)
	if !ok {
		return internalError(c, "item not resolved")
	}
	var req commentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Body) == "" {
		return badRequest(c, "body required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Comments.Add(ctx, it.ID, uid, req.Body)
	if err != nil {
		return internalError(c, "add comment failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "item_id": it.ID})
}

// ListComments returns the item's comments, oldest first.
func (h *ItemHandler) ListComments(c echo.Context) error {
	it, ok := middleware.ItemFromContext(c)
	if !ok {
		return internalError(c, "item not resolved")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	comments, err := h.Comments.ListByItem(ctx, it.ID)
	if err != nil {
		return internalError(c, "list comments failed")
	}
	out := make([]commentResp, 0, len(comments))
	for _, cm := range comments {
		out = append(out, commentResp{
			ID:        cm.ID,
			ItemID:    cm.ItemID,
			UserID:    cm.UserID,
			Username:  cm.Username,
			Body:      cm.Body,
			CreatedAt: cm.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// ----- activity -----

type activityResp struct {
	ID        uint64    `json:"id"`
	ItemID    uint64    `json:"item_id"`
	ProjectID uint64    `json:"project_id"`
	UserID    uint64    `json:"user_id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

func toActivityResp(rows []repository.ActivityWithUser) []activityResp {
	out := make([]activityResp, 0, len(rows))
	for _, a := range rows {
		out = append(out, activityResp{
			ID:        a.ID,
			ItemID:    a.ItemID,
			ProjectID: a.ProjectID,
			UserID:    a.UserID,
			Username:  a.Username,
			Action:    a.Action,
			Details:   a.Details,
			CreatedAt: a.CreatedAt,
		})
	}
	return out
}

// ListActivity returns the item's audit trail, oldest first.
func (h *ItemHandler) ListActivity(c echo.Context) error {
	it, ok := middleware.ItemFromContext(c)
	if !ok {
		return internalError(c, "item not resolved")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Activity.ListByItem(ctx, it.ID)
	if err != nil {
		return internalError(c, "list activity failed")
	}
	return c.JSON(http.StatusOK, toActivityResp(rows))
}
