package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/aryanaichra/project-tracker/internal/model"
	"github.com/aryanaichra/project-tracker/internal/rbac"
)

type fakeUsers map[uint64]model.User

func (f fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

type memberKey struct{ project, user uint64 }

type fakeMembers map[memberKey]model.ProjectMember

func (f fakeMembers) Get(_ context.Context, projectID, userID uint64) (model.ProjectMember, error) {
	m, ok := f[memberKey{projectID, userID}]
	if !ok {
		return model.ProjectMember{}, sql.ErrNoRows
	}
	return m, nil
}

type fakeItems map[uint64]model.Item

func (f fakeItems) GetByID(_ context.Context, id uint64) (model.Item, error) {
	it, ok := f[id]
	if !ok {
		return model.Item{}, sql.ErrNoRows
	}
	return it, nil
}

func uintPtr(v uint64) *uint64 { return &v }

// guardFixture wires a Guard over fakes: project 1 has an admin (10), a
// manager (11), two members (12, 13) and a viewer (14). Item 100 was
// reported by 13 and is assigned to 12; item 101 belongs to neither.
func guardFixture() Guard {
	users := fakeUsers{}
	for _, id := range []uint64{10, 11, 12, 13, 14} {
		users[id] = model.User{ID: id, LegacyRole: "admin"} // legacy role must never matter
	}
	members := fakeMembers{
		{1, 10}: {ProjectID: 1, UserID: 10, Role: rbac.RoleAdmin},
		{1, 11}: {ProjectID: 1, UserID: 11, Role: rbac.RoleManager},
		{1, 12}: {ProjectID: 1, UserID: 12, Role: rbac.RoleMember},
		{1, 13}: {ProjectID: 1, UserID: 13, Role: rbac.RoleMember},
		{1, 14}: {ProjectID: 1, UserID: 14, Role: rbac.RoleViewer},
	}
	items := fakeItems{
		100: {ID: 100, ProjectID: 1, ReporterID: 13, AssigneeID: uintPtr(12)},
		101: {ID: 101, ProjectID: 1, ReporterID: 10},
	}
	return Guard{Users: users, Members: members, Items: items}
}

// invoke runs the guard middleware for a synthetic request and returns
// the response recorder plus whether the wrapped handler ran.
func invoke(t *testing.T, g Guard, action string, allowOwn bool, userID uint64, paramNames, paramValues []string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames(paramNames...)
	c.SetParamValues(paramValues...)
	if userID != 0 {
		c.Set(CtxUserID, userID)
	}
	called := false
	handler := g.RequireProjectRole(action, allowOwn)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, called
}

func errBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body["error"]
}

func TestGuardDeniesNonMember(t *testing.T) {
	g := guardFixture()
	// User 99 exists but has no membership; the legacy global role on the
	// user row must not grant anything.
	g.Users.(fakeUsers)[99] = model.User{ID: 99, LegacyRole: "admin"}
	for _, action := range []string{rbac.ActionViewTasks, rbac.ActionCreateTask, rbac.ActionDeleteProject} {
		rec, called := invoke(t, g, action, false, 99, []string{ParamProjectID}, []string{"1"})
		if called || rec.Code != http.StatusForbidden {
			t.Errorf("action %s: code=%d called=%v, want 403 and no handler", action, rec.Code, called)
		}
		if got := errBody(t, rec); got != "not a project member" {
			t.Errorf("action %s: error %q", action, got)
		}
	}
}

func TestGuardAllowsByRole(t *testing.T) {
	g := guardFixture()
	rec, called := invoke(t, g, rbac.ActionCreateTask, false, 11, []string{ParamProjectID}, []string{"1"})
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("manager create_task: code=%d called=%v", rec.Code, called)
	}
	rec, called = invoke(t, g, rbac.ActionCreateTask, false, 14, []string{ParamProjectID}, []string{"1"})
	if called || rec.Code != http.StatusForbidden {
		t.Fatalf("viewer create_task: code=%d called=%v, want 403", rec.Code, called)
	}
}

func TestGuardOwnFallback(t *testing.T) {
	g := guardFixture()

	// Member 12 is the assignee of item 100: edit_any_task falls back to
	// edit_own_task and passes.
	rec, called := invoke(t, g, rbac.ActionEditAnyTask, true, 12, []string{ParamItemID}, []string{"100"})
	if !called || rec.Code != http.StatusOK {
		t.Errorf("assignee fallback: code=%d called=%v", rec.Code, called)
	}

	// Member 13 is the reporter of item 100: also allowed.
	rec, called = invoke(t, g, rbac.ActionEditAnyTask, true, 13, []string{ParamItemID}, []string{"100"})
	if !called || rec.Code != http.StatusOK {
		t.Errorf("reporter fallback: code=%d called=%v", rec.Code, called)
	}

	// Member 12 is neither reporter nor assignee of item 101: the
	// fallback applies but ownership fails, with its distinct message.
	rec, called = invoke(t, g, rbac.ActionEditAnyTask, true, 12, []string{ParamItemID}, []string{"101"})
	if called || rec.Code != http.StatusForbidden {
		t.Errorf("non-owner fallback: code=%d called=%v, want 403", rec.Code, called)
	}
	if got := errBody(t, rec); got != "not reporter or assignee" {
		t.Errorf("non-owner fallback error = %q", got)
	}

	// Viewer 14 holds neither the blanket nor the own permission.
	rec, called = invoke(t, g, rbac.ActionEditAnyTask, true, 14, []string{ParamItemID}, []string{"100"})
	if called || rec.Code != http.StatusForbidden {
		t.Errorf("viewer fallback: code=%d called=%v, want 403", rec.Code, called)
	}

	// Delete derives its own-action mechanically and behaves the same.
	rec, called = invoke(t, g, rbac.ActionDeleteAnyTask, true, 13, []string{ParamItemID}, []string{"100"})
	if !called || rec.Code != http.StatusOK {
		t.Errorf("reporter delete fallback: code=%d called=%v", rec.Code, called)
	}

	// Without item context the fallback cannot apply.
	rec, called = invoke(t, g, rbac.ActionEditAnyTask, true, 12, []string{ParamProjectID}, []string{"1"})
	if called || rec.Code != http.StatusForbidden {
		t.Errorf("no item context: code=%d called=%v, want 403", rec.Code, called)
	}
}

func TestGuardResolutionFailures(t *testing.T) {
	g := guardFixture()

	// Neither project_id nor item_id present: caller-contract violation.
	rec, called := invoke(t, g, rbac.ActionViewTasks, false, 12, nil, nil)
	if called || rec.Code != http.StatusBadRequest {
		t.Errorf("missing ids: code=%d called=%v, want 400", rec.Code, called)
	}

	// Referenced item does not exist.
	rec, called = invoke(t, g, rbac.ActionViewTasks, false, 12, []string{ParamItemID}, []string{"999"})
	if called || rec.Code != http.StatusNotFound {
		t.Errorf("missing item: code=%d called=%v, want 404", rec.Code, called)
	}

	// Garbage numeric parameter.
	rec, called = invoke(t, g, rbac.ActionViewTasks, false, 12, []string{ParamProjectID}, []string{"abc"})
	if called || rec.Code != http.StatusBadRequest {
		t.Errorf("bad project id: code=%d called=%v, want 400", rec.Code, called)
	}
}

func TestGuardPrincipalGone(t *testing.T) {
	g := guardFixture()
	rec, called := invoke(t, g, rbac.ActionViewTasks, false, 77, []string{ParamProjectID}, []string{"1"})
	if called || rec.Code != http.StatusNotFound {
		t.Errorf("vanished principal: code=%d called=%v, want 404", rec.Code, called)
	}
}

func TestGuardUnauthenticated(t *testing.T) {
	g := guardFixture()
	rec, called := invoke(t, g, rbac.ActionViewTasks, false, 0, []string{ParamProjectID}, []string{"1"})
	if called || rec.Code != http.StatusUnauthorized {
		t.Errorf("no identity: code=%d called=%v, want 401", rec.Code, called)
	}
}

func TestGuardAttachesContext(t *testing.T) {
	g := guardFixture()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames(ParamItemID)
	c.SetParamValues("100")
	c.Set(CtxUserID, uint64(11))

	handler := g.RequireProjectRole(rbac.ActionEditAnyTask, true)(func(c echo.Context) error {
		if got := c.Get(CtxProjectID).(uint64); got != 1 {
			t.Errorf("project id in context = %d, want 1", got)
		}
		if role := c.Get(CtxProjectRole).(string); role != rbac.RoleManager {
			t.Errorf("role in context = %q, want manager", role)
		}
		if m, ok := MemberFromContext(c); !ok || m.UserID != 11 {
			t.Errorf("member in context = %+v ok=%v", m, ok)
		}
		it, ok := ItemFromContext(c)
		if !ok || it.ID != 100 {
			t.Errorf("item in context = %+v ok=%v", it, ok)
		}
		return c.String(http.StatusOK, strconv.FormatUint(it.ID, 10))
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
}
