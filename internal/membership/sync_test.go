package membership

import (
	"context"
	"database/sql"
	"testing"

	"github.com/aryanaichra/project-tracker/internal/model"
	"github.com/aryanaichra/project-tracker/internal/rbac"
)

// fakeStore is an in-memory Store mirroring the three tables the syncer
// touches: team_members, project_teams and project_members.
type fakeStore struct {
	teamMembers  map[uint64][]uint64 // teamID -> userIDs
	projectTeams map[uint64][]uint64 // projectID -> teamIDs
	members      map[[2]uint64]model.ProjectMember
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		teamMembers:  map[uint64][]uint64{},
		projectTeams: map[uint64][]uint64{},
		members:      map[[2]uint64]model.ProjectMember{},
	}
}

func (f *fakeStore) TeamMemberIDs(_ context.Context, teamID uint64) ([]uint64, error) {
	return f.teamMembers[teamID], nil
}

func (f *fakeStore) TeamIDsForProject(_ context.Context, projectID uint64) ([]uint64, error) {
	return f.projectTeams[projectID], nil
}

func (f *fakeStore) ProjectIDsForTeam(_ context.Context, teamID uint64) ([]uint64, error) {
	var out []uint64
	for pid, teams := range f.projectTeams {
		for _, tid := range teams {
			if tid == teamID {
				out = append(out, pid)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) IsTeamMember(_ context.Context, teamID, userID uint64) (bool, error) {
	for _, u := range f.teamMembers[teamID] {
		if u == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) GetMember(_ context.Context, projectID, userID uint64) (model.ProjectMember, error) {
	m, ok := f.members[[2]uint64{projectID, userID}]
	if !ok {
		return model.ProjectMember{}, sql.ErrNoRows
	}
	return m, nil
}

func (f *fakeStore) UpsertTeamMember(_ context.Context, projectID, userID uint64, role string) error {
	key := [2]uint64{projectID, userID}
	if _, ok := f.members[key]; ok {
		return nil // existing rows are never touched
	}
	f.members[key] = model.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		Source:    model.MemberSourceTeam,
	}
	return nil
}

func (f *fakeStore) DeleteMember(_ context.Context, projectID, userID uint64) error {
	delete(f.members, [2]uint64{projectID, userID})
	return nil
}

func (f *fakeStore) hasMember(projectID, userID uint64) bool {
	_, ok := f.members[[2]uint64{projectID, userID}]
	return ok
}

// unlink removes a project<->team association row, as the handler does
// before invoking ProjectDissociated.
func (f *fakeStore) unlink(projectID, teamID uint64) {
	teams := f.projectTeams[projectID]
	out := teams[:0]
	for _, tid := range teams {
		if tid != teamID {
			out = append(out, tid)
		}
	}
	f.projectTeams[projectID] = out
}

func TestAssociateBackfillsAllMembers(t *testing.T) {
	st := newFakeStore()
	st.teamMembers[1] = []uint64{10, 11, 12}
	st.projectTeams[100] = []uint64{1}
	s := &Syncer{Store: st}

	if err := s.ProjectAssociated(context.Background(), 1, 100); err != nil {
		t.Fatal(err)
	}
	for _, uid := range []uint64{10, 11, 12} {
		m, err := st.GetMember(context.Background(), 100, uid)
		if err != nil {
			t.Fatalf("user %d not backfilled", uid)
		}
		if m.Role != rbac.RoleMember || m.Source != model.MemberSourceTeam {
			t.Errorf("user %d row = %+v", uid, m)
		}
	}

	// Re-running converges on the same set: idempotent, no duplicates,
	// no role churn.
	if err := s.ProjectAssociated(context.Background(), 1, 100); err != nil {
		t.Fatal(err)
	}
	if len(st.members) != 3 {
		t.Errorf("rerun produced %d rows, want 3", len(st.members))
	}
}

func TestBackfillNeverDowngradesExistingRole(t *testing.T) {
	st := newFakeStore()
	st.teamMembers[1] = []uint64{10}
	st.projectTeams[100] = []uint64{1}
	st.members[[2]uint64{100, 10}] = model.ProjectMember{
		ProjectID: 100, UserID: 10, Role: rbac.RoleAdmin, Source: model.MemberSourceDirect,
	}
	s := &Syncer{Store: st}

	if err := s.ProjectAssociated(context.Background(), 1, 100); err != nil {
		t.Fatal(err)
	}
	m, _ := st.GetMember(context.Background(), 100, 10)
	if m.Role != rbac.RoleAdmin || m.Source != model.MemberSourceDirect {
		t.Errorf("existing admin row changed by backfill: %+v", m)
	}
}

func TestUnionOfPaths(t *testing.T) {
	// User 10 is in teams 1 and 2, both associated with project 100.
	st := newFakeStore()
	st.teamMembers[1] = []uint64{10}
	st.teamMembers[2] = []uint64{10}
	st.projectTeams[100] = []uint64{1, 2}
	s := &Syncer{Store: st}
	ctx := context.Background()

	if err := s.ProjectAssociated(ctx, 1, 100); err != nil {
		t.Fatal(err)
	}
	if err := s.ProjectAssociated(ctx, 2, 100); err != nil {
		t.Fatal(err)
	}
	if !st.hasMember(100, 10) {
		t.Fatal("user 10 not a member after both associations")
	}

	// Unlink team 1: team 2 still grants access.
	st.unlink(100, 1)
	if err := s.ProjectDissociated(ctx, 1, 100); err != nil {
		t.Fatal(err)
	}
	if !st.hasMember(100, 10) {
		t.Error("user 10 lost access while team 2 is still linked")
	}

	// Unlink team 2 as well: no path remains.
	st.unlink(100, 2)
	if err := s.ProjectDissociated(ctx, 2, 100); err != nil {
		t.Fatal(err)
	}
	if st.hasMember(100, 10) {
		t.Error("user 10 kept access with no remaining path")
	}
}

func TestDissociateKeepsDirectMembers(t *testing.T) {
	st := newFakeStore()
	st.teamMembers[1] = []uint64{10}
	st.projectTeams[100] = []uint64{1}
	// Pre-existing direct membership, e.g. added explicitly before the
	// team was ever associated.
	st.members[[2]uint64{100, 10}] = model.ProjectMember{
		ProjectID: 100, UserID: 10, Role: rbac.RoleManager, Source: model.MemberSourceDirect,
	}
	s := &Syncer{Store: st}
	ctx := context.Background()

	st.unlink(100, 1)
	if err := s.ProjectDissociated(ctx, 1, 100); err != nil {
		t.Fatal(err)
	}
	if !st.hasMember(100, 10) {
		t.Error("direct member removed by team dissociation")
	}
}

func TestUserJoinAndLeaveTeam(t *testing.T) {
	st := newFakeStore()
	st.teamMembers[1] = []uint64{}
	st.projectTeams[100] = []uint64{1}
	st.projectTeams[200] = []uint64{1}
	s := &Syncer{Store: st}
	ctx := context.Background()

	// Join: user gains membership in every associated project.
	st.teamMembers[1] = []uint64{10}
	if err := s.UserJoinedTeam(ctx, 1, 10); err != nil {
		t.Fatal(err)
	}
	if !st.hasMember(100, 10) || !st.hasMember(200, 10) {
		t.Fatal("join did not backfill both projects")
	}

	// Leave: membership rows retract since no other path exists.
	st.teamMembers[1] = []uint64{}
	if err := s.UserLeftTeam(ctx, 1, 10); err != nil {
		t.Fatal(err)
	}
	if st.hasMember(100, 10) || st.hasMember(200, 10) {
		t.Error("leave did not retract team-sourced memberships")
	}
}

func TestRetractIdempotent(t *testing.T) {
	st := newFakeStore()
	st.teamMembers[1] = []uint64{10}
	s := &Syncer{Store: st}
	// No membership rows at all: retraction of an absent row is a no-op,
	// so a partially-failed run can be replayed safely.
	if err := s.ProjectDissociated(context.Background(), 1, 100); err != nil {
		t.Fatalf("retract on empty store: %v", err)
	}
}
