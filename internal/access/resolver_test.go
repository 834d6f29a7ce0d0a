package access

import (
	"context"
	"testing"
)

type fakeStore struct {
	ownerTeam   uint64
	hasOwner    bool
	teams       []uint64
	memberships map[uint64][]uint64 // teamID -> userIDs
}

func (f *fakeStore) ProjectOwnerTeam(_ context.Context, _ uint64) (uint64, bool, error) {
	return f.ownerTeam, f.hasOwner, nil
}

func (f *fakeStore) ProjectTeamIDs(_ context.Context, _ uint64) ([]uint64, error) {
	return f.teams, nil
}

func (f *fakeStore) IsTeamMember(_ context.Context, teamID, userID uint64) (bool, error) {
	for _, u := range f.memberships[teamID] {
		if u == userID {
			return true, nil
		}
	}
	return false, nil
}

func TestResolve(t *testing.T) {
	// Project owned by team 1, also associated with teams 2 and 3.
	st := &fakeStore{
		ownerTeam: 1,
		hasOwner:  true,
		teams:     []uint64{1, 2, 3},
		memberships: map[uint64][]uint64{
			1: {10},
			2: {20},
			3: {30, 10},
		},
	}
	cases := []struct {
		name   string
		userID uint64
		want   Level
	}{
		{"owning team member", 10, LevelMember}, // owner team wins over team 3
		{"other associated team", 20, LevelViewer},
		{"third team", 30, LevelViewer},
		{"no team path", 99, LevelNoAccess},
	}
	for _, tc := range cases {
		got, err := Resolve(context.Background(), st, tc.userID, 1)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: level = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestResolveNoOwnerTeam(t *testing.T) {
	st := &fakeStore{
		hasOwner: false,
		teams:    []uint64{2},
		memberships: map[uint64][]uint64{
			2: {20},
		},
	}
	got, err := Resolve(context.Background(), st, 20, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got != LevelViewer {
		t.Errorf("without owner team, associated member = %q, want viewer", got)
	}
	got, _ = Resolve(context.Background(), st, 99, 1)
	if got != LevelNoAccess {
		t.Errorf("outsider = %q, want no_access", got)
	}
}
