// Package access derives a coarse, team-based access tier for a user
// against a project. The tier feeds presentation decisions (which teams
// to display, report annotations); permission gating always goes through
// the membership-role guard instead, never through this package.
package access

import "context"

// Level is the coarse classification of a user's team relationship to a
// project.
type Level string

const (
	LevelMember   Level = "member"    // user belongs to the project's owning team
	LevelViewer   Level = "viewer"    // user belongs to another associated team
	LevelNoAccess Level = "no_access" // no team path to the project
)

// Store is the read view the resolver needs. The team repository
// satisfies it; tests substitute fakes.
type Store interface {
	// ProjectOwnerTeam returns the project's designated owning team id,
	// with ok=false when the project has none.
	ProjectOwnerTeam(ctx context.Context, projectID uint64) (uint64, bool, error)
	// ProjectTeamIDs returns all team ids associated with the project.
	ProjectTeamIDs(ctx context.Context, projectID uint64) ([]uint64, error)
	// IsTeamMember reports whether the user belongs to the team.
	IsTeamMember(ctx context.Context, teamID, userID uint64) (bool, error)
}

// Resolve classifies the user's team relationship to the project:
// member when in the owning team, viewer when in any other associated
// team, no_access otherwise.
func Resolve(ctx context.Context, st Store, userID, projectID uint64) (Level, error) {
	ownerTeam, hasOwner, err := st.ProjectOwnerTeam(ctx, projectID)
	if err != nil {
		return LevelNoAccess, err
	}
	if hasOwner {
		in, err := st.IsTeamMember(ctx, ownerTeam, userID)
		if err != nil {
			return LevelNoAccess, err
		}
		if in {
			return LevelMember, nil
		}
	}
	teamIDs, err := st.ProjectTeamIDs(ctx, projectID)
	if err != nil {
		return LevelNoAccess, err
	}
	for _, id := range teamIDs {
		if hasOwner && id == ownerTeam {
			continue
		}
		in, err := st.IsTeamMember(ctx, id, userID)
		if err != nil {
			return LevelNoAccess, err
		}
		if in {
			return LevelViewer, nil
		}
	}
	return LevelNoAccess, nil
}
