package repository

// MembershipStore joins the team and member repositories into the single
// persistence view the membership syncer operates through. The embedded
// method sets are disjoint so the union is unambiguous.
type MembershipStore struct {
	*TeamRepo
	*MemberRepo
}

func NewMembershipStore(t *TeamRepo, m *MemberRepo) MembershipStore {
	return MembershipStore{TeamRepo: t, MemberRepo: m}
}
