package domain

// AuthContext carries the acting user's identity and capability flags into
// every service call. It is built once by the auth middleware; services never
// read identity from ambient state.
type AuthContext struct {
	UserId       UserId
	IsSuperAdmin bool
	ClubPerms    map[int64]bool // clubId -> may moderate forums of that club
	BoardPerms   map[int64]bool // boardId -> may moderate forums of that board
}

// CanModerate reports whether the user may moderate the given forum: super
// admins always, otherwise via the owning club's or board's capability flag.
func (a *AuthContext) CanModerate(f *Forum) bool {
	if a.IsSuperAdmin {
		return true
	}
	if f.ClubId != nil && a.ClubPerms[*f.ClubId] {
		return true
	}
	if f.BoardId != nil && a.BoardPerms[*f.BoardId] {
		return true
	}
	return false
}
