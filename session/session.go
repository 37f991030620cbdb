package session

// Session is the in-memory authentication state.
// Role is RoleAnonymous exactly when BearerToken is empty and Identity is nil.
type Session struct {
	Role         Role
	BearerToken  string
	RefreshToken string
	Identity     Identity
	RememberMe   bool // advisory only, persistence is the same either way
}

// Anonymous returns the empty session.
func Anonymous() Session {
	return Session{Role: RoleAnonymous}
}

func (s Session) IsAnonymous() bool {
	return s.Role == RoleAnonymous || s.Role == ""
}

// Member returns the member identity, or nil when the session is not a member session.
func (s Session) Member() *MemberIdentity {
	m, _ := s.Identity.(*MemberIdentity)
	return m
}

// Admin returns the admin identity, or nil when the session is not an admin session.
func (s Session) Admin() *AdminIdentity {
	a, _ := s.Identity.(*AdminIdentity)
	return a
}

func (s Session) clone() Session {
	s.Identity = cloneIdentity(s.Identity)
	return s
}
