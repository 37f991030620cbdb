package session

// Role is the mutually exclusive identity class of the current session.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleMember    Role = "member"
	RoleAdmin     Role = "admin"
)

func (r Role) String() string {
	if r == "" {
		return string(RoleAnonymous)
	}
	return string(r)
}
