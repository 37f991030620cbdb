package session

// Persisted key names. Member and admin bearer tokens live in separate slots; only
// one role's keys are populated at a time.
const (
	KeyIsAuthenticated = "isAuthenticated"
	KeyRememberMe      = "rememberMe"

	KeyMemberToken   = "token"
	KeyMemberRefresh = "refresh"
	KeyMemberUser    = "user"

	KeyIsAdmin      = "is_admin"
	KeyAdminData    = "admin_data"
	KeyAdminToken   = "admin_token"
	KeyAdminRefresh = "admin_refresh"
)

var (
	memberKeys  = []string{KeyMemberToken, KeyMemberRefresh, KeyMemberUser}
	adminKeys   = []string{KeyIsAdmin, KeyAdminData, KeyAdminToken, KeyAdminRefresh}
	genericKeys = []string{KeyIsAuthenticated, KeyRememberMe}
)

// AllKeys returns every key either role may persist.
func AllKeys() []string {
	keys := make([]string, 0, len(memberKeys)+len(adminKeys)+len(genericKeys))
	keys = append(keys, genericKeys...)
	keys = append(keys, memberKeys...)
	keys = append(keys, adminKeys...)
	return keys
}

const (
	flagTrue  = "true"
	flagFalse = "false"
)

func boolFlag(b bool) string {
	if b {
		return flagTrue
	}
	return flagFalse
}
