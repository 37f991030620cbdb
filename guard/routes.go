package guard

// Navigation targets used by the guards, the login flows and sign-out.
const (
	RouteMemberLogin    = "/login"
	RouteAdminLogin     = "/admin/login"
	RouteMemberPortal   = "/portal"
	RouteAdminDashboard = "/admin/dashboard"
)
