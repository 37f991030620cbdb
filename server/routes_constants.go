package server

// Route path constants
const (
	// Auth routes
	RouteMemberLogin  = "/users/login/"
	RouteMemberLogout = "/users/logout/"
	RouteAdminLogin   = "/admin/login/"
	RouteAdminLogout  = "/admin/logout/"

	// Feature routes
	RouteForumCategories = "/forums/categories/"
	RouteNews            = "/news/"

	// Operational routes
	RouteHealth  = "/health"
	RouteMetrics = "/metrics"
)
