package server

// Route path constants
const (
	// Token routes
	RouteSignIn  = "/api/token/"
	RouteRefresh = "/api/token/refresh/"

	// Resource routes
	RouteMe      = "/api/me/"
	RouteItems   = "/api/items/"
	RouteItem    = "/api/items/{id}/"
	RouteUploads = "/api/uploads/"
)
