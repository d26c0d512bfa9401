package server

import "net/http"

func (s *Server) initRoutes() {
	// Token endpoints are public
	s.RegisterRouteHandler("POST "+RouteSignIn+"{$}", ChainMiddleware(s.SignInHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRefresh+"{$}", ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))

	// Everything else needs a valid access token
	s.RegisterRouteHandler("GET "+RouteMe+"{$}", ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteItems+"{$}", ChainMiddleware(s.ListItemsHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteItems+"{$}", ChainMiddleware(s.CreateItemHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteItem+"{$}", ChainMiddleware(s.GetItemHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("PATCH "+RouteItem+"{$}", ChainMiddleware(s.UpdateItemHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("DELETE "+RouteItem+"{$}", ChainMiddleware(s.DeleteItemHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteUploads+"{$}", ChainMiddleware(s.UploadHandler(), s.APIMiddleware(s.RequireAuth())...))

	s.RegisterRouteHandler("/", ChainMiddleware(s.NotFoundHandler(), s.APIMiddleware()...))
}

// NotFoundHandler answers unknown routes with a JSON 404
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found.", "")
	}
}
