// Package api provides the HTTP server behind "cup serve".
// It routes the report, refresh and metrics endpoints over a private ServeMux and protects
// the refresh endpoint with an optional bearer token.
//
// Key components:
//   - API: Manages server setup and endpoint registration.
//   - RequireToken: Wraps HTTP handlers with token validation.
//
// Usage example:
//
//	server := api.New("secure-token", ":8000")
//	server.RegisterFunc("/api/v3/refresh", server.RequireToken(refreshHandler.Handle))
//	if err := server.Start(ctx, true); err != nil {
//	    logrus.WithError(err).Error("API start failed")
//	}
package api
