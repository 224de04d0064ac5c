package handlers

import (
	"net/http"
)

// Routes groups the backend handlers for registration on a mux
type Routes struct {
	Middleware *Middleware
	Rest       *RestHandler
	Storage    *StorageHandler
	Functions  *FunctionsHandler
	Realtime   *RealtimeHandler
	Health     *HealthHandler

	// PublicRoot is the local photo directory. Empty when photos live in S3.
	PublicRoot string
}

// Register adds every backend route to mux
func (rt *Routes) Register(mux *http.ServeMux) {
	mw := rt.Middleware

	// Health check
	if rt.Health != nil {
		mux.HandleFunc("GET /healthz", rt.Health.Check)
	}

	// Tables
	mux.HandleFunc("GET /rest/v1/{table}", mw.RequireAuth(rt.Rest.List))
	mux.HandleFunc("POST /rest/v1/{table}", mw.RequireAuth(rt.Rest.Create))
	mux.HandleFunc("PATCH /rest/v1/{table}/{id}", mw.RequireAuth(rt.Rest.Update))

	// Object storage
	mux.HandleFunc("POST /storage/v1/object/{bucket}/{path...}", mw.RequireAuth(rt.Storage.Upload))
	if rt.PublicRoot != "" {
		mux.Handle("GET /storage/v1/object/public/photos/", PublicFiles(rt.PublicRoot))
	}

	// Functions
	mux.HandleFunc("POST /functions/v1/{name}", mw.RequireAuth(mw.RateLimit(rt.Functions.Invoke)))

	// Realtime
	mux.HandleFunc("GET /realtime/v1/websocket", mw.RequireAuth(rt.Realtime.Serve))
}

// Handler returns a mux with every route registered, wrapped in request logging
func (rt *Routes) Handler() http.Handler {
	mux := http.NewServeMux()
	rt.Register(mux)
	return Logging(mux)
}
