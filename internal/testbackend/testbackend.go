// Package testbackend runs a complete backend on an httptest server for
// client package tests.
package testbackend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"robinhoodarmy/internal/database"
	"robinhoodarmy/internal/handlers"
	"robinhoodarmy/internal/models"
	"robinhoodarmy/internal/realtime"
	"robinhoodarmy/internal/service"
	"robinhoodarmy/internal/storage"
	"robinhoodarmy/internal/testutil"
)

// Generator is a scripted content generator
type Generator struct {
	mu      sync.Mutex
	Text    string
	Err     error
	Prompts []string
}

// Generate records the prompt and returns the scripted reply
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Prompts = append(g.Prompts, prompt)
	return g.Text, g.Err
}

// Calls returns the number of generation requests seen
func (g *Generator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Prompts)
}

// Backend is a running backend with a migrated SQLite database
type Backend struct {
	URL       string
	DB        *database.DB
	Hub       *realtime.Hub
	Auth      *service.AuthService
	Generator *Generator
	Server    *httptest.Server
}

// New starts a backend that is shut down when the test finishes
func New(t *testing.T) *Backend {
	t.Helper()

	db := testutil.NewDB(t)
	hub := realtime.NewHub(64)
	auth := service.NewAuthService("test-secret", time.Hour)
	generator := &Generator{Text: "Generated lesson"}

	email, err := service.NewEmailService("ap-south-1", "", "Robinhood Army", false)
	if err != nil {
		t.Fatalf("NewEmailService() error = %v", err)
	}

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	root := t.TempDir()
	local, err := storage.NewLocalStorage(root, server.URL+"/storage/v1/object/public/"+models.PhotosBucket)
	if err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}

	routes := &handlers.Routes{
		Middleware: handlers.NewMiddleware(auth, nil),
		Rest:       handlers.NewRestHandler(service.NewTableService(db, hub)),
		Storage:    handlers.NewStorageHandler(local, 1024*1024),
		Functions: handlers.NewFunctionsHandler(
			service.NewProcedureService(db, hub),
			service.NewContentService(db, generator, hub, false),
			email,
			false,
		),
		Realtime:   handlers.NewRealtimeHandler(hub),
		Health:     handlers.NewHealthHandler(db),
		PublicRoot: root,
	}
	routes.Register(mux)

	return &Backend{
		URL:       server.URL,
		DB:        db,
		Hub:       hub,
		Auth:      auth,
		Generator: generator,
		Server:    server,
	}
}

// Token issues an access token for userID
func (b *Backend) Token(t *testing.T, userID string) string {
	return b.TokenWithRole(t, userID, "")
}

// TokenWithRole issues an access token for userID carrying role
func (b *Backend) TokenWithRole(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := b.Auth.IssueTokenWithRole(userID, userID+"@example.com", role)
	if err != nil {
		t.Fatalf("IssueTokenWithRole() error = %v", err)
	}
	return token
}
