package main

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"testdash/internal/config"
	"testdash/internal/handlers"
	"testdash/internal/models"
	"testdash/internal/security"
	"testdash/internal/service"
	"testdash/internal/session"
	"testdash/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Open the local state store
	db, err := store.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open state store: %v", err)
	}
	defer db.Close()

	if err := db.Bootstrap(); err != nil {
		log.Fatalf("Failed to bootstrap state store: %v", err)
	}

	log.Printf("State store ready (type: %s)", cfg.DatabaseType)

	// Load the token encryption key
	keeper, err := security.LoadKeeper(cfg.KeyPath)
	if err != nil {
		log.Fatalf("Failed to load encryption key: %v", err)
	}

	// Load templates
	templates, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	// Initialize the session manager and its backend client
	credStore := store.NewCredentialStore(db, keeper)
	sessionManager := session.NewManager(cfg.BackendURL, cfg.RequestTimeout, cfg.TokenValidity, credStore)

	journal := store.NewAttemptJournal(db)
	testService := service.NewTestService(sessionManager.Backend(), journal)
	attemptService := service.NewAttemptService(sessionManager.Backend(), journal)

	// Initialize handlers
	middleware := handlers.NewMiddleware(sessionManager, templates)
	authHandler := handlers.NewAuthHandler(sessionManager, templates)
	dashboardHandler := handlers.NewDashboardHandler(testService, sessionManager, templates)
	teacherHandler := handlers.NewTeacherHandler(testService, sessionManager, templates)
	attemptHandler := handlers.NewAttemptHandler(attemptService, sessionManager, templates)

	manageTests := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)

	// Setup routes
	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))

	// Public routes
	mux.HandleFunc("GET /login", authHandler.ShowLogin)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("GET /register", authHandler.ShowRegister)
	mux.HandleFunc("POST /register", authHandler.Register)
	mux.HandleFunc("POST /logout", authHandler.Logout)

	// Student routes
	mux.HandleFunc("GET /{$}", middleware.RequireAuth(dashboardHandler.Dashboard))
	mux.HandleFunc("POST /tests/{id}/start", middleware.RequireAuth(attemptHandler.Start))
	mux.HandleFunc("GET /attempt", middleware.RequireAuth(attemptHandler.Show))
	mux.HandleFunc("POST /attempt/answer", middleware.RequireAuth(attemptHandler.SelectAnswer))
	mux.HandleFunc("POST /attempt/next", middleware.RequireAuth(attemptHandler.Next))
	mux.HandleFunc("POST /attempt/previous", middleware.RequireAuth(attemptHandler.Previous))
	mux.HandleFunc("POST /attempt/submit", middleware.RequireAuth(attemptHandler.Submit))
	mux.HandleFunc("POST /attempt/exit", middleware.RequireAuth(attemptHandler.Exit))
	mux.HandleFunc("GET /attempt/time", middleware.RequireAuth(attemptHandler.RemainingTime))

	// Teacher routes
	mux.HandleFunc("GET /teacher", manageTests(teacherHandler.Dashboard))
	mux.HandleFunc("POST /teacher/tests/create", manageTests(teacherHandler.CreateTest))
	mux.HandleFunc("POST /teacher/tests/{id}/delete", manageTests(teacherHandler.DeleteTest))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Attempt silent re-authentication from stored credentials. This runs in
	// the background; the route guard renders its loading view until it
	// settles.
	go sessionManager.Initialize(context.Background())

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Stop any running countdown before closing the store
	attemptService.Teardown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// loadTemplates loads all template files
func loadTemplates(templatesPath string) (*template.Template, error) {
	patterns := []string{
		filepath.Join(templatesPath, "auth/*.tmpl"),
		filepath.Join(templatesPath, "student/*.tmpl"),
		filepath.Join(templatesPath, "teacher/*.tmpl"),
		filepath.Join(templatesPath, "components/*.tmpl"),
	}

	files := []string{filepath.Join(templatesPath, "base.tmpl")}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"deref": func(f *float64) float64 {
			if f == nil {
				return 0
			}
			return *f
		},
		"formatClock": func(seconds int) string {
			if seconds < 0 {
				seconds = 0
			}
			return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
		},
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatScore": func(score float64) string {
			return fmt.Sprintf("%.1f%%", score)
		},
	}

	return template.New("").Funcs(funcMap).ParseFiles(files...)
}
