// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"expvar"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/auth"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/common"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/generator"
)

type Server struct {
	router    chi.Router
	generator *generator.Generator
	auth      *auth.Manager
	templates *template.Template
}

// Config controls where the server loads its HTML templates from.
type Config struct {
	TemplatesDir string
}

// DefaultConfig returns the standard configuration used when no overrides
// are provided.
func DefaultConfig() Config {
	return Config{
		TemplatesDir: filepath.Join("web", "templates"),
	}
}

// Merge overlays non-empty configuration values from the override onto the
// base configuration.
func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.TemplatesDir) != "" {
		result.TemplatesDir = strings.TrimSpace(override.TemplatesDir)
	}
	return result
}

func NewServer(gen *generator.Generator, authMgr *auth.Manager, cfg *Config) (*Server, error) {
	logger := common.Logger()
	if gen == nil {
		return nil, fmt.Errorf("generator required")
	}
	if authMgr == nil {
		return nil, fmt.Errorf("auth manager required")
	}
	configuration := DefaultConfig()
	if cfg != nil {
		configuration = configuration.Merge(*cfg)
	}
	if _, err := os.Stat(filepath.Join(configuration.TemplatesDir, "index.html")); err != nil {
		logger.Warn("api: template index missing", "path", configuration.TemplatesDir, "error", err)
	}
	templates, err := template.ParseGlob(filepath.Join(configuration.TemplatesDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	srv := &Server{
		router:    chi.NewRouter(),
		generator: gen,
		auth:      authMgr,
		templates: templates,
	}
	srv.routes()
	logger.Info("api: server ready", "auth_enabled", authMgr.Enabled(), "templates", configuration.TemplatesDir)
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Get("/v1/logs", s.handleLogs)
	s.router.Method(http.MethodGet, "/debug/vars", expvar.Handler())
	s.router.Post("/v1/generate", s.handleGenerateJSON)

	s.router.Get("/login", s.handleLoginPage)
	s.router.Get("/logout", s.handleLogout)
	s.router.Get("/auth/google", s.handleAuthStart)
	s.router.Get("/auth/google/callback", s.handleAuthCallback)

	s.router.Method(http.MethodGet, "/", s.auth.RequireUser(http.HandlerFunc(s.handleIndex)))
	s.router.Method(http.MethodPost, "/generate", s.auth.RequireUser(http.HandlerFunc(s.handleGenerateForm)))
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	entries := append([]common.LogEntry(nil), common.LogEntries()...)
	if level := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("level"))); level != "" {
		filtered := entries[:0]
		for _, entry := range entries {
			if strings.ToLower(entry.Level) == level {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Time.Equal(entries[j].Time) {
			if entries[i].Component == entries[j].Component {
				return entries[i].Message < entries[j].Message
			}
			return entries[i].Component < entries[j].Component
		}
		return entries[i].Time.Before(entries[j].Time)
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
