// Package server exposes the generated digests over HTTP for preview.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"
)

// Server serves the output directory with the rendered digests
type Server struct {
	listen    string
	outputDir string
	timeout   time.Duration
	version   string
	debug     bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Params holds construction parameters for Server
type Params struct {
	Listen    string
	OutputDir string
	Timeout   time.Duration
	Version   string
	Debug     bool
}

// New initializes a new preview server
func New(params Params) *Server {
	if params.Timeout <= 0 {
		params.Timeout = 30 * time.Second
	}
	s := &Server{
		listen:    params.Listen,
		outputDir: params.OutputDir,
		timeout:   params.Timeout,
		version:   params.Version,
		debug:     params.Debug,
		router:    routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	lgr.Printf("[INFO] starting preview server on %s, serving %s", s.listen, s.outputDir)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         s.listen,
		Handler:      s.router,
		ReadTimeout:  s.timeout,
		WriteTimeout: s.timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down preview server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("dailyfeedsanity", "alexthestampede", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /runs", s.runsHandler)
	})

	s.router.HandleFunc("GET /{$}", s.latestHandler)
	s.router.HandleFiles("/", http.Dir(s.outputDir))
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	RenderJSON(w, r, http.StatusOK, status)
}

// runsHandler lists the available dated run directories, newest first
func (s *Server) runsHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := s.listRuns()
	if err != nil {
		RenderJSON(w, r, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	RenderJSON(w, r, http.StatusOK, map[string]interface{}{"runs": runs})
}

// latestHandler redirects to the newest run's digest page
func (s *Server) latestHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := s.listRuns()
	if err != nil || len(runs) == 0 {
		http.Error(w, "no digests generated yet", http.StatusNotFound)
		return
	}
	http.Redirect(w, r, "/"+runs[0]+"/index.html", http.StatusFound)
}

func (s *Server) listRuns() ([]string, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return nil, fmt.Errorf("read output dir: %w", err)
	}

	var runs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := time.Parse("2006-01-02", e.Name()); err != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.outputDir, e.Name(), "index.html")); err != nil {
			continue
		}
		runs = append(runs, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(runs)))
	return runs, nil
}

// RenderJSON sends JSON response
func RenderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}
