package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	flag "github.com/spf13/pflag"

	"signalnoise/internal/board"
	"signalnoise/internal/config"
	"signalnoise/internal/handlers"
	"signalnoise/internal/store"
)

//go:embed static/*
var staticFS embed.FS

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}

func run() error {
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("cannot get working directory: %w", err)
	}

	// Configuration
	cfg, err := config.Load(config.LoadInput{
		Args:    os.Args[1:],
		Env:     environ(),
		WorkDir: workDir,
		Output:  os.Stderr,
	})
	if err != nil {
		return err
	}
	if cfg.Source != "" {
		log.Printf("Loaded config from %s", cfg.Source)
	}

	// Initialize store
	s, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := board.New(ctx, s)
	loaded := b.Snapshot()
	log.Printf("Loaded %d signal and %d noise tasks from %s (%s)",
		len(loaded.Signal), len(loaded.Noise), s.Location(), cfg.Backend)

	h := handlers.New(b)

	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return fmt.Errorf("failed to open static files: %w", err)
	}

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Static files, never cached so UI edits show up on reload
	r.Group(func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFileFS(w, r, staticSub, "index.html")
		})
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))
	})

	// Task API routes
	r.Route("/tasks", h.Routes)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on http://localhost%s", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Printf("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}

	if err := b.Save(shutdownCtx); err != nil {
		return fmt.Errorf("final save: %w", err)
	}

	return nil
}

func openStore(cfg config.Config) (store.Store, error) {
	if cfg.Backend == config.BackendSQLite {
		// FileStore creates its own directory; sqlite3 will not
		if err := os.MkdirAll(filepath.Dir(cfg.DataPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}

		s, err := store.NewSQLiteStore(cfg.DataPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	s, err := store.NewFileStore(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func environ() map[string]string {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	return env
}
