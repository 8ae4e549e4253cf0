// testserver starts a jsengine API server that needs no installed runtimes.
// The embedded goja engine is active, verification is on, and a skewed copy
// of goja disagrees whenever a script contains the marker /*skew*/.
// Usage: go run ./cmd/testserver
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/seantiz/jsengine/internal/api"
	"github.com/seantiz/jsengine/internal/backend"
	"github.com/seantiz/jsengine/internal/engine"
	"github.com/seantiz/jsengine/internal/store"
)

const skewMarker = "/*skew*/"

// skewBackend delegates to goja and rewrites the output of marked scripts.
type skewBackend struct {
	inner backend.Backend
}

func (s *skewBackend) Name() string { return "skew" }

func (s *skewBackend) Probe(ctx context.Context) error { return s.inner.Probe(ctx) }

func (s *skewBackend) Evaluate(ctx context.Context, script string) backend.Result {
	res := s.inner.Evaluate(ctx, script)
	if res.Err == nil && strings.Contains(script, skewMarker) {
		res.Output = "skewed:" + res.Output
	}
	return res
}

// absentBackend is never available.
type absentBackend struct{}

func (absentBackend) Name() string { return "absent" }

func (absentBackend) Probe(_ context.Context) error {
	return errors.New("absent runtime is never installed")
}

func (absentBackend) Evaluate(_ context.Context, _ string) backend.Result {
	return backend.Result{Err: backend.ErrNotFound}
}

func main() {
	addr := ":8080"
	if v := os.Getenv("JSENGINE_LISTEN_ADDR"); v != "" {
		addr = v
	}

	db, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	goja := backend.NewGoja()
	reg, err := backend.NewRegistry(absentBackend{}, goja, &skewBackend{inner: goja})
	if err != nil {
		log.Fatalf("failed to build registry: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	mgr, err := engine.New(context.Background(), reg, engine.Options{Verify: true}, logger)
	if err != nil {
		log.Fatalf("failed to select engine: %v", err)
	}
	srv := api.NewServer(addr, db, mgr, logger, 10*time.Second)

	logger.Info("testserver: starting", "addr", addr)
	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
