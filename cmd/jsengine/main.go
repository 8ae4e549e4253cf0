package main

import (
	"context"
	"log"
	"os"

	"github.com/seantiz/jsengine/internal/api"
	"github.com/seantiz/jsengine/internal/backend"
	"github.com/seantiz/jsengine/internal/config"
	"github.com/seantiz/jsengine/internal/engine"
	"github.com/seantiz/jsengine/internal/store"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("jsengine: starting",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"engine", cfg.Engine,
		"verify", cfg.Verify,
	)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	reg := backend.Default(backend.Options{RhinoJar: cfg.RhinoJar})
	mgr, err := engine.New(context.Background(), reg, engine.Options{
		Engine: cfg.Engine,
		Verify: cfg.Verify,
	}, logger)
	if err != nil {
		log.Fatalf("failed to select engine: %v", err)
	}

	srv := api.NewServer(cfg.ListenAddr, db, mgr, logger, cfg.EvalTimeout)

	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
