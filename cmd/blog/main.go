package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/AlibekovAA/blog-backend/internal/common/bootstrap"
	"github.com/AlibekovAA/blog-backend/internal/common/config"
	"github.com/AlibekovAA/blog-backend/internal/common/constants"
	"github.com/AlibekovAA/blog-backend/internal/common/logger"
	srv "github.com/AlibekovAA/blog-backend/internal/common/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Dir, "blog", cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	app, err := bootstrap.NewApp(startCtx, cfg, log)
	cancel()
	if err != nil {
		log.Fatalf("failed to start blog service: %v", err)
	}

	log.Infof("blog service: storage=%s uploads=%s", cfg.Storage.Driver, cfg.Uploads.Driver)

	serverConfig := srv.DefaultServerConfig(cfg.HTTP.Addr())
	server := srv.NewServer(serverConfig, app.Handler())

	srv.Run(server, serverConfig, log, "blog", func(ctx context.Context) error {
		log.Infof("blog service: closing storage")
		return app.Close(ctx)
	})
}
