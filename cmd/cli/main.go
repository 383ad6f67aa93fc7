package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/avelasco-dev/inventario/internal/buildinfo"
	"github.com/avelasco-dev/inventario/internal/cli"
	"github.com/avelasco-dev/inventario/internal/config"
	"github.com/avelasco-dev/inventario/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.NewTextLogger(os.Stderr, slog.LevelInfo)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
