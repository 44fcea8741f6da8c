package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/profilevault/internal/config"
	"github.com/dmitrijs2005/profilevault/internal/logging"
	"github.com/dmitrijs2005/profilevault/internal/worker"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel).With("service", "pdf_worker")
	app, err := worker.NewApp(ctx, cfg, logger)

	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

}
