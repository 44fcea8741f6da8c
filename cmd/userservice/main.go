package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/profilevault/internal/config"
	"github.com/dmitrijs2005/profilevault/internal/logging"
	"github.com/dmitrijs2005/profilevault/internal/userservice"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel).With("service", "user_service")
	app, err := userservice.NewApp(ctx, cfg, logger)

	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
