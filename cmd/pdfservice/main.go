package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/profilevault/internal/config"
	"github.com/dmitrijs2005/profilevault/internal/logging"
	"github.com/dmitrijs2005/profilevault/internal/pdfservice"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig(func(c *config.Config) {
		c.HTTPAddr = ":8001"
	})
	if err := cfg.Validate(); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel).With("service", "pdf_service")
	app, err := pdfservice.NewApp(ctx, cfg, logger)

	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
