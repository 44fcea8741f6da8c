package pdfservice

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/profilevault/internal/auth"
	"github.com/dmitrijs2005/profilevault/internal/awsx"
	"github.com/dmitrijs2005/profilevault/internal/config"
	"github.com/dmitrijs2005/profilevault/internal/httpx"
	"github.com/dmitrijs2005/profilevault/internal/logging"
	"github.com/dmitrijs2005/profilevault/internal/pipeline"
	"github.com/dmitrijs2005/profilevault/internal/queue"
	"github.com/dmitrijs2005/profilevault/internal/render"
	"github.com/dmitrijs2005/profilevault/internal/storage"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	handler *Handler
}

// NewApp wires the token codec, renderer, object store and queue.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	awsCfg, err := awsx.LoadConfig(ctx, awsx.Options{
		Region:          c.AWSRegion,
		AccessKeyID:     c.AWSAccessKeyID,
		SecretAccessKey: c.AWSSecretAccessKey,
		Endpoint:        c.AWSEndpoint,
	})
	if err != nil {
		return nil, err
	}

	q, err := queue.Open(ctx, queue.NewClient(awsCfg), c.SQSQueueURL, c.SQSQueueName, c.ReceiveWaitTime, c.VisibilityTimeout)
	if err != nil {
		return nil, fmt.Errorf("queue init error: %w", err)
	}
	store := storage.NewS3Store(awsCfg, c.S3Bucket)

	producer := pipeline.NewProducer(q, store, c.PresignTTL, logger)
	h := NewHandler(auth.NewCodec([]byte(c.SecretKey)), render.NewPDFRenderer(), producer, logger)

	return &App{config: c, logger: logger, handler: h}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := httpx.ListenAndServe(ctx, srv, app.logger); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting PDF service...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.logger.Info(ctx, "PDF service stopped")
}
