// Package worker runs the persistence consumer: it provisions the bucket,
// then drains the queue into object storage until shutdown.
package worker

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/profilevault/internal/awsx"
	"github.com/dmitrijs2005/profilevault/internal/config"
	"github.com/dmitrijs2005/profilevault/internal/logging"
	"github.com/dmitrijs2005/profilevault/internal/pipeline"
	"github.com/dmitrijs2005/profilevault/internal/queue"
	"github.com/dmitrijs2005/profilevault/internal/storage"
)

type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	logger   logging.Logger
	bucket   pipeline.BucketEnsurer
	consumer runner
	health   *HealthServer
}

// NewApp wires the S3 store, the SQS queue, the optional dead-letter queue
// and the consumer.
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

	client := queue.NewClient(awsCfg)
	q, err := queue.Open(ctx, client, c.SQSQueueURL, c.SQSQueueName, c.ReceiveWaitTime, c.VisibilityTimeout)
	if err != nil {
		return nil, err
	}
	store := storage.NewS3Store(awsCfg, c.S3Bucket)

	opts := []pipeline.ConsumerOption{
		pipeline.WithWriteTimeout(c.WriteTimeout),
		pipeline.WithReceiveErrorBackoff(c.ReceiveErrorBackoff),
	}
	if c.DeadLetterQueueURL != "" {
		opts = append(opts, pipeline.WithDeadLetter(queue.New(client, c.DeadLetterQueueURL, 0, 0)))
	}

	logger.Info(ctx, "worker configured", "queue_url", q.URL(), "bucket", store.Bucket(),
		"dead_letter", c.DeadLetterQueueURL != "")

	return &App{
		logger:   logger,
		bucket:   store,
		consumer: pipeline.NewConsumer(q, store, logger, opts...),
		health:   NewHealthServer(c.HealthAddrGRPC, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run provisions the bucket and then runs the consumer and the health server
// until ctx is cancelled or a signal arrives. A provisioning failure is
// returned before anything starts.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting PDF worker...")

	if err := pipeline.Provision(ctx, app.bucket, app.logger); err != nil {
		app.logger.Error(ctx, "provisioning failed", "error", err)
		return err
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	var runErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.health.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancelFunc()
		app.health.SetServing(true)
		defer app.health.SetServing(false)
		if err := app.consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			app.logger.Error(ctx, err.Error())
			runErr = err
		}
	}()

	wg.Wait()
	app.logger.Info(ctx, "PDF worker stopped")
	return runErr
}
