package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/profilevault/internal/common"
	"github.com/dmitrijs2005/profilevault/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBucket struct{ err error }

func (b stubBucket) EnsureBucket(ctx context.Context) error { return b.err }

type stubConsumer struct {
	started chan struct{}
	err     error
}

func (c *stubConsumer) Run(ctx context.Context) error {
	close(c.started)
	if c.err != nil {
		return c.err
	}
	<-ctx.Done()
	return nil
}

func newTestApp(bucketErr, consumerErr error) (*App, *stubConsumer) {
	c := &stubConsumer{started: make(chan struct{}), err: consumerErr}
	return &App{
		logger:   logging.Nop(),
		bucket:   stubBucket{err: bucketErr},
		consumer: c,
		health:   NewHealthServer("127.0.0.1:0", logging.Nop()),
	}, c
}

func TestRun_ProvisioningFailureIsFatal(t *testing.T) {
	app, c := newTestApp(errors.New("access denied"), nil)

	err := app.Run(context.Background())
	assert.ErrorIs(t, err, common.ErrProvisioning)

	select {
	case <-c.started:
		t.Fatal("consumer must not start when provisioning fails")
	default:
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	app, c := newTestApp(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case <-c.started:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not start")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestRun_ConsumerErrorStopsApp(t *testing.T) {
	app, _ := newTestApp(nil, errors.New("boom"))

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.EqualError(t, err, "boom")
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}
