package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/profilevault/internal/common"
	"github.com/dmitrijs2005/profilevault/internal/logging"
)

// BucketEnsurer creates the destination bucket if it is missing.
type BucketEnsurer interface {
	EnsureBucket(ctx context.Context) error
}

// Provision makes sure the destination exists before the consumer starts.
// Any failure wraps common.ErrProvisioning and must stop the process.
func Provision(ctx context.Context, b BucketEnsurer, log logging.Logger) error {
	if err := b.EnsureBucket(ctx); err != nil {
		if !errors.Is(err, common.ErrProvisioning) {
			err = fmt.Errorf("%w: %w", common.ErrProvisioning, err)
		}
		return err
	}
	log.Info(ctx, "destination bucket ready")
	return nil
}
