package pipeline

import (
	"FrameForge/internal/storage"
	types "FrameForge/pkg"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"
)

// Publisher uploads finished outputs to a storage backend
type Publisher struct {
	storage storage.Storage
	bucket  string
	prefix  string
	retry   types.RetryConfig
	logger  *zap.Logger
}

func NewPublisher(store storage.Storage, cfg types.StorageConfig, retryCfg types.RetryConfig, logger *zap.Logger) *Publisher {
	return &Publisher{
		storage: store,
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		retry:   retryCfg,
		logger:  logger,
	}
}

// Publish uploads the run output and returns the storage key
func (p *Publisher) Publish(ctx context.Context, summary *Summary) (string, error) {
	key := path.Join(p.prefix, summary.RunID.String(), filepath.Base(summary.Output))

	err := Retry(ctx, p.logger, p.retry, fmt.Sprintf("publish %s", summary.Output), func() error {
		file, err := os.Open(summary.Output)
		if err != nil {
			return err
		}
		defer file.Close()
		return p.storage.Upload(ctx, p.bucket, key, file)
	})
	if err != nil {
		p.logger.Error("Publish failed after retries", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to publish %s: %w", summary.Output, err)
	}

	p.logger.Info("Output published", zap.String("bucket", p.bucket), zap.String("key", key))
	return key, nil
}
