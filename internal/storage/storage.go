package storage

import (
	"context"
	"io"
)

// Storage receives published outputs
type Storage interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader) error
}
