package fxcore

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hupe1980/fxcore/blobstore"
	"github.com/hupe1980/fxcore/blobstore/minio"
	"github.com/hupe1980/fxcore/blobstore/s3"
	"github.com/hupe1980/fxcore/codec"
	"github.com/hupe1980/fxcore/config"
	"github.com/hupe1980/fxcore/internal/resource"
	"github.com/hupe1980/fxcore/persist"
)

// OpenStore opens the blob store selected by p. It returns nil for the
// "none" backend. Cloud backends resolve credentials from the default AWS
// chain (environment, shared config, instance role).
func OpenStore(ctx context.Context, p config.Persistence) (blobstore.Store, error) {
	switch p.Backend {
	case "", config.BackendNone:
		return nil, nil
	case config.BackendMemory:
		return blobstore.NewMemoryStore(), nil
	case config.BackendLocal:
		return blobstore.NewLocalStore(p.Path), nil
	case config.BackendS3:
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return s3.NewStore(awss3.NewFromConfig(cfg), p.Bucket, p.Prefix), nil
	case config.BackendDynamoDB:
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return s3.NewDDBStore(dynamodb.NewFromConfig(cfg), p.Table, p.Prefix, p.Keep), nil
	case config.BackendMinIO:
		return minio.Dial(ctx, p.Endpoint, p.AccessKey, p.SecretKey, p.Bucket, p.Prefix, p.Secure)
	default:
		return nil, &ErrInvalidConfig{Field: "persistence.backend " + p.Backend}
	}
}

// newStateStore wraps blobs with the configured record format.
func newStateStore(blobs blobstore.Store, p config.Persistence, c codec.Codec, rc *resource.Controller) (*persist.Store, error) {
	if c == nil {
		c = codec.Default
		if p.Codec != "" {
			named, ok := codec.ByName(p.Codec)
			if !ok {
				return nil, &ErrInvalidConfig{Field: "persistence.codec " + p.Codec}
			}
			c = named
		}
	}

	comp := persist.CompressionNone
	if p.Compression != "" {
		parsed, err := persist.ParseCompression(p.Compression)
		if err != nil {
			return nil, &ErrInvalidConfig{Field: "persistence.compression " + p.Compression, cause: err}
		}
		comp = parsed
	}

	return persist.NewStore(blobs,
		persist.WithCodec(c),
		persist.WithCompression(comp),
		persist.WithFlashBudget(rc),
	), nil
}
