package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ERPlora/module-inventory/internal/domain/printing"
	infraconfig "github.com/ERPlora/module-inventory/internal/infrastructure/config"
)

// New builds the archive selected by cfg.Type. S3 buckets are created on demand.
func New(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (printing.LabelArchive, error) {
	switch cfg.Type {
	case "", "filesystem":
		return NewFileSystemArchive(cfg.BasePath, cfg.BaseURL, logger)
	case "s3":
		archive, err := NewS3Archive(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return archive, nil
	case "memory":
		return NewMemoryArchive(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
