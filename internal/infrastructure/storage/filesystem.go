// Package storage archives rendered labels on the local disk or in S3 compatible storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ERPlora/module-inventory/internal/domain/printing"
)

// Ensure FileSystemArchive implements LabelArchive
var _ printing.LabelArchive = (*FileSystemArchive)(nil)

// FileSystemArchive stores labels under a base directory
type FileSystemArchive struct {
	basePath string
	baseURL  string
	logger   *zap.Logger
}

// NewFileSystemArchive creates the base directory if needed.
// baseURL is prefixed to keys to build URLs; empty yields file:// URLs.
func NewFileSystemArchive(basePath, baseURL string, logger *zap.Logger) (*FileSystemArchive, error) {
	if basePath == "" {
		return nil, errors.New("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSystemArchive{
		basePath: abs,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		logger:   logger,
	}, nil
}

// Store writes the label to {base}/{year}/{month}/{job}.{ext}
func (s *FileSystemArchive) Store(ctx context.Context, label *printing.RenderedLabel) (*printing.ArchivedLabel, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("store cancelled: %w", err)
	}
	if err := validateLabel(label); err != nil {
		return nil, err
	}

	key := label.Key("")
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, label.Data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write label file: %w", err)
	}

	url := s.URL(key)
	s.logger.Info("Label archived",
		zap.String("path", fullPath),
		zap.Int("size", len(label.Data)))

	return &printing.ArchivedLabel{
		Key:  key,
		URL:  url,
		Size: int64(len(label.Data)),
	}, nil
}

// URL returns the accessible URL for a stored key
func (s *FileSystemArchive) URL(key string) string {
	if s.baseURL == "" {
		return "file://" + filepath.ToSlash(filepath.Join(s.basePath, filepath.FromSlash(key)))
	}
	return s.baseURL + "/" + key
}

func validateLabel(label *printing.RenderedLabel) error {
	if label == nil {
		return errors.New("label is nil")
	}
	if label.JobID == uuid.Nil {
		return errors.New("job ID is required")
	}
	if len(label.Data) == 0 {
		return errors.New("label data is empty")
	}
	return nil
}
