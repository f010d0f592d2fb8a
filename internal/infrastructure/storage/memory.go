package storage

import (
	"context"
	"sync"

	"github.com/ERPlora/module-inventory/internal/domain/printing"
)

// Ensure MemoryArchive implements LabelArchive
var _ printing.LabelArchive = (*MemoryArchive)(nil)

// MemoryArchive keeps labels in memory. Useful for dry runs and tests.
type MemoryArchive struct {
	mu     sync.Mutex
	labels map[string][]byte
}

// NewMemoryArchive creates an empty in-memory archive
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{labels: make(map[string][]byte)}
}

// Store keeps a copy of the label data
func (s *MemoryArchive) Store(ctx context.Context, label *printing.RenderedLabel) (*printing.ArchivedLabel, error) {
	if err := validateLabel(label); err != nil {
		return nil, err
	}
	key := label.Key("memory")

	s.mu.Lock()
	s.labels[key] = append([]byte(nil), label.Data...)
	s.mu.Unlock()

	return &printing.ArchivedLabel{
		Key:  key,
		URL:  "memory://" + key,
		Size: int64(len(label.Data)),
	}, nil
}

// Get returns the stored data for key
func (s *MemoryArchive) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.labels[key]
	return data, ok
}

// Len returns the number of stored labels
func (s *MemoryArchive) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.labels)
}
