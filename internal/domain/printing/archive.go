package printing

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
)

// LabelArchive stores rendered labels so they can be reprinted or audited
type LabelArchive interface {
	// Store saves a rendered label and returns where it can be found
	Store(ctx context.Context, label *RenderedLabel) (*ArchivedLabel, error)
}

// RenderedLabel is the output of a print surface that produces a file
type RenderedLabel struct {
	JobID       uuid.UUID
	ContentType string
	Extension   string // without the dot, e.g. pdf
	Data        []byte
	CreatedAt   time.Time
}

// Key returns the archive key {prefix}/{year}/{month}/{job}.{ext}
func (l *RenderedLabel) Key(prefix string) string {
	created := l.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	ext := l.Extension
	if ext == "" {
		ext = "pdf"
	}
	return path.Join(
		prefix,
		fmt.Sprintf("%d", created.Year()),
		fmt.Sprintf("%02d", created.Month()),
		l.JobID.String()+"."+ext,
	)
}

// ArchivedLabel describes a stored label
type ArchivedLabel struct {
	Key  string
	URL  string
	Size int64
}
