// Package report runs the order pipeline end to end: normalize, filter,
// bucket, aggregate, compose, persist.
package report

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"wolt-report-service/internal/compose"
)

// Report describes one persisted report artifact.
type Report struct {
	ID         string         `json:"guid"`
	Format     compose.Format `json:"format"`
	Key        string         `json:"-"`
	Location   string         `json:"location"`
	OrderCount int            `json:"orderCount"`
	Currencies []string       `json:"currencies"`
	Skipped    []string       `json:"skipped,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

var ErrNotFound = errors.New("report not found")

// Registry remembers report metadata so artifacts can be found by id.
type Registry interface {
	Save(ctx context.Context, rep Report) error
	Get(ctx context.Context, id string) (*Report, error)
}

// Publisher announces finished reports.
type Publisher interface {
	PublishReportGenerated(ctx context.Context, rep Report) error
}

// NewID returns a random 128-bit identifier as 32 lowercase hex digits.
func NewID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

func ValidID(id string) bool {
	if len(id) != 32 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}
