package storage

import (
	"context"
	"time"

	"github.com/akazantsev/surebet/internal/pkg/models"
)

// QuoteStorage persists the current cycle's quotes. Batches are atomic:
// either every quote of the cycle lands or none does.
type QuoteStorage interface {
	// BatchInsert writes all quotes in a single transaction.
	BatchInsert(ctx context.Context, quotes []models.OddsQuote) error

	// Close closes the database connection.
	Close() error
}

// SentArbStorage is the durable store behind deduplication and the
// notification lifecycle. It is the only shared mutable resource across
// cycles; cycles run sequentially so no extra locking is needed in-process.
type SentArbStorage interface {
	// FindRecent returns the SentArbitrage with this hash sent within the
	// window, or nil if none exists.
	FindRecent(ctx context.Context, arbHash string, window time.Duration) (*models.SentArbitrage, error)

	// Insert stores a newly sent arbitrage. Re-inserting the same
	// (hash, sentAt) is a no-op so concurrent processes cannot double-book.
	Insert(ctx context.Context, sa *models.SentArbitrage) error

	// UpdateMessageID records the channel message ID for later editing.
	UpdateMessageID(ctx context.Context, arbHash string, messageID int) error

	// MarkExpired flags the active row for this hash as expired.
	MarkExpired(ctx context.Context, arbHash string, at time.Time) error

	// LoadActive returns all non-expired rows sent within the window.
	// Used at process start to rebuild the in-memory active set.
	LoadActive(ctx context.Context, window time.Duration) ([]models.SentArbitrage, error)

	// DeleteOlderThan removes rows whose sentAt is before cutoff.
	// Storage hygiene only; correctness relies on the time window.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Close closes the database connection.
	Close() error
}
