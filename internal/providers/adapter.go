package providers

import (
	"context"
	"errors"

	"github.com/akazantsev/surebet/internal/pkg/enums"
	"github.com/akazantsev/surebet/internal/pkg/models"
)

// ErrThrottled is returned by an adapter that exhausted its retry budget
// against a rate-limiting provider. The adapter may still return the quotes
// it managed to collect before giving up.
var ErrThrottled = errors.New("provider throttled")

// Adapter fetches and normalizes quotes for one bookmaker. Implementations
// must not panic, must retry rate limiting internally with capped backoff,
// and must emit quotes already normalized to the canonical schema
// (including the handicap margin sign convention).
type Adapter interface {
	// FetchQuotes returns the provider's current lines. A non-nil error with
	// a non-empty quote list means a partial result.
	FetchQuotes(ctx context.Context) ([]models.OddsQuote, error)

	// Provider returns the bookmaker this adapter serves.
	Provider() enums.Provider
}
