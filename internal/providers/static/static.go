// Package static provides an adapter that serves a fixed set of quotes.
// Used in tests and smoke runs where no real provider gateway is available.
package static

import (
	"context"
	"fmt"

	"github.com/akazantsev/surebet/internal/pkg/config"
	"github.com/akazantsev/surebet/internal/pkg/enums"
	"github.com/akazantsev/surebet/internal/pkg/models"
	"github.com/akazantsev/surebet/internal/providers"
)

func init() {
	providers.Register("static", func(cfg config.ProviderConfig) (providers.Adapter, error) {
		p, ok := enums.ParseProvider(cfg.Name)
		if !ok {
			return nil, fmt.Errorf("unknown provider name %q", cfg.Name)
		}
		return New(p, nil), nil
	})
}

// Adapter returns the same quotes on every fetch.
type Adapter struct {
	provider enums.Provider
	quotes   []models.OddsQuote
	err      error
}

func New(p enums.Provider, quotes []models.OddsQuote) *Adapter {
	return &Adapter{provider: p, quotes: quotes}
}

// SetQuotes replaces the served quotes. Not safe to call while a cycle's
// fetch is in flight.
func (a *Adapter) SetQuotes(quotes []models.OddsQuote) {
	a.quotes = quotes
}

// SetError makes the next fetches fail with err (nil restores normal serving).
func (a *Adapter) SetError(err error) {
	a.err = err
}

func (a *Adapter) Provider() enums.Provider {
	return a.provider
}

func (a *Adapter) FetchQuotes(ctx context.Context) ([]models.OddsQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.err != nil {
		return nil, a.err
	}
	out := make([]models.OddsQuote, len(a.quotes))
	copy(out, a.quotes)
	return out, nil
}
