package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/akazantsev/surebet/internal/pkg/config"
	"github.com/akazantsev/surebet/internal/pkg/enums"
	"github.com/akazantsev/surebet/internal/pkg/models"
	"github.com/akazantsev/surebet/internal/providers"
)

func init() {
	providers.Register("feed", func(cfg config.ProviderConfig) (providers.Adapter, error) {
		return NewAdapter(cfg)
	})
}

// Adapter normalizes the generic JSON line feed of one bookmaker into
// canonical quotes.
type Adapter struct {
	provider       enums.Provider
	client         *Client
	marginFromAway bool
}

func NewAdapter(cfg config.ProviderConfig) (*Adapter, error) {
	p, ok := enums.ParseProvider(cfg.Name)
	if !ok {
		return nil, fmt.Errorf("unknown provider name %q", cfg.Name)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base_url is required for provider %q", cfg.Name)
	}
	return &Adapter{
		provider:       p,
		client:         NewClient(cfg.BaseURL, cfg.UserAgent, cfg.Timeout, cfg.MaxRetries),
		marginFromAway: cfg.MarginFromAway,
	}, nil
}

func (a *Adapter) Provider() enums.Provider {
	return a.provider
}

// FetchQuotes pulls the current line and converts it quote by quote.
// Malformed events are dropped individually, never the whole result.
func (a *Adapter) FetchQuotes(ctx context.Context) ([]models.OddsQuote, error) {
	line, err := a.client.GetLine(ctx)
	if err != nil {
		return nil, err
	}

	var quotes []models.OddsQuote
	dropped := 0
	for i := range line.Events {
		ev := &line.Events[i]
		start, err := parseKickoff(ev)
		if err != nil || ev.Home == "" || ev.Away == "" {
			dropped++
			continue
		}
		for _, m := range ev.Markets {
			q, ok := a.marketToQuote(ev, &m, start)
			if !ok {
				dropped++
				continue
			}
			quotes = append(quotes, q)
		}
	}
	if dropped > 0 {
		slog.Debug("feed: dropped malformed entries",
			"provider", a.provider.Name(), "dropped", dropped, "kept", len(quotes))
	}
	return quotes, nil
}

func (a *Adapter) marketToQuote(ev *LineEvent, m *LineMarket, start time.Time) (models.OddsQuote, bool) {
	betType := enums.BetType(m.BetTypeID)
	n := betType.Outcomes()
	if n == 0 || len(m.Prices) < n {
		return models.OddsQuote{}, false
	}

	q := models.OddsQuote{
		TeamHome:   ev.Home,
		TeamAway:   ev.Away,
		ProviderID: a.provider,
		SportID:    enums.Sport(ev.SportID),
		BetTypeID:  betType,
		StartTime:  start,
	}

	if betType.HasLine() {
		q.Margin = m.Line
		// Flip to the home side's perspective so margins are comparable
		// across providers for the same team ordering.
		if a.marginFromAway && betType == enums.BetTypeHandicap {
			q.Margin = -q.Margin
		}
	}

	q.Odd1 = m.Prices[0]
	q.Odd2 = m.Prices[1]
	if n == 3 {
		q.Odd3 = m.Prices[2]
	}
	return q, true
}

// parseKickoff resolves the event start time. Gateways disagree on format:
// some send unix milliseconds, some RFC3339, some RFC3339 with the zone
// suffix truncated. All are treated as UTC.
func parseKickoff(ev *LineEvent) (time.Time, error) {
	if ev.KickoffMs > 0 {
		return time.UnixMilli(ev.KickoffMs).UTC(), nil
	}
	if ev.Kickoff == "" {
		return time.Time{}, fmt.Errorf("missing kickoff time")
	}
	if t, err := time.Parse(time.RFC3339, ev.Kickoff); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", ev.Kickoff); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparsable kickoff time %q", ev.Kickoff)
}
