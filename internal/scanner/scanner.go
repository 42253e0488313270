package scanner

import (
	"context"
	"log/slog"
	"time"

	"github.com/akazantsev/surebet/internal/pkg/config"
	"github.com/akazantsev/surebet/internal/pkg/models"
	"github.com/akazantsev/surebet/internal/pkg/storage"
	"github.com/akazantsev/surebet/internal/providers"
)

// Scanner runs the poll → match → calculate → dedup → notify cycle.
// Cycles never overlap: a new one starts only after the previous finished.
type Scanner struct {
	collector *Collector
	matcher   *Matcher
	dedup     *Deduplicator
	lifecycle *Lifecycle

	quotes storage.QuoteStorage
	cache  *storage.QuoteCache // optional

	interval     time.Duration
	cycleTimeout time.Duration
	minProfit    float64
}

// New wires the pipeline from config. cache may be nil.
func New(cfg config.ScannerConfig, roster []providers.Adapter, quotes storage.QuoteStorage,
	arbs storage.SentArbStorage, channel Channel, cache *storage.QuoteCache) *Scanner {

	window := time.Duration(cfg.DedupWindowHours) * time.Hour

	return &Scanner{
		collector:    NewCollector(roster, cfg.FetchTimeout, cfg.MaxConcurrentFetches),
		matcher:      NewMatcher(cfg.MatchTimeTolerance),
		dedup:        NewDeduplicator(arbs, window),
		lifecycle:    NewLifecycle(arbs, channel),
		quotes:       quotes,
		cache:        cache,
		interval:     cfg.Interval,
		cycleTimeout: cfg.CycleTimeout,
		minProfit:    cfg.MinProfitPercent,
	}
}

// Run restores lifecycle state and loops cycles until the context is
// cancelled. The first cycle starts immediately.
func (s *Scanner) Run(ctx context.Context) error {
	if err := s.lifecycle.Restore(ctx, s.dedup.Window()); err != nil {
		return err
	}

	slog.Info("Scanner started",
		"interval", s.interval,
		"min_profit_percent", s.minProfit,
		"dedup_window", s.dedup.Window())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.runCycle(ctx)

		select {
		case <-ctx.Done():
			slog.Info("Scanner stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Scanner) runCycle(ctx context.Context) {
	if s.cycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cycleTimeout)
		defer cancel()
	}

	start := time.Now()

	quotes, reports := s.collector.Collect(ctx)
	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
		}
	}

	// Persistence is observational: a database or cache hiccup must not
	// stop detection on the quotes already in hand.
	if len(quotes) > 0 {
		if err := s.quotes.BatchInsert(ctx, quotes); err != nil {
			slog.Error("Failed to persist cycle quotes", "count", len(quotes), "error", err)
		}
		if s.cache != nil {
			if err := s.cache.StoreQuotes(ctx, quotes); err != nil {
				slog.Warn("Failed to cache cycle quotes", "error", err)
			}
		}
	}

	groups := s.matcher.GroupQuotes(quotes)
	marketGroups.Set(float64(len(groups)))

	detections := s.detect(ctx, groups)
	sent, expired := s.lifecycle.Reconcile(ctx, detections)
	if sent > 0 {
		notificationsSent.Add(float64(sent))
	}
	if expired > 0 {
		notificationsExpired.Add(float64(expired))
	}

	elapsed := time.Since(start)
	cycleDuration.Observe(elapsed.Seconds())
	slog.Info("Cycle finished",
		"duration", elapsed,
		"quotes", len(quotes),
		"providers_failed", failed,
		"market_groups", len(groups),
		"opportunities", len(detections),
		"sent", sent,
		"expired", expired,
		"active", s.lifecycle.ActiveCount())
}

// detect evaluates every group and filters through the profit threshold and
// the dedup lookup. A dedup storage error drops that opportunity for this
// cycle: re-sending a duplicate is worse than notifying one cycle late.
func (s *Scanner) detect(ctx context.Context, groups []*models.MarketGroup) []Detection {
	var detections []Detection
	for _, g := range groups {
		arb, ok := Evaluate(g)
		if !ok {
			continue
		}
		opportunitiesDetected.Inc()
		opportunityProfit.Observe(arb.ProfitPct)

		if arb.ProfitPct < s.minProfit {
			continue
		}

		a := arb
		hash, prev, err := s.dedup.Check(ctx, &a)
		if err != nil {
			slog.Error("Dedup check failed, skipping opportunity",
				"match", a.Teams, "profit_percent", a.ProfitPct, "error", err)
			continue
		}
		detections = append(detections, Detection{Hash: hash, Arb: &a, Prev: prev})
	}
	return detections
}
