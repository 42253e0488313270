package scanner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/akazantsev/surebet/internal/pkg/enums"
	"github.com/akazantsev/surebet/internal/pkg/models"
	"github.com/akazantsev/surebet/internal/providers"
)

// FetchReport summarizes one adapter's work in a cycle.
type FetchReport struct {
	Provider enums.Provider
	Quotes   int
	Invalid  int
	Duration time.Duration
	Err      error
}

// Collector fans one cycle's fetch out over the adapter roster with
// bounded parallelism and a per-adapter timeout.
type Collector struct {
	roster       []providers.Adapter
	fetchTimeout time.Duration
	maxParallel  int
}

func NewCollector(roster []providers.Adapter, fetchTimeout time.Duration, maxParallel int) *Collector {
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	if maxParallel <= 0 {
		maxParallel = 10
	}
	return &Collector{roster: roster, fetchTimeout: fetchTimeout, maxParallel: maxParallel}
}

// Collect fetches every adapter concurrently and returns all valid quotes
// plus a per-adapter report. One adapter failing, timing out or returning
// garbage never affects the others: its report carries the error and the
// cycle continues with whatever the rest produced. Invalid quotes are
// dropped, never repaired.
func (c *Collector) Collect(ctx context.Context) ([]models.OddsQuote, []FetchReport) {
	var (
		mu      sync.Mutex
		quotes  []models.OddsQuote
		reports = make([]FetchReport, len(c.roster))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxParallel)

	for i, adapter := range c.roster {
		i, adapter := i, adapter
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, c.fetchTimeout)
			defer cancel()

			start := time.Now()
			fetched, err := adapter.FetchQuotes(fetchCtx)
			report := FetchReport{
				Provider: adapter.Provider(),
				Duration: time.Since(start),
				Err:      err,
			}

			// Filter into a fresh slice: the adapter's slice is not ours
			// to rearrange.
			valid := make([]models.OddsQuote, 0, len(fetched))
			for j := range fetched {
				if verr := fetched[j].Validate(); verr != nil {
					report.Invalid++
					slog.Debug("Dropping invalid quote",
						"provider", adapter.Provider().Name(),
						"match", fetched[j].MatchName(),
						"error", verr)
					continue
				}
				valid = append(valid, fetched[j])
			}
			report.Quotes = len(valid)

			mu.Lock()
			quotes = append(quotes, valid...)
			reports[i] = report
			mu.Unlock()

			if err != nil {
				fetchErrors.WithLabelValues(adapter.Provider().Name()).Inc()
				slog.Warn("Provider fetch failed",
					"provider", adapter.Provider().Name(),
					"quotes", report.Quotes,
					"duration", report.Duration,
					"error", err)
			} else {
				quotesCollected.WithLabelValues(adapter.Provider().Name()).Add(float64(report.Quotes))
				slog.Debug("Provider fetch done",
					"provider", adapter.Provider().Name(),
					"quotes", report.Quotes,
					"invalid", report.Invalid,
					"duration", report.Duration)
			}
			// Always nil: a failed provider must not cancel the group.
			return nil
		})
	}

	_ = g.Wait()
	return quotes, reports
}
