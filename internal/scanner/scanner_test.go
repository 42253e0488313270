package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akazantsev/surebet/internal/pkg/config"
	"github.com/akazantsev/surebet/internal/pkg/enums"
	"github.com/akazantsev/surebet/internal/pkg/models"
	"github.com/akazantsev/surebet/internal/providers"
)

func scannerUnderTest(roster []providers.Adapter, quotes *memQuoteStore,
	arbs *memArbStore, channel *fakeChannel) *Scanner {
	cfg := config.ScannerConfig{
		Interval:             time.Minute,
		FetchTimeout:         time.Second,
		MaxConcurrentFetches: 10,
		MatchTimeTolerance:   30 * time.Minute,
		MinProfitPercent:     1.0,
		DedupWindowHours:     24,
	}
	return New(cfg, roster, quotes, arbs, channel, nil)
}

// Full pipeline over three cycles: detect and notify, then suppress the
// repeat, then expire once a provider stops quoting the market.
func TestScannerCycleLifecycle(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	providerA := &stubAdapter{provider: enums.ProviderFonbet, quotes: []models.OddsQuote{
		quoteAt(enums.ProviderFonbet, "Novak Djokovic", "Carlos Alcaraz", start, 2.10, 2.10),
	}}
	providerB := &stubAdapter{provider: enums.ProviderPinnacle, quotes: []models.OddsQuote{
		quoteAt(enums.ProviderPinnacle, "Djokovic N.", "Alcaraz C.", start, 1.95, 2.30),
	}}

	quotes := &memQuoteStore{}
	arbs := newMemArbStore()
	channel := newFakeChannel()
	s := scannerUnderTest([]providers.Adapter{providerA, providerB}, quotes, arbs, channel)

	// Cycle 1: best odds (2.10, 2.30) → ~9.77% profit, one notification.
	s.runCycle(ctx)
	require.Equal(t, 1, channel.sendCount())
	assert.Contains(t, channel.sends[0], "Novak Djokovic vs Carlos Alcaraz")
	require.Len(t, quotes.batches, 1)
	assert.Len(t, quotes.batches[0], 2)

	// Cycle 2: identical quotes re-detected, suppressed by the dedup window.
	s.runCycle(ctx)
	assert.Equal(t, 1, channel.sendCount())
	assert.Empty(t, channel.edits)

	// Cycle 3: provider B disappears, the group drops below 2 providers and
	// the notification is edited as expired.
	providerB.quotes = nil
	s.runCycle(ctx)
	assert.Equal(t, 1, channel.sendCount())
	require.Len(t, channel.edits, 1)
	assert.Contains(t, channel.edits[1], "EXPIRED")

	row := arbs.get(ArbHash(&models.ArbitrageOpportunity{
		MatchTime: start,
		BetTypeID: enums.BetTypeTwoWay,
		BestOdds: []models.BestOdd{
			{Price: 2.10, Provider: enums.ProviderFonbet},
			{Price: 2.30, Provider: enums.ProviderPinnacle},
		},
		ProfitPct: 9.7727, // hashes as "9.77", same as the detected value
	}))
	require.NotNil(t, row)
	assert.NotNil(t, row.ExpiredAt)
}

func TestScannerSkipsBelowProfitThreshold(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	// Best odds (2.02, 2.02): s ≈ 0.990, profit ≈ 0.99% — under the 1% floor.
	roster := []providers.Adapter{
		&stubAdapter{provider: enums.ProviderFonbet, quotes: []models.OddsQuote{
			quoteAt(enums.ProviderFonbet, "Djokovic N.", "Alcaraz C.", start, 2.02, 1.90),
		}},
		&stubAdapter{provider: enums.ProviderPinnacle, quotes: []models.OddsQuote{
			quoteAt(enums.ProviderPinnacle, "Djokovic N.", "Alcaraz C.", start, 1.90, 2.02),
		}},
	}

	quotes := &memQuoteStore{}
	channel := newFakeChannel()
	s := scannerUnderTest(roster, quotes, newMemArbStore(), channel)

	s.runCycle(ctx)
	assert.Equal(t, 0, channel.sendCount())
}

func TestScannerQuoteStoreFailureDoesNotStopDetection(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	roster := []providers.Adapter{
		&stubAdapter{provider: enums.ProviderFonbet, quotes: []models.OddsQuote{
			quoteAt(enums.ProviderFonbet, "Djokovic N.", "Alcaraz C.", start, 2.10, 2.10),
		}},
		&stubAdapter{provider: enums.ProviderPinnacle, quotes: []models.OddsQuote{
			quoteAt(enums.ProviderPinnacle, "Djokovic N.", "Alcaraz C.", start, 1.95, 2.30),
		}},
	}

	quotes := &memQuoteStore{err: errBoom}
	channel := newFakeChannel()
	s := scannerUnderTest(roster, quotes, newMemArbStore(), channel)

	s.runCycle(ctx)
	assert.Equal(t, 1, channel.sendCount())
}

func TestScannerDedupErrorSkipsOpportunity(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	roster := []providers.Adapter{
		&stubAdapter{provider: enums.ProviderFonbet, quotes: []models.OddsQuote{
			quoteAt(enums.ProviderFonbet, "Djokovic N.", "Alcaraz C.", start, 2.10, 2.10),
		}},
		&stubAdapter{provider: enums.ProviderPinnacle, quotes: []models.OddsQuote{
			quoteAt(enums.ProviderPinnacle, "Djokovic N.", "Alcaraz C.", start, 1.95, 2.30),
		}},
	}

	arbs := newMemArbStore()
	arbs.findErr = errBoom
	channel := newFakeChannel()
	s := scannerUnderTest(roster, &memQuoteStore{}, arbs, channel)

	s.runCycle(ctx)
	assert.Equal(t, 0, channel.sendCount())

	// Storage recovers; the opportunity is notified on the next cycle.
	arbs.findErr = nil
	s.runCycle(ctx)
	assert.Equal(t, 1, channel.sendCount())
}

func TestScannerRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := scannerUnderTest(nil, &memQuoteStore{}, newMemArbStore(), newFakeChannel())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scanner did not stop on context cancel")
	}
}
