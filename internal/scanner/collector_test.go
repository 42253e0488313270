package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akazantsev/surebet/internal/pkg/enums"
	"github.com/akazantsev/surebet/internal/pkg/models"
	"github.com/akazantsev/surebet/internal/providers"
)

func validQuote(p enums.Provider) models.OddsQuote {
	return models.OddsQuote{
		TeamHome:   "Arsenal",
		TeamAway:   "Chelsea",
		ProviderID: p,
		SportID:    enums.SportFootball,
		BetTypeID:  enums.BetTypeTwoWay,
		Odd1:       1.90,
		Odd2:       1.95,
		StartTime:  time.Now().Add(24 * time.Hour),
	}
}

func TestCollectMergesProviders(t *testing.T) {
	c := NewCollector([]providers.Adapter{
		&stubAdapter{provider: enums.ProviderFonbet, quotes: []models.OddsQuote{validQuote(enums.ProviderFonbet)}},
		&stubAdapter{provider: enums.ProviderPinnacle, quotes: []models.OddsQuote{validQuote(enums.ProviderPinnacle)}},
	}, time.Second, 10)

	quotes, reports := c.Collect(context.Background())
	assert.Len(t, quotes, 2)
	require.Len(t, reports, 2)
	for _, r := range reports {
		assert.NoError(t, r.Err)
		assert.Equal(t, 1, r.Quotes)
	}
}

func TestCollectIsolatesFailures(t *testing.T) {
	c := NewCollector([]providers.Adapter{
		&stubAdapter{provider: enums.ProviderFonbet, quotes: []models.OddsQuote{validQuote(enums.ProviderFonbet)}},
		&stubAdapter{provider: enums.ProviderPinnacle, err: errBoom},
	}, time.Second, 10)

	quotes, reports := c.Collect(context.Background())
	assert.Len(t, quotes, 1)
	assert.Equal(t, enums.ProviderFonbet, quotes[0].ProviderID)

	require.Len(t, reports, 2)
	assert.NoError(t, reports[0].Err)
	assert.ErrorIs(t, reports[1].Err, errBoom)
}

func TestCollectDropsInvalidQuotes(t *testing.T) {
	bad := validQuote(enums.ProviderFonbet)
	bad.Odd1 = 1.005 // below the odds floor

	empty := validQuote(enums.ProviderFonbet)
	empty.TeamHome = ""

	c := NewCollector([]providers.Adapter{
		&stubAdapter{provider: enums.ProviderFonbet, quotes: []models.OddsQuote{
			validQuote(enums.ProviderFonbet), bad, empty,
		}},
	}, time.Second, 10)

	quotes, reports := c.Collect(context.Background())
	assert.Len(t, quotes, 1)
	require.Len(t, reports, 1)
	assert.Equal(t, 1, reports[0].Quotes)
	assert.Equal(t, 2, reports[0].Invalid)
}

func TestCollectDoesNotMutateAdapterSlice(t *testing.T) {
	bad := validQuote(enums.ProviderFonbet)
	bad.Odd1 = 0.5

	served := []models.OddsQuote{bad, validQuote(enums.ProviderFonbet)}
	original := make([]models.OddsQuote, len(served))
	copy(original, served)

	c := NewCollector([]providers.Adapter{
		&stubAdapter{provider: enums.ProviderFonbet, quotes: served},
	}, time.Second, 10)

	quotes, _ := c.Collect(context.Background())
	assert.Len(t, quotes, 1)
	// Filtering must not rearrange the slice the adapter handed over.
	assert.Equal(t, original, served)
}

func TestCollectKeepsPartialResultOnError(t *testing.T) {
	c := NewCollector([]providers.Adapter{
		&stubAdapter{
			provider: enums.ProviderFonbet,
			quotes:   []models.OddsQuote{validQuote(enums.ProviderFonbet)},
			err:      providers.ErrThrottled,
		},
	}, time.Second, 10)

	quotes, reports := c.Collect(context.Background())
	assert.Len(t, quotes, 1)
	require.Len(t, reports, 1)
	assert.ErrorIs(t, reports[0].Err, providers.ErrThrottled)
	assert.Equal(t, 1, reports[0].Quotes)
}

func TestCollectTimesOutSlowAdapter(t *testing.T) {
	c := NewCollector([]providers.Adapter{
		&stubAdapter{provider: enums.ProviderFonbet, quotes: []models.OddsQuote{validQuote(enums.ProviderFonbet)}},
		&stubAdapter{provider: enums.ProviderPinnacle, delay: 5 * time.Second},
	}, 50*time.Millisecond, 10)

	start := time.Now()
	quotes, reports := c.Collect(context.Background())
	assert.Less(t, time.Since(start), 2*time.Second)

	assert.Len(t, quotes, 1)
	require.Len(t, reports, 2)
	assert.ErrorIs(t, reports[1].Err, context.DeadlineExceeded)
}
