package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akazantsev/surebet/internal/pkg/config"
	"github.com/akazantsev/surebet/internal/pkg/enums"
	"github.com/akazantsev/surebet/internal/pkg/models"
)

type noopAdapter struct{}

func (noopAdapter) FetchQuotes(context.Context) ([]models.OddsQuote, error) { return nil, nil }
func (noopAdapter) Provider() enums.Provider                                { return enums.ProviderFonbet }

func TestBuildRosterInheritsFetchTimeout(t *testing.T) {
	var seen []config.ProviderConfig
	Register("timeout-recorder", func(cfg config.ProviderConfig) (Adapter, error) {
		seen = append(seen, cfg)
		return noopAdapter{}, nil
	})

	roster, err := BuildRoster([]config.ProviderConfig{
		{Name: "fonbet", Type: "timeout-recorder"},
		{Name: "pinnacle", Type: "timeout-recorder", Timeout: 5 * time.Second},
	}, 20*time.Second)
	require.NoError(t, err)
	require.Len(t, roster, 2)

	require.Len(t, seen, 2)
	assert.Equal(t, 20*time.Second, seen[0].Timeout, "unset timeout inherits the scanner default")
	assert.Equal(t, 5*time.Second, seen[1].Timeout, "explicit timeout wins")
}

func TestBuildRosterUnknownType(t *testing.T) {
	_, err := BuildRoster([]config.ProviderConfig{
		{Name: "fonbet", Type: "no-such-adapter"},
	}, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-adapter")
}
