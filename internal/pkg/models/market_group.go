package models

import (
	"time"

	"github.com/akazantsev/surebet/internal/pkg/enums"
)

// MarketGroup is the set of quotes for one comparable market across
// providers: same canonical teams, sport, bet type, margin and start-time
// bucket. At most one quote per provider (last seen in the cycle wins).
// Built fresh each cycle, never persisted.
type MarketGroup struct {
	Key       string
	SportID   enums.Sport
	BetTypeID enums.BetType
	Margin    float64
	StartTime time.Time // earliest kickoff across the group's quotes
	TeamHome  string    // provider-native spelling of the first quote seen
	TeamAway  string
	Quotes    map[enums.Provider]OddsQuote
}

// Providers returns how many distinct providers quote this market.
func (g *MarketGroup) Providers() int {
	return len(g.Quotes)
}

// MatchName returns the human-readable "Home vs Away" label.
func (g *MarketGroup) MatchName() string {
	return g.TeamHome + " vs " + g.TeamAway
}
