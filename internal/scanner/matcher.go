package scanner

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akazantsev/surebet/internal/pkg/enums"
	"github.com/akazantsev/surebet/internal/pkg/models"
)

// Matcher groups quotes from different providers into comparable markets.
// Providers spell team and player names differently ("Novak Djokovic" vs
// "Djokovic N."), so grouping goes through a canonical representative token
// per side instead of the raw name.
type Matcher struct {
	tolerance time.Duration
}

// NewMatcher creates a matcher. tolerance is the start-time bucket used to
// absorb provider clock and precision differences.
func NewMatcher(tolerance time.Duration) *Matcher {
	if tolerance <= 0 {
		tolerance = 30 * time.Minute
	}
	return &Matcher{tolerance: tolerance}
}

// GroupQuotes builds one MarketGroup per distinct market key, keeping at
// most one quote per provider (last seen in the cycle wins). Groups quoted
// by fewer than 2 providers are dropped: no arbitrage is possible there.
// Quotes whose name reduction fails are excluded from matching only; the
// caller persists them regardless.
func (m *Matcher) GroupQuotes(quotes []models.OddsQuote) []*models.MarketGroup {
	groups := map[string]*models.MarketGroup{}
	unmatchable := 0

	for i := range quotes {
		q := quotes[i]
		key := m.marketKey(&q)
		if key == "" {
			unmatchable++
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &models.MarketGroup{
				Key:       key,
				SportID:   q.SportID,
				BetTypeID: q.BetTypeID,
				Margin:    q.Margin,
				StartTime: q.StartTime,
				TeamHome:  q.TeamHome,
				TeamAway:  q.TeamAway,
				Quotes:    map[enums.Provider]models.OddsQuote{},
			}
			groups[key] = g
		}
		// Last seen wins: adapters may report the same market twice in-cycle.
		g.Quotes[q.ProviderID] = q
		// Earliest kickoff wins. Adapters finish in arbitrary order, so the
		// group's match time must not depend on which quote arrived first:
		// downstream identity hashes it.
		if q.StartTime.Before(g.StartTime) {
			g.StartTime = q.StartTime
		}
	}

	out := make([]*models.MarketGroup, 0, len(groups))
	for _, g := range groups {
		if g.Providers() >= 2 {
			out = append(out, g)
		}
	}

	if unmatchable > 0 {
		slog.Debug("matcher: quotes excluded from matching", "count", unmatchable)
	}
	return out
}

// marketKey builds the grouping key:
// "homeToken|awayToken|sport|betType|margin|startBucket".
// Returns "" when name reduction yields no token for either side.
func (m *Matcher) marketKey(q *models.OddsQuote) string {
	home := canonicalTeamToken(q.TeamHome)
	away := canonicalTeamToken(q.TeamAway)
	if home == "" || away == "" {
		return ""
	}

	// Bucket start times so small clock differences between providers
	// still land in the same group.
	bucket := q.StartTime.UTC().Truncate(m.tolerance)

	return fmt.Sprintf("%s|%s|%d|%d|%.2f|%s",
		home, away, q.SportID, q.BetTypeID, q.Margin, bucket.Format(time.RFC3339))
}

// connectorWords are never representative of a team identity.
// Words of length <= 2 are skipped by the length rule already.
var connectorWords = map[string]bool{
	"the": true, "and": true, "del": true, "los": true, "las": true,
	"der": true, "van": true, "von": true, "dos": true, "das": true,
}

// canonicalTeamToken reduces a provider-native team or player name to one
// representative token: the longest meaningful word (length > 2, connector
// words skipped). Already-abbreviated 3-letter codes are kept verbatim.
// For doubles/pair events ("Partner1/Partner2") only the first listed
// player is used. Returns "" when no usable token exists.
func canonicalTeamToken(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	// Pair events: the second partner is spelled too inconsistently across
	// providers to be useful, the first one identifies the pair.
	if i := strings.Index(name, "/"); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}

	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}

	// "PSG", "CSK" and friends are already canonical.
	if len(words) == 1 && len(words[0]) == 3 && words[0] == strings.ToUpper(words[0]) {
		return strings.ToLower(words[0])
	}

	best := ""
	for _, w := range words {
		w = strings.Trim(w, ".,()-")
		lw := strings.ToLower(w)
		if len([]rune(lw)) <= 2 || connectorWords[lw] {
			continue
		}
		if len([]rune(lw)) > len([]rune(best)) {
			best = lw
		}
	}
	return best
}
