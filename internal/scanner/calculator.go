package scanner

import (
	"sort"

	"github.com/akazantsev/surebet/internal/pkg/enums"
	"github.com/akazantsev/surebet/internal/pkg/models"
)

// Evaluate checks one market group for a profitable combination of
// best-priced outcomes across providers.
//
// For an n-outcome market it takes the maximum price per outcome slot and
// computes s = Σ 1/best_i. An arbitrage exists iff s < 1:
// backing every outcome with stakes proportional to 1/best_i guarantees
// profit (1/s − 1) regardless of the result.
//
// Pure function of the group; prices are never rounded here — rounding
// happens only at display/hash time so the profitability test does not
// accumulate error.
func Evaluate(g *models.MarketGroup) (models.ArbitrageOpportunity, bool) {
	n := g.BetTypeID.Outcomes()
	if n < 2 || g.Providers() < 2 {
		return models.ArbitrageOpportunity{}, false
	}

	// Iterate providers in ID order so equal best prices always resolve to
	// the same provider and repeated evaluation yields identical results.
	providerIDs := make([]int, 0, len(g.Quotes))
	for p := range g.Quotes {
		providerIDs = append(providerIDs, int(p))
	}
	sort.Ints(providerIDs)

	best := make([]models.BestOdd, n)
	for _, pid := range providerIDs {
		q := g.Quotes[enums.Provider(pid)]
		odds := q.Odds()
		if len(odds) != n {
			continue
		}
		for i := 0; i < n; i++ {
			if odds[i] > best[i].Price {
				best[i] = models.BestOdd{Price: odds[i], Provider: enums.Provider(pid)}
			}
		}
	}

	var s float64
	for i := range best {
		if best[i].Price <= 0 {
			// Outcome missing from every provider in the group.
			return models.ArbitrageOpportunity{}, false
		}
		s += 1 / best[i].Price
	}
	if s >= 1 {
		return models.ArbitrageOpportunity{}, false
	}

	stakes := make([]float64, n)
	for i := range best {
		stakes[i] = (1 / best[i].Price) / s * 100
	}

	return models.ArbitrageOpportunity{
		Teams:     g.MatchName(),
		MatchTime: g.StartTime,
		SportID:   g.SportID,
		BetTypeID: g.BetTypeID,
		Margin:    g.Margin,
		BestOdds:  best,
		ProfitPct: (1/s - 1) * 100,
		StakePct:  stakes,
	}, true
}
