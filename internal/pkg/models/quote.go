package models

import (
	"fmt"
	"time"

	"github.com/akazantsev/surebet/internal/pkg/enums"
)

// MinOdd is the lowest price a real market ever offers. Anything below is a
// provider glitch and the quote is dropped.
const MinOdd = 1.01

// OddsQuote is one bookmaker's prices for one market of one event,
// already normalized by the adapter (team spelling is provider-native,
// margin sign is from the named team's perspective, start time is UTC).
// Immutable once emitted.
type OddsQuote struct {
	TeamHome   string         `json:"team_home"`
	TeamAway   string         `json:"team_away"`
	ProviderID enums.Provider `json:"provider_id"`
	SportID    enums.Sport    `json:"sport_id"`
	BetTypeID  enums.BetType  `json:"bet_type_id"`
	Margin     float64        `json:"margin"` // line value for handicap/total, 0 for win markets
	Odd1       float64        `json:"odd1"`
	Odd2       float64        `json:"odd2"`
	Odd3       float64        `json:"odd3"`
	StartTime  time.Time      `json:"start_time"`
}

// Odds returns the prices for the outcome slots this bet type uses.
func (q *OddsQuote) Odds() []float64 {
	all := [3]float64{q.Odd1, q.Odd2, q.Odd3}
	n := q.BetTypeID.Outcomes()
	if n < 2 || n > 3 {
		return nil
	}
	return all[:n]
}

// MatchName returns the human-readable "Home vs Away" label.
func (q *OddsQuote) MatchName() string {
	return q.TeamHome + " vs " + q.TeamAway
}

// Validate checks the quote against the schema invariant: exactly the
// outcomes implied by the bet type are non-zero and all used odds are at
// least MinOdd. Invalid quotes must be dropped, never repaired.
func (q *OddsQuote) Validate() error {
	if !q.ProviderID.IsValid() {
		return fmt.Errorf("unknown provider id %d", q.ProviderID)
	}
	if !q.SportID.IsValid() {
		return fmt.Errorf("unknown sport id %d", q.SportID)
	}
	n := q.BetTypeID.Outcomes()
	if n == 0 {
		return fmt.Errorf("unknown bet type id %d", q.BetTypeID)
	}
	if q.TeamHome == "" || q.TeamAway == "" {
		return fmt.Errorf("missing team names")
	}
	all := [3]float64{q.Odd1, q.Odd2, q.Odd3}
	for i, odd := range all {
		if i < n {
			if odd < MinOdd {
				return fmt.Errorf("outcome %d price %.4f below floor %.2f", i+1, odd, MinOdd)
			}
		} else if odd != 0 {
			return fmt.Errorf("outcome %d must be unused for bet type %d, got %.4f", i+1, q.BetTypeID, odd)
		}
	}
	return nil
}
