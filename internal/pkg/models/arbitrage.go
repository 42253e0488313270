package models

import (
	"time"

	"github.com/akazantsev/surebet/internal/pkg/enums"
)

// BestOdd is the best price found for one outcome slot and the provider
// that offered it.
type BestOdd struct {
	Price    float64        `json:"price"`
	Provider enums.Provider `json:"provider"`
}

// ArbitrageOpportunity is a combination of best prices across providers
// whose implied probabilities sum below 100%. Derived and ephemeral:
// it exists only within a cycle until hashed.
type ArbitrageOpportunity struct {
	Teams     string        `json:"teams"`
	MatchTime time.Time     `json:"match_time"`
	SportID   enums.Sport   `json:"sport_id"`
	BetTypeID enums.BetType `json:"bet_type_id"`
	Margin    float64       `json:"margin"`
	BestOdds  []BestOdd     `json:"best_odds"` // one entry per outcome slot
	ProfitPct float64       `json:"profit_pct"`
	StakePct  []float64     `json:"stake_pct"` // sums to 100 within fp tolerance
}

// SentArbitrage is the durable record of a notified opportunity.
// Created on first send, read back every cycle to decide re-send vs
// suppress vs expire, marked expired once absent from a cycle.
type SentArbitrage struct {
	ArbHash   string        `json:"arb_hash"`
	Teams     string        `json:"teams"`
	MatchTime time.Time     `json:"match_time"`
	SportID   enums.Sport   `json:"sport_id"`
	BetTypeID enums.BetType `json:"bet_type_id"`
	Margin    float64       `json:"margin"`
	BestOdds  []BestOdd     `json:"best_odds"`
	ProfitPct float64       `json:"profit_pct"`
	SentAt    time.Time     `json:"sent_at"`
	MessageID int           `json:"message_id,omitempty"` // 0 until the channel confirms the send
	ExpiredAt *time.Time    `json:"expired_at,omitempty"`
}
