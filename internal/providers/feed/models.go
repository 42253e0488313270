package feed

// Wire types for the generic JSON line feed. Provider gateways expose their
// prematch line in this shape; provider-specific request formats live on the
// gateway side, not here.

// LineResponse is the top-level feed payload.
type LineResponse struct {
	Events []LineEvent `json:"events"`
}

// LineEvent is one match with all its quoted markets.
type LineEvent struct {
	Home      string       `json:"home"`
	Away      string       `json:"away"`
	SportID   int          `json:"sportId"`
	KickoffMs int64        `json:"kickoffMs"` // unix milliseconds, preferred
	Kickoff   string       `json:"kickoff"`   // RFC3339 fallback, some gateways truncate the zone
	Markets   []LineMarket `json:"markets"`
}

// LineMarket is one market shape with its prices in outcome-slot order.
type LineMarket struct {
	BetTypeID int       `json:"betTypeId"`
	Line      float64   `json:"line"`   // handicap/total line, 0 for win markets
	Prices    []float64 `json:"prices"` // 2 or 3 entries depending on bet type
}
