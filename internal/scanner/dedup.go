package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/akazantsev/surebet/internal/pkg/models"
	"github.com/akazantsev/surebet/internal/pkg/storage"
)

// ArbHash derives the content identity of an opportunity. Two detections
// hash equal iff they describe the same match, market and price
// combination, so a re-detected opportunity with moved prices is a new one.
//
// The canonical string uses RFC3339 UTC time and 2-decimal prices sorted
// ascending, so provider order and sub-cent float noise never change the
// hash. Team names are deliberately excluded: spelling differs per
// provider, while time + market + prices already pin the event down.
func ArbHash(arb *models.ArbitrageOpportunity) string {
	odds := make([]float64, len(arb.BestOdds))
	for i, b := range arb.BestOdds {
		odds[i] = b.Price
	}
	sort.Float64s(odds)

	var sb strings.Builder
	sb.WriteString(arb.MatchTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "|%d|%.2f", arb.BetTypeID, arb.Margin)
	for _, o := range odds {
		fmt.Fprintf(&sb, "|%.2f", o)
	}
	fmt.Fprintf(&sb, "|%.2f", arb.ProfitPct)

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// Deduplicator decides whether a detected opportunity is new within the
// suppression window or a repeat of one already notified.
type Deduplicator struct {
	store  storage.SentArbStorage
	window time.Duration
}

func NewDeduplicator(store storage.SentArbStorage, window time.Duration) *Deduplicator {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Deduplicator{store: store, window: window}
}

// Window returns the suppression window.
func (d *Deduplicator) Window() time.Duration {
	return d.window
}

// Check returns the previously sent record for this opportunity if one
// exists inside the window, or nil when the opportunity is new. Lookup
// errors are returned as-is: on storage trouble the caller must skip the
// opportunity rather than risk a duplicate notification.
func (d *Deduplicator) Check(ctx context.Context, arb *models.ArbitrageOpportunity) (string, *models.SentArbitrage, error) {
	hash := ArbHash(arb)
	prev, err := d.store.FindRecent(ctx, hash, d.window)
	if err != nil {
		return hash, nil, fmt.Errorf("dedup lookup: %w", err)
	}
	return hash, prev, nil
}
