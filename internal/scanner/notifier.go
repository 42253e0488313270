package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akazantsev/surebet/internal/pkg/models"
	"github.com/akazantsev/surebet/internal/pkg/storage"
)

// Detection is one deduplicated opportunity of the current cycle: the
// content hash, the full computation, and the previously notified record
// when the dedup window already holds one.
type Detection struct {
	Hash string
	Arb  *models.ArbitrageOpportunity
	Prev *models.SentArbitrage
}

// Lifecycle drives notifications through NEW → SENT → EXPIRED.
//
// A new opportunity is sent first and persisted only after the channel
// confirms delivery; if the send fails, no record exists and the next cycle
// retries it as new. A previously sent opportunity that is still detected
// stays silent. One that disappears from a cycle gets its original message
// edited with an expired marker and its record flagged.
type Lifecycle struct {
	store   storage.SentArbStorage
	channel Channel

	// active maps arbHash → sent record for every opportunity whose
	// message may still need an expiry edit. Cycles run sequentially,
	// so no locking.
	active map[string]*models.SentArbitrage
}

func NewLifecycle(store storage.SentArbStorage, channel Channel) *Lifecycle {
	return &Lifecycle{
		store:   store,
		channel: channel,
		active:  map[string]*models.SentArbitrage{},
	}
}

// Restore rebuilds the active set from storage after a restart, so
// opportunities sent by a previous process still expire cleanly.
func (l *Lifecycle) Restore(ctx context.Context, window time.Duration) error {
	rows, err := l.store.LoadActive(ctx, window)
	if err != nil {
		return fmt.Errorf("load active arbitrages: %w", err)
	}
	for i := range rows {
		sa := rows[i]
		l.active[sa.ArbHash] = &sa
	}
	if len(rows) > 0 {
		slog.Info("Restored active notifications", "count", len(rows))
	}
	return nil
}

// ActiveCount returns how many notifications currently await expiry.
func (l *Lifecycle) ActiveCount() int {
	return len(l.active)
}

// Reconcile applies one cycle's detections: sends the new ones, keeps the
// repeated ones alive, and expires every active notification absent from
// the cycle. Send and edit failures are logged and counted, never fatal.
func (l *Lifecycle) Reconcile(ctx context.Context, detections []Detection) (sent, expired int) {
	seen := make(map[string]bool, len(detections))

	for _, d := range detections {
		seen[d.Hash] = true

		if d.Prev != nil {
			// Already notified inside the window. Track it so it can be
			// expired later even if this process never sent it.
			if _, ok := l.active[d.Hash]; !ok && d.Prev.ExpiredAt == nil {
				l.active[d.Hash] = d.Prev
			}
			continue
		}

		if l.notify(ctx, d) {
			sent++
		}
	}

	for hash, sa := range l.active {
		if seen[hash] {
			continue
		}
		l.expire(ctx, sa)
		delete(l.active, hash)
		expired++
	}

	return sent, expired
}

// notify sends one new opportunity and records it. Persisting happens after
// the send so a failed delivery leaves no trace and gets retried next cycle.
func (l *Lifecycle) notify(ctx context.Context, d Detection) bool {
	text := FormatOpportunity(d.Arb)

	msgID, err := l.channel.Send(ctx, text)
	if err != nil {
		notificationErrors.Inc()
		slog.Error("Notification send failed, will retry next cycle",
			"match", d.Arb.Teams, "profit_percent", d.Arb.ProfitPct, "error", err)
		return false
	}

	sa := &models.SentArbitrage{
		ArbHash:   d.Hash,
		Teams:     d.Arb.Teams,
		MatchTime: d.Arb.MatchTime,
		SportID:   d.Arb.SportID,
		BetTypeID: d.Arb.BetTypeID,
		Margin:    d.Arb.Margin,
		BestOdds:  d.Arb.BestOdds,
		ProfitPct: d.Arb.ProfitPct,
		SentAt:    time.Now().UTC(),
		MessageID: msgID,
	}

	if err := l.store.Insert(ctx, sa); err != nil {
		// The message is out; keep tracking it in memory so it can still
		// expire, even though dedup may re-send after a restart.
		slog.Error("Failed to persist sent arbitrage", "arb_hash", d.Hash, "error", err)
	} else if err := l.store.UpdateMessageID(ctx, d.Hash, msgID); err != nil {
		slog.Error("Failed to store message id", "arb_hash", d.Hash, "message_id", msgID, "error", err)
	}

	l.active[d.Hash] = sa
	slog.Info("Notification sent",
		"match", d.Arb.Teams, "profit_percent", d.Arb.ProfitPct, "message_id", msgID)
	return true
}

// expire edits the original message with an expired marker and flags the
// stored record. The hash leaves the active set regardless of edit outcome:
// a vanished opportunity must never be edited twice.
func (l *Lifecycle) expire(ctx context.Context, sa *models.SentArbitrage) {
	now := time.Now().UTC()

	if sa.MessageID != 0 {
		text := "⚠️ *EXPIRED*\n\n" + FormatSent(sa)
		if err := l.channel.Edit(ctx, sa.MessageID, text); err != nil {
			notificationErrors.Inc()
			slog.Error("Expiry edit failed", "arb_hash", sa.ArbHash, "message_id", sa.MessageID, "error", err)
		}
	}

	if err := l.store.MarkExpired(ctx, sa.ArbHash, now); err != nil {
		slog.Error("Failed to mark arbitrage expired", "arb_hash", sa.ArbHash, "error", err)
	}

	slog.Info("Notification expired", "match", sa.Teams, "arb_hash", sa.ArbHash)
}

// FormatOpportunity renders a detected opportunity as a Telegram Markdown
// message.
func FormatOpportunity(arb *models.ArbitrageOpportunity) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("🎯 *Arbitrage %.2f%%*\n\n", arb.ProfitPct))
	builder.WriteString(fmt.Sprintf("*%s*\n", escapeMarkdown(arb.Teams)))
	builder.WriteString(fmt.Sprintf("🏆 %s | %s", arb.SportID.Label(), arb.BetTypeID.Label()))
	if arb.BetTypeID.HasLine() {
		builder.WriteString(fmt.Sprintf(" (%.2f)", arb.Margin))
	}
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("🕐 Event: %s\n\n", formatTime(arb.MatchTime)))

	for i, b := range arb.BestOdds {
		builder.WriteString(fmt.Sprintf("%s: *%.2f* @ %s",
			arb.BetTypeID.OutcomeLabel(i), b.Price, b.Provider.Name()))
		if i < len(arb.StakePct) {
			builder.WriteString(fmt.Sprintf(" — stake %.1f%%", arb.StakePct[i]))
		}
		builder.WriteString("\n")
	}

	builder.WriteString(fmt.Sprintf("\n💰 Guaranteed profit: *%.2f%%*\n", arb.ProfitPct))
	return builder.String()
}

// FormatSent re-renders a stored record for the expiry edit. Stakes are
// recomputed from the stored best odds.
func FormatSent(sa *models.SentArbitrage) string {
	arb := &models.ArbitrageOpportunity{
		Teams:     sa.Teams,
		MatchTime: sa.MatchTime,
		SportID:   sa.SportID,
		BetTypeID: sa.BetTypeID,
		Margin:    sa.Margin,
		BestOdds:  sa.BestOdds,
		ProfitPct: sa.ProfitPct,
	}

	var s float64
	for _, b := range sa.BestOdds {
		if b.Price > 0 {
			s += 1 / b.Price
		}
	}
	if s > 0 {
		arb.StakePct = make([]float64, len(sa.BestOdds))
		for i, b := range sa.BestOdds {
			arb.StakePct[i] = (1 / b.Price) / s * 100
		}
	}

	return FormatOpportunity(arb)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
