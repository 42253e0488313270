package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/akazantsev/surebet/internal/pkg/config"
	"github.com/akazantsev/surebet/internal/pkg/enums"
	"github.com/akazantsev/surebet/internal/pkg/models"
)

// Ensure PostgresStorage implements both storage interfaces
var (
	_ QuoteStorage   = (*PostgresStorage)(nil)
	_ SentArbStorage = (*PostgresStorage)(nil)
)

// PostgresStorage stores odds quotes and sent arbitrages in PostgreSQL.
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage opens a connection, verifies it and creates the schema.
func NewPostgresStorage(cfg *config.PostgresConfig) (*PostgresStorage, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresStorage{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL storage initialized")
	return s, nil
}

func (s *PostgresStorage) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS odds_quotes (
		id SERIAL PRIMARY KEY,
		team_home VARCHAR(300) NOT NULL,
		team_away VARCHAR(300) NOT NULL,
		provider_id INTEGER NOT NULL,
		sport_id INTEGER NOT NULL,
		bet_type_id INTEGER NOT NULL,
		margin DECIMAL(10, 2) NOT NULL DEFAULT 0,
		odd1 DECIMAL(10, 4) NOT NULL,
		odd2 DECIMAL(10, 4) NOT NULL,
		odd3 DECIMAL(10, 4) NOT NULL DEFAULT 0,
		start_time TIMESTAMP NOT NULL,
		collected_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_odds_quotes_collected_at ON odds_quotes(collected_at DESC);
	CREATE INDEX IF NOT EXISTS idx_odds_quotes_provider ON odds_quotes(provider_id);

	CREATE TABLE IF NOT EXISTS sent_arbs (
		id SERIAL PRIMARY KEY,
		arb_hash VARCHAR(64) NOT NULL,
		teams VARCHAR(600) NOT NULL,
		match_time TIMESTAMP NOT NULL,
		sport_id INTEGER NOT NULL,
		bet_type_id INTEGER NOT NULL,
		margin DECIMAL(10, 2) NOT NULL DEFAULT 0,
		best_odds TEXT NOT NULL,
		profit_percent DECIMAL(10, 2) NOT NULL,
		sent_at TIMESTAMP NOT NULL,
		message_id INTEGER,
		expired_at TIMESTAMP,
		UNIQUE(arb_hash, sent_at)
	);

	CREATE INDEX IF NOT EXISTS idx_sent_arbs_hash ON sent_arbs(arb_hash);
	CREATE INDEX IF NOT EXISTS idx_sent_arbs_sent_at ON sent_arbs(sent_at DESC);
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

// BatchInsert writes all quotes of a cycle in one transaction.
// All-or-nothing: any failure rolls the whole batch back.
func (s *PostgresStorage) BatchInsert(ctx context.Context, quotes []models.OddsQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO odds_quotes (
		team_home, team_away, provider_id, sport_id, bet_type_id,
		margin, odd1, odd2, odd3, start_time
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range quotes {
		q := &quotes[i]
		if _, err := stmt.ExecContext(ctx,
			q.TeamHome, q.TeamAway, int(q.ProviderID), int(q.SportID), int(q.BetTypeID),
			q.Margin, q.Odd1, q.Odd2, q.Odd3, q.StartTime.UTC(),
		); err != nil {
			return fmt.Errorf("failed to insert quote: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quote batch: %w", err)
	}
	return nil
}

// FindRecent returns the latest row with this hash sent within the window,
// or nil if there is none.
func (s *PostgresStorage) FindRecent(ctx context.Context, arbHash string, window time.Duration) (*models.SentArbitrage, error) {
	query := `
	SELECT arb_hash, teams, match_time, sport_id, bet_type_id, margin,
	       best_odds, profit_percent, sent_at, message_id, expired_at
	FROM sent_arbs
	WHERE arb_hash = $1 AND sent_at > $2
	ORDER BY sent_at DESC
	LIMIT 1
	`
	cutoff := time.Now().UTC().Add(-window)
	row := s.db.QueryRowContext(ctx, query, arbHash, cutoff)
	sa, err := scanSentArb(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sent arb: %w", err)
	}
	return sa, nil
}

// Insert stores a newly sent arbitrage. A duplicate (hash, sentAt) insert is
// silently ignored so the new-vs-duplicate decision stays atomic under
// cross-process races.
func (s *PostgresStorage) Insert(ctx context.Context, sa *models.SentArbitrage) error {
	bestOdds, err := json.Marshal(sa.BestOdds)
	if err != nil {
		return fmt.Errorf("failed to marshal best odds: %w", err)
	}

	query := `
	INSERT INTO sent_arbs (
		arb_hash, teams, match_time, sport_id, bet_type_id, margin,
		best_odds, profit_percent, sent_at, message_id
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (arb_hash, sent_at) DO NOTHING
	`
	var messageID any
	if sa.MessageID != 0 {
		messageID = sa.MessageID
	}
	if _, err := s.db.ExecContext(ctx, query,
		sa.ArbHash, sa.Teams, sa.MatchTime.UTC(), int(sa.SportID), int(sa.BetTypeID),
		sa.Margin, string(bestOdds), sa.ProfitPct, sa.SentAt.UTC(), messageID,
	); err != nil {
		return fmt.Errorf("failed to insert sent arb: %w", err)
	}
	return nil
}

// UpdateMessageID records the channel message ID on the active row.
func (s *PostgresStorage) UpdateMessageID(ctx context.Context, arbHash string, messageID int) error {
	query := `UPDATE sent_arbs SET message_id = $2 WHERE arb_hash = $1 AND expired_at IS NULL`
	if _, err := s.db.ExecContext(ctx, query, arbHash, messageID); err != nil {
		return fmt.Errorf("failed to update message id: %w", err)
	}
	return nil
}

// MarkExpired flags the active row for the hash as expired.
func (s *PostgresStorage) MarkExpired(ctx context.Context, arbHash string, at time.Time) error {
	query := `UPDATE sent_arbs SET expired_at = $2 WHERE arb_hash = $1 AND expired_at IS NULL`
	if _, err := s.db.ExecContext(ctx, query, arbHash, at.UTC()); err != nil {
		return fmt.Errorf("failed to mark expired: %w", err)
	}
	return nil
}

// LoadActive returns non-expired rows sent within the window, for rebuilding
// the notifier's active set after a restart.
func (s *PostgresStorage) LoadActive(ctx context.Context, window time.Duration) ([]models.SentArbitrage, error) {
	query := `
	SELECT arb_hash, teams, match_time, sport_id, bet_type_id, margin,
	       best_odds, profit_percent, sent_at, message_id, expired_at
	FROM sent_arbs
	WHERE sent_at > $1 AND expired_at IS NULL
	ORDER BY sent_at ASC
	`
	cutoff := time.Now().UTC().Add(-window)
	rows, err := s.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query active arbs: %w", err)
	}
	defer rows.Close()

	var out []models.SentArbitrage
	for rows.Next() {
		sa, err := scanSentArb(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan active arb: %w", err)
		}
		out = append(out, *sa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// DeleteOlderThan removes rows sent before cutoff. Returns rows deleted.
func (s *PostgresStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sent_arbs WHERE sent_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old sent arbs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sent arbs: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSentArb(row rowScanner) (*models.SentArbitrage, error) {
	var sa models.SentArbitrage
	var bestOdds string
	var sportID, betTypeID int
	var messageID sql.NullInt64
	var expiredAt sql.NullTime

	err := row.Scan(
		&sa.ArbHash, &sa.Teams, &sa.MatchTime, &sportID, &betTypeID, &sa.Margin,
		&bestOdds, &sa.ProfitPct, &sa.SentAt, &messageID, &expiredAt,
	)
	if err != nil {
		return nil, err
	}

	sa.SportID = enums.Sport(sportID)
	sa.BetTypeID = enums.BetType(betTypeID)
	if messageID.Valid {
		sa.MessageID = int(messageID.Int64)
	}
	if expiredAt.Valid {
		t := expiredAt.Time
		sa.ExpiredAt = &t
	}
	if err := json.Unmarshal([]byte(bestOdds), &sa.BestOdds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal best odds: %w", err)
	}
	return &sa, nil
}
