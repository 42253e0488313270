package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/akazantsev/surebet/internal/pkg/config"
	"github.com/akazantsev/surebet/internal/pkg/models"
)

// QuoteCache keeps the latest quote per (provider, market) in Redis with a
// TTL so external consumers always read a fresh line. Cache failures are
// never fatal to a cycle.
type QuoteCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewQuoteCache(cfg *config.RedisConfig) (*QuoteCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &QuoteCache{client: client, ttl: cfg.QuoteTTL}, nil
}

// StoreQuotes writes each quote under quotes:<bookmaker>:<market key>.
// The first error aborts the write; the remaining quotes simply age out.
func (c *QuoteCache) StoreQuotes(ctx context.Context, quotes []models.OddsQuote) error {
	pipe := c.client.Pipeline()
	for i := range quotes {
		q := &quotes[i]
		key := quoteKey(q)
		data, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("failed to marshal quote: %w", err)
		}
		pipe.Set(ctx, key, data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache quotes: %w", err)
	}
	return nil
}

// GetQuotesByProvider returns all cached quotes for one bookmaker.
func (c *QuoteCache) GetQuotesByProvider(ctx context.Context, provider string) ([]models.OddsQuote, error) {
	pattern := fmt.Sprintf("quotes:%s:*", provider)
	keys, err := c.client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get keys: %w", err)
	}

	var quotes []models.OddsQuote
	for _, key := range keys {
		data, err := c.client.Get(ctx, key).Result()
		if err != nil {
			continue // key expired between KEYS and GET
		}
		var q models.OddsQuote
		if err := json.Unmarshal([]byte(data), &q); err != nil {
			continue // skip invalid data
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// Close closes the Redis connection.
func (c *QuoteCache) Close() error {
	return c.client.Close()
}

func quoteKey(q *models.OddsQuote) string {
	return fmt.Sprintf("quotes:%s:%s|%s|%d|%.2f",
		q.ProviderID.Name(), q.TeamHome, q.TeamAway, q.BetTypeID, q.Margin)
}
