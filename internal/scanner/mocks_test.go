package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/akazantsev/surebet/internal/pkg/enums"
	"github.com/akazantsev/surebet/internal/pkg/models"
)

// memArbStore is an in-memory SentArbStorage for pipeline tests.
type memArbStore struct {
	mu      sync.Mutex
	rows    map[string]*models.SentArbitrage
	findErr error
	insErr  error
}

func newMemArbStore() *memArbStore {
	return &memArbStore{rows: map[string]*models.SentArbitrage{}}
}

func (m *memArbStore) FindRecent(_ context.Context, arbHash string, window time.Duration) (*models.SentArbitrage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	sa, ok := m.rows[arbHash]
	if !ok || time.Since(sa.SentAt) > window {
		return nil, nil
	}
	cp := *sa
	return &cp, nil
}

func (m *memArbStore) Insert(_ context.Context, sa *models.SentArbitrage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insErr != nil {
		return m.insErr
	}
	if _, exists := m.rows[sa.ArbHash]; exists {
		return nil // ON CONFLICT DO NOTHING
	}
	cp := *sa
	m.rows[sa.ArbHash] = &cp
	return nil
}

func (m *memArbStore) UpdateMessageID(_ context.Context, arbHash string, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sa, ok := m.rows[arbHash]; ok {
		sa.MessageID = messageID
	}
	return nil
}

func (m *memArbStore) MarkExpired(_ context.Context, arbHash string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sa, ok := m.rows[arbHash]; ok {
		t := at
		sa.ExpiredAt = &t
	}
	return nil
}

func (m *memArbStore) LoadActive(_ context.Context, window time.Duration) ([]models.SentArbitrage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SentArbitrage
	for _, sa := range m.rows {
		if sa.ExpiredAt == nil && time.Since(sa.SentAt) <= window {
			out = append(out, *sa)
		}
	}
	return out, nil
}

func (m *memArbStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for h, sa := range m.rows {
		if sa.SentAt.Before(cutoff) {
			delete(m.rows, h)
			n++
		}
	}
	return n, nil
}

func (m *memArbStore) Close() error { return nil }

func (m *memArbStore) get(arbHash string) *models.SentArbitrage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[arbHash]
}

// memQuoteStore records batches handed to BatchInsert.
type memQuoteStore struct {
	mu      sync.Mutex
	batches [][]models.OddsQuote
	err     error
}

func (m *memQuoteStore) BatchInsert(_ context.Context, quotes []models.OddsQuote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := make([]models.OddsQuote, len(quotes))
	copy(cp, quotes)
	m.batches = append(m.batches, cp)
	return nil
}

func (m *memQuoteStore) Close() error { return nil }

// fakeChannel records sends and edits; sendErr makes Send fail.
type fakeChannel struct {
	mu      sync.Mutex
	nextID  int
	sends   []string
	edits   map[int]string
	sendErr error
	editErr error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{edits: map[int]string{}}
}

func (f *fakeChannel) Send(_ context.Context, text string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.nextID++
	f.sends = append(f.sends, text)
	return f.nextID, nil
}

func (f *fakeChannel) Edit(_ context.Context, messageID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edits[messageID] = text
	return nil
}

func (f *fakeChannel) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

// stubAdapter serves a fixed quote list, or an error.
type stubAdapter struct {
	provider enums.Provider
	quotes   []models.OddsQuote
	err      error
	delay    time.Duration
}

func (s *stubAdapter) FetchQuotes(ctx context.Context) ([]models.OddsQuote, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return s.quotes, s.err
	}
	return s.quotes, nil
}

func (s *stubAdapter) Provider() enums.Provider { return s.provider }

var errBoom = fmt.Errorf("boom")
