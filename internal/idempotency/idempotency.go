// Package idempotency lets clients retry checkout safely with an
// Idempotency-Key header.
package idempotency

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrInFlight is returned by Reserve while another request holds the key.
var ErrInFlight = errors.New("idempotency key is in use by another request")

// ReserveTTL bounds how long a key stays reserved without being completed,
// so a lost Complete does not lock the key for the full record TTL.
const ReserveTTL = time.Minute

func reserveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > ReserveTTL {
		return ReserveTTL
	}
	return ttl
}

// Record links a key to the order it produced. OrderID is uuid.Nil while the
// request that reserved the key is still running.
type Record struct {
	Key       string    `json:"key"`
	OrderID   uuid.UUID `json:"order_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Record) Completed() bool {
	return r.OrderID != uuid.Nil
}

type Store interface {
	// Reserve claims key. It returns (nil, nil) when the caller now owns the
	// key, the stored record when the key already completed, and ErrInFlight
	// when it is reserved but not completed.
	Reserve(ctx context.Context, key string) (*Record, error)
	Complete(ctx context.Context, key string, orderID uuid.UUID) error
	// Release drops a reservation after a failed request so it can be retried.
	Release(ctx context.Context, key string) error
}

// MemoryStore is the in-process Store used in tests and when Redis is not
// configured.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	record    Record
	expiresAt time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		records: map[string]memoryEntry{},
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *MemoryStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *MemoryStore) Reserve(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.records[key]; ok && now.Before(e.expiresAt) {
		if !e.record.Completed() {
			return nil, ErrInFlight
		}
		rec := e.record
		return &rec, nil
	}

	s.records[key] = memoryEntry{
		record:    Record{Key: key, CreatedAt: now},
		expiresAt: now.Add(reserveTTL(s.ttl)),
	}
	return nil, nil
}

func (s *MemoryStore) Complete(_ context.Context, key string, orderID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := s.records[key]
	if e.record.Key == "" {
		e.record = Record{Key: key, CreatedAt: now}
	}
	e.record.OrderID = orderID
	e.expiresAt = now.Add(s.ttl)
	s.records[key] = e
	return nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}
