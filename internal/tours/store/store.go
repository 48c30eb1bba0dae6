package store

import (
	"sync"
	"time"

	"tourly/pkg/clock"
	"tourly/pkg/model"
)

// Store owns every tour record, the idempotency ledger, and the per-customer
// daily quota counters. A single mutex covers all three collections; the only
// way to touch them is through a Tx handle inside Atomically, so a caller
// cannot read under the lock and write outside it.
type Store struct {
	mu sync.Mutex

	clk    clock.Clock
	dayKey clock.DayKeyFunc
	ttl    time.Duration

	tours  map[string]*model.Tour
	ledger map[string]ledgerEntry
	quotas map[quotaKey]int
}

type quotaKey struct {
	customerID string
	day        string
}

type ledgerEntry struct {
	tourID    string
	createdAt time.Time
	expiresAt time.Time
}

func New(clk clock.Clock, dayKey clock.DayKeyFunc, idempotencyTTL time.Duration) *Store {
	return &Store{
		clk:    clk,
		dayKey: dayKey,
		ttl:    idempotencyTTL,
		tours:  make(map[string]*model.Tour),
		ledger: make(map[string]ledgerEntry),
		quotas: make(map[quotaKey]int),
	}
}

// Tx exposes the read-modify-write primitives while the store lock is held.
// It is only valid for the duration of the Atomically callback.
type Tx struct {
	s   *Store
	now time.Time
}

// Atomically runs fn under the store lock. The deferred unlock releases the
// lock even when fn panics, so a fault inside the critical section can never
// leave the store permanently locked.
func (s *Store) Atomically(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{s: s, now: s.clk.Now()})
}

// Now returns the instant the critical section was entered. Every decision in
// one protocol run (quota day, ledger expiry, record timestamps) uses this
// single reading of the clock.
func (tx *Tx) Now() time.Time {
	return tx.now
}

// Replay resolves a fingerprint against the idempotency ledger. Entries past
// their expiry are treated as absent and dropped on the spot.
func (tx *Tx) Replay(fingerprint string) (*model.Tour, bool) {
	entry, ok := tx.s.ledger[fingerprint]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.After(tx.now) {
		delete(tx.s.ledger, fingerprint)
		return nil, false
	}
	tour, ok := tx.s.tours[entry.tourID]
	if !ok {
		return nil, false
	}
	return copyTour(tour), true
}

// RecordFingerprint stores a ledger entry for a committed creation.
func (tx *Tx) RecordFingerprint(fingerprint, tourID string) {
	tx.s.ledger[fingerprint] = ledgerEntry{
		tourID:    tourID,
		createdAt: tx.now,
		expiresAt: tx.now.Add(tx.s.ttl),
	}
}

// QuotaUsed returns how many effective creations the customer has made on the
// current quota day.
func (tx *Tx) QuotaUsed(customerID string) int {
	return tx.s.quotas[quotaKey{customerID: customerID, day: tx.s.dayKey(tx.now)}]
}

func (tx *Tx) IncrementQuota(customerID string) {
	tx.s.quotas[quotaKey{customerID: customerID, day: tx.s.dayKey(tx.now)}]++
}

// InsertTour commits a new record and opportunistically compacts expired
// ledger entries and stale quota days so memory stays bounded without a
// background sweeper.
func (tx *Tx) InsertTour(t *model.Tour) {
	tx.s.tours[t.ID] = copyTour(t)
	tx.purgeExpired()
}

func (tx *Tx) Tour(id string) (*model.Tour, bool) {
	t, ok := tx.s.tours[id]
	if !ok {
		return nil, false
	}
	return copyTour(t), true
}

// MarkCancelled flips a tour to CANCELLED. Already-cancelled tours are left
// untouched; the returned copy reflects the stored state either way.
func (tx *Tx) MarkCancelled(id string) (*model.Tour, bool) {
	t, ok := tx.s.tours[id]
	if !ok {
		return nil, false
	}
	if t.Status != model.StatusCancelled {
		t.Status = model.StatusCancelled
		t.UpdatedAt = tx.now
	}
	return copyTour(t), true
}

func (tx *Tx) purgeExpired() {
	for fp, entry := range tx.s.ledger {
		if !entry.expiresAt.After(tx.now) {
			delete(tx.s.ledger, fp)
		}
	}
	today := tx.s.dayKey(tx.now)
	for key := range tx.s.quotas {
		if key.day < today {
			delete(tx.s.quotas, key)
		}
	}
}

// Match copies every tour accepted by keep, taken in one lock acquisition so
// readers never observe a half-applied mutation.
func (s *Store) Match(keep func(t *model.Tour) bool) []*model.Tour {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Tour
	for _, t := range s.tours {
		if keep(t) {
			out = append(out, copyTour(t))
		}
	}
	return out
}

// GetTour returns a copy of a single record.
func (s *Store) GetTour(id string) (*model.Tour, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tours[id]
	if !ok {
		return nil, false
	}
	return copyTour(t), true
}

func copyTour(t *model.Tour) *model.Tour {
	c := *t
	return &c
}
