package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"challan-reconciler/core/reconcile"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for unknown or expired session ids.
	ErrNotFound = errors.New("session not found")
	// ErrLimitReached is returned when a configured cap would be exceeded.
	ErrLimitReached = errors.New("session limit reached")
)

// Snapshot is a consistent copy of one session's state.
type Snapshot struct {
	ID        string              `json:"id"`
	Challan   *reconcile.Challan  `json:"challan"`
	Stickers  []reconcile.Sticker `json:"stickers"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Status summarizes a session without copying its records.
type Status struct {
	ID            string          `json:"id"`
	ChallanNumber string          `json:"challan_number"`
	ChallanDate   *reconcile.Date `json:"challan_date"`
	HasChallan    bool            `json:"has_challan"`
	Lines         int             `json:"lines"`
	Stickers      int             `json:"stickers"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NotAvailable stands in for a challan number that was never read.
const NotAvailable = "N/A"

type entry struct {
	mu        sync.Mutex
	challan   *reconcile.Challan
	stickers  []reconcile.Sticker
	createdAt time.Time
	updatedAt time.Time
	// removed is set under mu once the entry leaves the map
	removed bool
}

// Store keeps sessions in memory. Each session has its own lock so that
// independent sessions never contend; every read hands out copies.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	cfg      Config
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore(cfg Config) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		cfg:      cfg,
		now:      time.Now,
	}
}

// Create opens a new empty session and returns its id.
func (s *Store) Create() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		return "", fmt.Errorf("%w: %d open sessions", ErrLimitReached, len(s.sessions))
	}

	id := uuid.NewString()
	now := s.now()
	s.sessions[id] = &entry{createdAt: now, updatedAt: now}
	return id, nil
}

// Delete removes a session entirely.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Reset clears the challan and scan log but keeps the session open.
func (s *Store) Reset(id string) error {
	return s.update(id, func(e *entry) error {
		e.challan = nil
		e.stickers = nil
		return nil
	})
}

// SetChallan replaces the session challan.
func (s *Store) SetChallan(id string, challan *reconcile.Challan) error {
	c := challan.Clone()
	return s.update(id, func(e *entry) error {
		e.challan = c
		return nil
	})
}

// AppendStickers adds stickers to the scan log in the given order and
// returns the new log length.
func (s *Store) AppendStickers(id string, stickers ...reconcile.Sticker) (int, error) {
	add := reconcile.CloneStickers(stickers)
	var total int
	err := s.update(id, func(e *entry) error {
		if s.cfg.MaxStickers > 0 && len(e.stickers)+len(add) > s.cfg.MaxStickers {
			return fmt.Errorf("%w: at most %d stickers per session", ErrLimitReached, s.cfg.MaxStickers)
		}
		e.stickers = append(e.stickers, add...)
		total = len(e.stickers)
		return nil
	})
	return total, err
}

// Remaining returns how many more stickers the session accepts, or -1 when
// the scan log is unbounded.
func (s *Store) Remaining(id string) (int, error) {
	e, err := s.lock(id)
	if err != nil {
		return 0, err
	}
	defer e.mu.Unlock()
	if s.cfg.MaxStickers <= 0 {
		return -1, nil
	}
	return max(s.cfg.MaxStickers-len(e.stickers), 0), nil
}

// Snapshot returns a deep copy of the session state.
func (s *Store) Snapshot(id string) (*Snapshot, error) {
	e, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()
	return &Snapshot{
		ID:        id,
		Challan:   e.challan.Clone(),
		Stickers:  reconcile.CloneStickers(e.stickers),
		CreatedAt: e.createdAt,
		UpdatedAt: e.updatedAt,
	}, nil
}

// Status reports counts for a session.
func (s *Store) Status(id string) (*Status, error) {
	e, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	st := &Status{
		ID:            id,
		ChallanNumber: NotAvailable,
		HasChallan:    e.challan != nil,
		Stickers:      len(e.stickers),
		CreatedAt:     e.createdAt,
		UpdatedAt:     e.updatedAt,
	}
	if e.challan != nil {
		st.Lines = len(e.challan.Lines)
		if e.challan.Number != nil {
			st.ChallanNumber = *e.challan.Number
		}
		if e.challan.Date != nil {
			d := *e.challan.Date
			st.ChallanDate = &d
		}
	}
	return st, nil
}

// Len returns the number of open sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Expire drops sessions idle for longer than the configured window and
// returns how many were removed.
func (s *Store) Expire() int {
	idle := s.cfg.IdleTimeout()
	if idle <= 0 {
		return 0
	}
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		e.mu.Lock()
		stale := e.updatedAt.Before(cutoff)
		if stale {
			e.removed = true
		}
		e.mu.Unlock()
		if stale {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *Store) get(id string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// lock returns the live entry for id with its mutex held.
func (s *Store) lock(id string) (*entry, error) {
	e, err := s.get(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *Store) update(id string, fn func(e *entry) error) error {
	e, err := s.lock(id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()
	if err := fn(e); err != nil {
		return err
	}
	e.updatedAt = s.now()
	return nil
}
