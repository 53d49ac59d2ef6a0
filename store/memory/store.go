// Package memory implements store.Store in process memory. Keys expire on
// timers and every subscriber receives every expiration, so several engines
// sharing one Store behave like several processes sharing one Redis
// database. Intended for unit testing and development.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/xraph/bossbat"
	"github.com/xraph/bossbat/store"
)

var _ store.Store = (*Store)(nil)

type entry struct {
	value    string
	deadline time.Time
	timer    *time.Timer
	gen      uint64
}

type lockEntry struct {
	token string
	until time.Time
}

// Store is an in-memory store.Store. Safe for concurrent access.
type Store struct {
	mu sync.Mutex

	keys  map[string]*entry
	locks map[string]lockEntry
	subs  map[uint64]*subscriber

	gen     uint64
	nextSub uint64
	tokens  uint64

	closed  bool
	closeCh chan struct{}
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		keys:    make(map[string]*entry),
		locks:   make(map[string]lockEntry),
		subs:    make(map[uint64]*subscriber),
		closeCh: make(chan struct{}),
	}
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Ping fails only after Close.
func (m *Store) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return bossbat.ErrStoreClosed
	}
	return nil
}

// Close stops all timers and ends every expiration subscription.
func (m *Store) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for _, e := range m.keys {
		e.timer.Stop()
	}
	close(m.closeCh)
	return nil
}

// ──────────────────────────────────────────────────
// KeyStore
// ──────────────────────────────────────────────────

// SetNX creates key with an expiry only if it is absent.
func (m *Store) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, fmt.Errorf("bossbat/memory: set %q: invalid expire time %v", key, ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, bossbat.ErrStoreClosed
	}
	if _, exists := m.keys[key]; exists {
		return false, nil
	}

	m.gen++
	gen := m.gen
	m.keys[key] = &entry{
		value:    value,
		deadline: time.Now().Add(ttl),
		timer:    time.AfterFunc(ttl, func() { m.expire(key, gen) }),
		gen:      gen,
	}
	return true, nil
}

// Del removes key without emitting an expiration.
func (m *Store) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return bossbat.ErrStoreClosed
	}
	if e, ok := m.keys[key]; ok {
		e.timer.Stop()
		delete(m.keys, key)
	}
	return nil
}

// Get returns the value stored under key.
func (m *Store) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.keys[key]
	if !ok {
		return "", false
	}
	return e.value, true
}

// TTL returns the remaining lifetime of key.
func (m *Store) TTL(key string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.keys[key]
	if !ok {
		return 0, false
	}
	return time.Until(e.deadline), true
}

// expire removes key if it still belongs to generation gen and notifies
// every subscriber.
func (m *Store) expire(key string, gen uint64) {
	m.mu.Lock()
	e, ok := m.keys[key]
	if !ok || e.gen != gen || m.closed {
		m.mu.Unlock()
		return
	}
	delete(m.keys, key)
	subs := make([]*subscriber, 0, len(m.subs))
	for _, s := range m.subs {
		subs = append(subs, s)
	}
	m.mu.Unlock()

	for _, s := range subs {
		s.push(key)
	}
}

// ──────────────────────────────────────────────────
// ExpiryFeed
// ──────────────────────────────────────────────────

type subscriber struct {
	mu      sync.Mutex
	pending []string
	notify  chan struct{}
}

func (s *subscriber) push(key string) {
	s.mu.Lock()
	s.pending = append(s.pending, key)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscriber) drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.pending
	s.pending = nil
	return batch
}

// Expirations subscribes to key expirations. Delivery never blocks the
// expiring timer; keys queue per subscriber until read.
func (m *Store) Expirations(ctx context.Context) (<-chan string, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, bossbat.ErrStoreClosed
	}
	m.nextSub++
	subID := m.nextSub
	sub := &subscriber{notify: make(chan struct{}, 1)}
	m.subs[subID] = sub
	m.mu.Unlock()

	out := make(chan string)
	go func() {
		defer close(out)
		defer func() {
			m.mu.Lock()
			delete(m.subs, subID)
			m.mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-m.closeCh:
				return
			case <-sub.notify:
			}
			for _, key := range sub.drain() {
				select {
				case out <- key:
				case <-ctx.Done():
					return
				case <-m.closeCh:
					return
				}
			}
		}
	}()
	return out, nil
}

// ──────────────────────────────────────────────────
// Locker
// ──────────────────────────────────────────────────

type lock struct {
	store *Store
	name  string
	token string
}

// Acquire takes the named lock for at most ttl, without retrying.
func (m *Store) Acquire(_ context.Context, name string, ttl time.Duration) (store.Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, bossbat.ErrStoreClosed
	}

	now := time.Now()
	if held, ok := m.locks[name]; ok && held.until.After(now) {
		return nil, store.ErrLockNotAcquired
	}

	m.tokens++
	token := strconv.FormatUint(m.tokens, 10)
	m.locks[name] = lockEntry{token: token, until: now.Add(ttl)}
	return &lock{store: m, name: name, token: token}, nil
}

// Release drops the lock if this holder still owns it.
func (l *lock) Release(_ context.Context) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	if held, ok := l.store.locks[l.name]; ok && held.token == l.token {
		delete(l.store.locks, l.name)
	}
	return nil
}
