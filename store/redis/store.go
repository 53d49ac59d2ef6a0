package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	redsyncgoredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/bossbat/store"
)

var _ store.Store = (*Store)(nil)

// Option configures the Store.
type Option func(*Store)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithDB sets the logical database whose expirations are observed. By
// default it is read from the client options.
func WithDB(db int) Option {
	return func(s *Store) { s.db = db }
}

// WithoutConfigure skips enabling keyevent expiry notifications on the
// server. Use it when CONFIG is disabled and notifications are already on.
func WithoutConfigure() Option {
	return func(s *Store) { s.configure = false }
}

// Store implements store.Store backed by Redis.
type Store struct {
	client    goredis.UniversalClient
	locks     *redsync.Redsync
	logger    *slog.Logger
	db        int
	configure bool
}

// New creates a Redis-backed store and, unless WithoutConfigure is given,
// makes sure the server publishes expired keyevents. The caller owns the
// client lifecycle.
func New(ctx context.Context, client goredis.UniversalClient, opts ...Option) (*Store, error) {
	s := &Store{
		client:    client,
		locks:     redsync.New(redsyncgoredis.NewPool(client)),
		logger:    slog.Default(),
		configure: true,
	}
	if c, ok := client.(*goredis.Client); ok {
		s.db = c.Options().DB
	}
	for _, o := range opts {
		o(s)
	}

	if s.configure {
		if err := s.enableExpiryEvents(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Client returns the underlying Redis client.
func (s *Store) Client() goredis.UniversalClient { return s.client }

// Ping verifies the Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op; the caller owns the Redis client lifecycle.
func (s *Store) Close() error { return nil }

// SetNX runs SET key value PX ttl NX.
func (s *Store) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("bossbat/redis: setnx %s: %w", key, err)
	}
	return ok, nil
}

// Del removes key.
func (s *Store) Del(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("bossbat/redis: del %s: %w", key, err)
	}
	return nil
}

// enableExpiryEvents adds the E and x classes to notify-keyspace-events,
// keeping whatever classes are already enabled.
func (s *Store) enableExpiryEvents(ctx context.Context) error {
	current, err := s.client.ConfigGet(ctx, "notify-keyspace-events").Result()
	if err != nil {
		return fmt.Errorf("bossbat/redis: config get notify-keyspace-events: %w", err)
	}

	cur := current["notify-keyspace-events"]
	want := keyeventFlags(cur)
	if want == cur {
		return nil
	}

	if err := s.client.ConfigSet(ctx, "notify-keyspace-events", want).Err(); err != nil {
		return fmt.Errorf("bossbat/redis: config set notify-keyspace-events: %w", err)
	}
	s.logger.Info("enabled redis expiry notifications",
		slog.String("previous", cur),
		slog.String("current", want),
	)
	return nil
}

// keyeventFlags returns flags extended so that expired keyevents are
// published. "A" already includes "x".
func keyeventFlags(flags string) string {
	if !strings.Contains(flags, "E") {
		flags += "E"
	}
	if !strings.ContainsAny(flags, "xA") {
		flags += "x"
	}
	return flags
}
