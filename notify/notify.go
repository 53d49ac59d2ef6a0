// Package notify turns store expirations into job triggers.
//
// A Notifier subscribes to a store's expiration feed, keeps the keys that
// fall under its keyspace's work prefix, and queues one Trigger per key.
// Keys outside the prefix, including lock keys and keys written by other
// applications sharing the store, are dropped.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/xraph/bossbat/keyspace"
	"github.com/xraph/bossbat/store"
)

// ErrFeedClosed is returned by Run when the store ends the expiration feed
// while the notifier is still wanted.
var ErrFeedClosed = errors.New("notify: expiration feed closed")

// Trigger is a decoded expiration.
type Trigger struct {
	Name   string
	Demand bool
}

// Notifier listens for expirations and queues triggers.
type Notifier struct {
	feed   store.ExpiryFeed
	space  keyspace.Keyspace
	logger *slog.Logger
	out    chan Trigger
	ready  chan struct{}
}

// New creates a Notifier whose queue holds up to size pending triggers.
func New(feed store.ExpiryFeed, space keyspace.Keyspace, logger *slog.Logger, size int) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if size < 0 {
		size = 0
	}
	return &Notifier{
		feed:   feed,
		space:  space,
		logger: logger,
		out:    make(chan Trigger, size),
		ready:  make(chan struct{}),
	}
}

// Triggers returns the queue. It is closed when Run returns.
func (n *Notifier) Triggers() <-chan Trigger { return n.out }

// Ready is closed once Run has subscribed. Expirations before that are
// not seen.
func (n *Notifier) Ready() <-chan struct{} { return n.ready }

// Run subscribes and forwards triggers until ctx is cancelled or the feed
// closes. A full queue blocks the listener rather than dropping triggers.
func (n *Notifier) Run(ctx context.Context) error {
	defer close(n.out)

	keys, err := n.feed.Expirations(ctx)
	if err != nil {
		return err
	}
	close(n.ready)

	n.logger.Debug("listening for expirations", slog.String("prefix", n.space.Prefix()))

	for {
		select {
		case <-ctx.Done():
			return nil
		case key, ok := <-keys:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrFeedClosed
			}

			name, demand, ok := n.space.Decode(key)
			if !ok {
				continue
			}

			select {
			case n.out <- Trigger{Name: name, Demand: demand}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
