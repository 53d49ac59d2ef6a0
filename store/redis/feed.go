package redis

import (
	"context"
	"fmt"
	"log/slog"
)

// expiredChannel is the keyevent channel for expirations in db.
func expiredChannel(db int) string {
	return fmt.Sprintf("__keyevent@%d__:expired", db)
}

// Expirations subscribes to the expired keyevent channel of the store's
// database. go-redis resubscribes on its own after reconnects; the channel
// closes when ctx is done.
func (s *Store) Expirations(ctx context.Context) (<-chan string, error) {
	channel := expiredChannel(s.db)
	ps := s.client.Subscribe(ctx, channel)

	// Wait for the subscription confirmation so no expiry published after
	// this call returns is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("bossbat/redis: subscribe %s: %w", channel, err)
	}

	msgs := ps.Channel()
	out := make(chan string)
	go func() {
		defer close(out)
		defer func() {
			if err := ps.Close(); err != nil {
				s.logger.Warn("close expiry subscription", slog.String("error", err.Error()))
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	s.logger.Debug("subscribed to expirations", slog.String("channel", channel))
	return out, nil
}
