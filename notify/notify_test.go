package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/bossbat/keyspace"
	"github.com/xraph/bossbat/notify"
)

// feedSpy hands out a channel the test writes to.
type feedSpy struct {
	ch  chan string
	err error
}

func (f *feedSpy) Expirations(context.Context) (<-chan string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ch, nil
}

func start(t *testing.T, feed *feedSpy, size int) (*notify.Notifier, context.CancelFunc, <-chan error) {
	t.Helper()
	n := notify.New(feed, keyspace.New("bossbat"), nil, size)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()
	return n, cancel, done
}

func next(t *testing.T, n *notify.Notifier) notify.Trigger {
	t.Helper()
	select {
	case tr, ok := <-n.Triggers():
		if !ok {
			t.Fatal("queue closed")
		}
		return tr
	case <-time.After(time.Second):
		t.Fatal("no trigger")
	}
	return notify.Trigger{}
}

func TestNotifier_DecodesKeys(t *testing.T) {
	feed := &feedSpy{ch: make(chan string, 8)}
	n, cancel, _ := start(t, feed, 8)
	defer cancel()

	feed.ch <- "bossbat:work:report"
	feed.ch <- "bossbat:work:demand:report"
	feed.ch <- "bossbat:work:tenant:42:sync"

	want := []notify.Trigger{
		{Name: "report"},
		{Name: "report", Demand: true},
		{Name: "tenant:42:sync"},
	}
	for _, w := range want {
		if got := next(t, n); got != w {
			t.Errorf("trigger = %+v, want %+v", got, w)
		}
	}
}

func TestNotifier_ReadyAfterSubscribe(t *testing.T) {
	feed := &feedSpy{ch: make(chan string)}
	n, cancel, _ := start(t, feed, 1)
	defer cancel()

	select {
	case <-n.Ready():
	case <-time.After(time.Second):
		t.Fatal("never ready")
	}
}

func TestNotifier_IgnoresForeignKeys(t *testing.T) {
	feed := &feedSpy{ch: make(chan string, 8)}
	n, cancel, _ := start(t, feed, 8)
	defer cancel()

	feed.ch <- "session:abc"
	feed.ch <- "bossbat:lock:report"
	feed.ch <- "other:work:report"
	feed.ch <- "bossbat:work:"
	feed.ch <- "bossbat:work:real"

	if got := next(t, n); got.Name != "real" {
		t.Errorf("trigger = %+v, want real", got)
	}
}

func TestNotifier_StopsOnCancel(t *testing.T) {
	feed := &feedSpy{ch: make(chan string)}
	n, cancel, done := start(t, feed, 1)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	if _, ok := <-n.Triggers(); ok {
		t.Error("queue should be closed")
	}
}

func TestNotifier_FeedClosed(t *testing.T) {
	feed := &feedSpy{ch: make(chan string)}
	_, cancel, done := start(t, feed, 1)
	defer cancel()

	close(feed.ch)
	select {
	case err := <-done:
		if !errors.Is(err, notify.ErrFeedClosed) {
			t.Errorf("Run = %v, want ErrFeedClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}

func TestNotifier_SubscribeError(t *testing.T) {
	boom := errors.New("subscribe failed")
	n := notify.New(&feedSpy{err: boom}, keyspace.New("bossbat"), nil, 1)
	if err := n.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Run = %v, want %v", err, boom)
	}
	select {
	case <-n.Ready():
		t.Error("ready after failed subscribe")
	default:
	}
}

func TestNotifier_FullQueueBlocksWithoutDropping(t *testing.T) {
	feed := &feedSpy{ch: make(chan string, 8)}
	n, cancel, _ := start(t, feed, 1)
	defer cancel()

	for _, k := range []string{"a", "b", "c"} {
		feed.ch <- "bossbat:work:" + k
	}
	time.Sleep(20 * time.Millisecond)

	for _, want := range []string{"a", "b", "c"} {
		if got := next(t, n); got.Name != want {
			t.Errorf("trigger = %q, want %q", got.Name, want)
		}
	}
}
