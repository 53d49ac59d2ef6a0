// Package store defines what the trigger protocol needs from the shared
// key store and the mutual-exclusion service.
//
// The composite interface:
//
//	type Store interface {
//	    KeyStore
//	    ExpiryFeed
//	    Locker
//
//	    Ping(ctx context.Context) error
//	    Close() error
//	}
//
// # Available Backends
//
//   - store/redis: Redis, using keyevent expiry notifications and redsync locks
//   - store/memory: in-process store for development and testing
//
// # Usage
//
//	client := goredis.NewClient(&goredis.Options{Addr: "localhost:6379", DB: 3})
//	s, err := redis.New(ctx, client)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	eng, err := engine.New(s)
package store
