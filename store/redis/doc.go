// Package redis implements store.Store on a single Redis database.
//
// The caller owns the *goredis.Client lifecycle; the store never closes it.
// On construction the store makes sure "notify-keyspace-events" includes
// the E and x classes so that expired keys are published on
// __keyevent@<db>__:expired. Pass WithoutConfigure when CONFIG is not
// available and notifications are enabled out of band.
//
//	import (
//	    goredis "github.com/redis/go-redis/v9"
//	    "github.com/xraph/bossbat/store/redis"
//	)
//
//	s, err := redis.New(ctx, goredis.NewClient(&goredis.Options{Addr: addr}))
//	if err := s.Ping(ctx); err != nil { ... }
package redis
