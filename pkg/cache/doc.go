// Package cache provides a generic TTL cache with in-memory and Redis backends.
//
//	docs := cache.NewMemory[json.RawMessage]()
//	doc, err := cache.GetOrSet(ctx, docs, "base", func(ctx context.Context) (json.RawMessage, time.Duration, error) {
//		d, err := fetch(ctx)
//		return d, 7 * 24 * time.Hour, err
//	})
//
// Use [NewRedis] when several processes must share entries.
package cache
