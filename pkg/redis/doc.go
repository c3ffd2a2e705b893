// Package redis opens go-redis clients from environment configuration and
// exposes readiness and shutdown hooks for them.
//
//	client, err := redis.Open(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	app.WithShutdownHook(redis.Shutdown(client))
package redis
