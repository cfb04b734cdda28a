// Package redis provides the shared go-redis connection.
//
// The connection backs the subscription registry (live SUBSCRIBE tracking
// shared by every worker process) and, when the bus driver is redis, the
// registration event channel.
//
// # Usage
//
//	client, err := redis.New(ctx, cfg.Redis)
//	if err != nil {
//	    return err
//	}
//	if client != nil {
//	    defer client.Close()
//	}
package redis
