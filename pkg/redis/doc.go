// Package redis provides Redis client utilities for the document store.
//
// This package wraps [github.com/redis/go-redis/v9] with startup retries,
// a readiness check and a shutdown hook.
//
// # Configuration
//
// [Config] is filled from environment variables:
//
//	REDIS_URL             - redis:// or rediss:// (TLS) URL
//	REDIS_POOL_SIZE       - Maximum number of connections (default: 10)
//	REDIS_MIN_IDLE_CONNS  - Minimum idle connections (default: 5)
//	REDIS_MAX_IDLE_TIME   - Maximum connection idle time (default: 10m)
//	REDIS_MAX_ACTIVE_TIME - Maximum connection lifetime (default: 30m)
//	REDIS_READ_TIMEOUT    - Read operation timeout (default: 3s)
//	REDIS_WRITE_TIMEOUT   - Write operation timeout (default: 3s)
//	REDIS_DIAL_TIMEOUT    - Connection dial timeout (default: 5s)
//	REDIS_RETRY_ATTEMPTS  - Connection retry attempts (default: 3)
//	REDIS_RETRY_INTERVAL  - Base retry interval (default: 5s)
//
// # Usage
//
//	client, err := redis.Open(ctx, cfg.Redis)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := docstore.NewRedis(client)
//
// # Health Checks
//
//	checks := health.Checks{"redis": redis.Healthcheck(client)}
//
// # Error Handling
//
// All failures wrap one of the package sentinels:
//
//	ErrEmptyConnectionURL - URL is empty
//	ErrFailedToParseURL   - URL format is invalid
//	ErrUnsupportedScheme  - scheme is not redis:// or rediss:// (joined with ErrFailedToParseURL)
//	ErrConnectionFailed   - all connection attempts failed
//	ErrHealthcheckFailed  - ping failed or client is nil
package redis
