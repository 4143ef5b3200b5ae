// Package cache provides gateway response caching with a Redis backend.
//
// The cache manager implements HTTP-aware caching with the following features:
//
// - Expires header support with a fallback default TTL
// - ETag support for conditional requests (If-None-Match)
// - Last-Modified support (If-Modified-Since)
// - Automatic TTL management in Redis
// - Prometheus metrics for observability
// - Deterministic cache key generation
//
// Caching is optional for the collector: the gateway client only enables it
// when a Redis client is configured. A one-shot extraction run works without
// Redis; caching pays off when runs repeat before entries expire.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager
//	manager := cache.NewManager(redisClient)
//
//	// Create cache key
//	key := cache.Key{
//		Endpoint:    "/v2/solarsystems",
//		QueryParams: url.Values{"limit": []string{"100"}, "offset": []string{"0"}},
//	}
//
//	// Get from cache
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Cache miss - fetch from the gateway
//	}
//
// # Response Caching
//
//	// Convert a successful response and its body to a cache entry
//	entry := cache.NewEntry(resp, body)
//
//	// Store in cache
//	if err := manager.Set(ctx, key, entry); err != nil {
//		return err
//	}
//
// # Conditional Requests
//
//	if cache.ShouldMakeConditionalRequest(entry) {
//		cache.AddConditionalHeaders(req, entry)
//		// The gateway returns 304 if the page has not changed
//	}
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - frontier_cache_hits_total{layer="redis"} - Cache hits
//   - frontier_cache_misses_total - Cache misses
//   - frontier_cache_size_bytes{layer="redis"} - Cache size
//   - frontier_304_responses_total - Conditional request successes
//   - frontier_conditional_requests_total - Conditional requests sent
//   - frontier_cache_errors_total{operation} - Cache operation errors
package cache
