package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key represents a unique identifier for a cached gateway response.
type Key struct {
	// Endpoint is the gateway endpoint path (e.g., "/v2/solarsystems")
	Endpoint string

	// QueryParams are the query parameters (e.g., {"limit": "100", "offset": "0"})
	QueryParams url.Values
}

// String generates a deterministic cache key string.
// Format: frontier:endpoint:query1=val1:query2=val2
//
// Example:
//
//	frontier:v2/solarsystems:limit=100:offset=0
func (k Key) String() string {
	parts := []string{"frontier"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Query params sorted for determinism
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
