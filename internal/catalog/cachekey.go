package catalog

import (
	"encoding/json"
	"sort"
	"time"
)

// DefaultCacheTTL is how long a cached page is served before it is recomputed
const DefaultCacheTTL = 60 * time.Second

const cacheKeyPrefix = "movies:"

// CacheKey derives a stable key from the complete FilterSpec, pagination included.
// Equal specs give equal keys regardless of genre order.
func CacheKey(spec FilterSpec) string {
	if len(spec.GenreIDs) > 0 {
		ids := append([]int(nil), spec.GenreIDs...)
		sort.Ints(ids)
		spec.GenreIDs = ids
	}

	// FilterSpec holds only strings, numbers and bools; Marshal cannot fail
	data, _ := json.Marshal(spec)
	return cacheKeyPrefix + string(data)
}
