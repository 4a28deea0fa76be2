package cache

import (
	"sort"
	"strings"
)

const keyDelimiter = "_"

// BuildKey derives the cache identity of a request from its base URL and query
// parameters. Parameters are rendered as name=value, sorted, and joined so the
// key does not depend on map iteration order. A request without parameters is
// keyed by its URL alone.
func BuildKey(baseURL string, params map[string]string) string {
	if len(params) == 0 {
		return baseURL
	}

	fragments := make([]string, 0, len(params))
	for name, value := range params {
		fragments = append(fragments, name+"="+value)
	}
	sort.Strings(fragments)

	return baseURL + keyDelimiter + strings.Join(fragments, keyDelimiter)
}
