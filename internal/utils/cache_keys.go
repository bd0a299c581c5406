package utils

import "strings"

// BuildBooksListCacheKey is versioned so a change to the cached shape can be
// rolled out without flushing Redis.
func BuildBooksListCacheKey(ownerID string) string {
	return "books:list:v1:owner=" + strings.TrimSpace(ownerID)
}
