package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// HashRequest creates a stable SHA256 key for a report request so that
// identical requests map to the same Redis dedup key. Params are folded
// in sorted key order to stay independent of map iteration.
func HashRequest(userID, siteID int64, format string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%s", userID, siteID, format)
	for _, k := range keys {
		fmt.Fprintf(h, "|%s=%s", k, params[k])
	}
	return hex.EncodeToString(h.Sum(nil))
}
