package errors

import (
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	safeDetailsPrefix     = "__json__:"
	defaultDisplayMessage = "An unexpected error occurred"
)

// DisplayMessage returns the first non-empty hint in the chain, innermost
// first, or a generic message when no hint was attached
func DisplayMessage(err error) string {
	for _, hint := range errors.GetAllHints(err) {
		if hint = strings.TrimSpace(hint); hint != "" {
			return hint
		}
	}
	return defaultDisplayMessage
}

// SafeDetails merges every reportable detail map attached to the chain
func SafeDetails(err error) map[string]any {
	details := make(map[string]any)

	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			if !strings.HasPrefix(payload, safeDetailsPrefix) || len(payload) == len(safeDetailsPrefix) {
				continue
			}
			var jsonDetails map[string]any
			if err := json.Unmarshal([]byte(payload[len(safeDetailsPrefix):]), &jsonDetails); err == nil {
				for k, v := range jsonDetails {
					details[k] = v
				}
			}
		}
	}

	return details
}
