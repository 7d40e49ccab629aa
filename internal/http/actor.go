package httpx

import (
	"net/http"
	"strings"
)

const actorHeader = "X-Actor-ID"

// actorFromRequest extracts the acting user identity supplied by the caller.
// Authentication happens upstream; the engine only records who acted.
func actorFromRequest(req *http.Request) string {
	return strings.TrimSpace(req.Header.Get(actorHeader))
}

func actorPointer(req *http.Request) *string {
	if actor := actorFromRequest(req); actor != "" {
		return &actor
	}
	return nil
}
