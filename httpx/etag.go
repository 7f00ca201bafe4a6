package httpx

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ETag returns a strong entity tag for body.
func ETag(body []byte) string {
	return `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
}

// NotModified reports whether the request's If-None-Match matches etag.
func NotModified(r *http.Request, etag string) bool {
	for _, candidate := range strings.Split(r.Header.Get("If-None-Match"), ",") {
		c := strings.TrimSpace(candidate)
		if c == etag || c == "*" {
			return true
		}
	}
	return false
}

// JSONWithETag writes payload with an ETag header, or 304 when the client
// already holds the same representation.
func JSONWithETag(w http.ResponseWriter, r *http.Request, payload any) {
	body, err := marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	tag := ETag(body)
	w.Header().Set("ETag", tag)
	if NotModified(r, tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
