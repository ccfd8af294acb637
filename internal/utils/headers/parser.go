package headers

import (
	"fmt"
	"net/http"
	"strings"
)

// ParseHeaders converts "Key: Value" strings into a map with canonical
// header names. Later entries win. Malformed entries are an error.
func ParseHeaders(h []string) (map[string]string, error) {
	m := make(map[string]string, len(h))
	for _, hdr := range h {
		k, v, ok := strings.Cut(hdr, ":")
		k = strings.TrimSpace(k)
		if !ok || k == "" || strings.ContainsAny(k, " \t") {
			return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", hdr)
		}
		m[http.CanonicalHeaderKey(k)] = strings.TrimSpace(v)
	}
	return m, nil
}

// Merge overlays extra onto base without modifying either.
func Merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[http.CanonicalHeaderKey(k)] = v
	}
	for k, v := range extra {
		out[http.CanonicalHeaderKey(k)] = v
	}
	return out
}
