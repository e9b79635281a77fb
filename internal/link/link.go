package link

import (
	"net/url"
	"strings"
)

// DefaultDomain is the label used when a link has no usable host.
const DefaultDomain = "source"

var trackingPrefixes = []string{"utm_", "ref", "ref_"}

// Normalize removes tracking query parameters and the fragment from raw.
// The order of the remaining parameters is preserved, including ones with
// empty values. If raw cannot be parsed it is returned unchanged.
func Normalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	var keep []string
	for _, part := range strings.Split(u.RawQuery, "&") {
		if part == "" {
			continue
		}
		key, _, _ := strings.Cut(part, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if isTracking(key) {
			continue
		}
		keep = append(keep, part)
	}

	u.RawQuery = strings.Join(keep, "&")
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

func isTracking(key string) bool {
	key = strings.ToLower(key)
	for _, p := range trackingPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// Domain returns the display host for raw with a leading "www." removed.
func Domain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return DefaultDomain
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if host == "" {
		return DefaultDomain
	}
	return host
}
