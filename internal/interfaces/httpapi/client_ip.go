package httpapi

import (
	"net"
	"net/http"
	"strings"
)

// clientIP returns the first parseable address from the proxy headers,
// then the socket peer. Job callers sit behind QStash or a load balancer.
func clientIP(r *http.Request) string {
	for _, raw := range []string{
		firstForwarded(r.Header.Get("X-Forwarded-For")),
		r.Header.Get("X-Real-IP"),
		r.RemoteAddr,
	} {
		if ip := parseIP(raw); ip != "" {
			return ip
		}
	}
	return ""
}

func firstForwarded(header string) string {
	first, _, _ := strings.Cut(header, ",")
	return first
}

func parseIP(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(value); err == nil {
		value = host
	}
	if ip := net.ParseIP(strings.Trim(value, "[]")); ip != nil {
		return ip.String()
	}
	return ""
}
