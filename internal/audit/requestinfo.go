package audit

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

// RequestInfo carries best-effort HTTP request enrichment for an audit record.
// Capture must never block or fail a mutation; missing data stays empty.
type RequestInfo struct {
	IP        string
	UserAgent string
}

// RequestInfoFrom extracts the client IP and a short user-agent summary from
// an inbound request. X-Forwarded-For wins over RemoteAddr when the edge has
// resolved the original client.
func RequestInfoFrom(r *http.Request) RequestInfo {
	if r == nil {
		return RequestInfo{}
	}
	return RequestInfo{
		IP:        clientIP(r),
		UserAgent: SummarizeUserAgent(r.UserAgent()),
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop is the original client.
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SummarizeUserAgent reduces a raw User-Agent header to "Browser ver on OS"
// so the trail stays readable without storing the full header.
func SummarizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return raw
	}
	summary := name
	if version != "" {
		summary += " " + version
	}
	if os := ua.OS(); os != "" {
		summary += " on " + os
	}
	return summary
}
