package netutil

import (
	"net/http"
	"net/netip"
	"strings"
	"unicode/utf8"
)

const MaxUserAgentLength = 512

// NormalizeIP returns the canonical form of an IP that may carry a port or an
// IPv6 zone ("192.0.2.4:1234", "[2001:db8::1]:443", "fe80::1%eth0"). ok is
// false when no IP could be extracted; raw is then returned trimmed.
func NormalizeIP(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return canonical(ap.Addr())
	}
	if addr, err := netip.ParseAddr(raw); err == nil {
		return canonical(addr)
	}
	// "[::1]:port" style with a non-numeric port.
	if strings.HasPrefix(raw, "[") {
		if end := strings.LastIndex(raw, "]"); end > 0 {
			if addr, err := netip.ParseAddr(raw[1:end]); err == nil {
				return canonical(addr)
			}
		}
	}
	if idx := strings.LastIndex(raw, ":"); idx > 0 {
		if addr, err := netip.ParseAddr(raw[:idx]); err == nil {
			return canonical(addr)
		}
	}
	return raw, false
}

func canonical(addr netip.Addr) (string, bool) {
	addr = addr.WithZone("")
	if !addr.IsValid() {
		return "", false
	}
	return addr.Unmap().String(), true
}

// ClientIP picks the caller address for a request. chi's RealIP middleware
// has usually already rewritten RemoteAddr from X-Forwarded-For/X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip, ok := NormalizeIP(first); ok {
			return ip
		}
	}
	if ip, ok := NormalizeIP(r.Header.Get("X-Real-IP")); ok {
		return ip
	}
	if ip, ok := NormalizeIP(r.RemoteAddr); ok {
		return ip
	}
	return r.RemoteAddr
}

// TruncateUserAgent caps a user agent at MaxUserAgentLength runes.
func TruncateUserAgent(ua string) string {
	if utf8.RuneCountInString(ua) <= MaxUserAgentLength {
		return ua
	}
	count := 0
	for i := range ua {
		if count == MaxUserAgentLength {
			return ua[:i]
		}
		count++
	}
	return ua
}

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceTV      = "tv"
	DeviceUnknown = "unknown"
)

// DeviceType gives a coarse device class for a User-Agent header.
func DeviceType(ua string) string {
	s := strings.ToLower(ua)
	switch {
	case s == "":
		return DeviceUnknown
	case strings.Contains(s, "smart-tv"), strings.Contains(s, "smarttv"),
		strings.Contains(s, "android tv"), strings.Contains(s, "appletv"),
		strings.Contains(s, "tizen"), strings.Contains(s, "webos"):
		return DeviceTV
	case strings.Contains(s, "ipad"), strings.Contains(s, "tablet"),
		strings.Contains(s, "android") && !strings.Contains(s, "mobile"):
		return DeviceTablet
	case strings.Contains(s, "mobile"), strings.Contains(s, "iphone"),
		strings.Contains(s, "android"):
		return DeviceMobile
	case strings.Contains(s, "windows"), strings.Contains(s, "macintosh"),
		strings.Contains(s, "linux"), strings.Contains(s, "x11"):
		return DeviceDesktop
	}
	return DeviceUnknown
}
