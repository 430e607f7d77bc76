package fingerprint

import (
	"net"
	"net/http"
	"strings"
	"time"

	ua "github.com/mileusna/useragent"
)

const UNKNOWN_VALUE = "Unknown"

const DEVICE_TYPE_DESKTOP = "desktop"
const DEVICE_TYPE_MOBILE = "mobile"
const DEVICE_TYPE_TABLET = "tablet"
const DEVICE_TYPE_BOT = "bot"

type BrowserInfo struct {
	Name    string `bson:"name" json:"name"`
	Version string `bson:"version" json:"version"`
	OS      string `bson:"os" json:"os"`
	Device  string `bson:"device" json:"device"`
}

// ClientInfo is the network/client signature derived from one request.
type ClientInfo struct {
	IP        string      `bson:"ip" json:"ip"`
	UserAgent string      `bson:"user_agent" json:"userAgent"`
	Browser   BrowserInfo `bson:"browser" json:"browser"`
	Timestamp time.Time   `bson:"timestamp" json:"timestamp"`
}

// ParseClientInfo derives a fingerprint from the request headers and the
// transport peer address. When trustForwardedHeader is set, the first entry of
// X-Forwarded-For wins over the peer address; only enable this behind a
// reverse proxy that overwrites the header.
func ParseClientInfo(headers http.Header, remoteAddr string, trustForwardedHeader bool) ClientInfo {
	ip := peerIP(remoteAddr)
	if trustForwardedHeader {
		if forwarded := headers.Get("X-Forwarded-For"); forwarded != "" {
			ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
		}
	}

	userAgent := headers.Get("User-Agent")
	if userAgent == "" {
		userAgent = UNKNOWN_VALUE
	}

	return ClientInfo{
		IP:        ip,
		UserAgent: userAgent,
		Browser:   ParseBrowser(userAgent),
		Timestamp: time.Now(),
	}
}

// ParseBrowser extracts browser, OS and device type from a user agent string.
// Anything the parser cannot identify degrades to the unknown sentinel instead
// of failing the request.
func ParseBrowser(userAgent string) BrowserInfo {
	info := BrowserInfo{
		Name:    UNKNOWN_VALUE,
		Version: UNKNOWN_VALUE,
		OS:      UNKNOWN_VALUE,
		Device:  DEVICE_TYPE_DESKTOP,
	}
	if userAgent == "" || userAgent == UNKNOWN_VALUE {
		return info
	}

	parsed := ua.Parse(userAgent)
	if parsed.Name != "" {
		info.Name = parsed.Name
	}
	if parsed.Version != "" {
		info.Version = parsed.Version
	}
	if parsed.OS != "" {
		info.OS = parsed.OS
	}
	switch {
	case parsed.Mobile:
		info.Device = DEVICE_TYPE_MOBILE
	case parsed.Tablet:
		info.Device = DEVICE_TYPE_TABLET
	case parsed.Bot:
		info.Device = DEVICE_TYPE_BOT
	}
	return info
}

func peerIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		// remoteAddr without port, e.g. from a unix socket or tests
		return remoteAddr
	}
	return host
}
