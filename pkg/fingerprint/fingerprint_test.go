package fingerprint

import (
	"net/http"
	"testing"
)

const CHROME_UA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
const IPHONE_UA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

func TestParseClientInfo(t *testing.T) {
	t.Run("uses forwarded header when trusted", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-Forwarded-For", "203.0.113.10, 10.0.0.2")
		headers.Set("User-Agent", CHROME_UA)

		info := ParseClientInfo(headers, "10.0.0.1:52100", true)
		if info.IP != "203.0.113.10" {
			t.Errorf("unexpected IP: %s", info.IP)
		}
	})

	t.Run("trims forwarded header entry", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-Forwarded-For", "  203.0.113.10  ,10.0.0.2")

		info := ParseClientInfo(headers, "10.0.0.1:52100", true)
		if info.IP != "203.0.113.10" {
			t.Errorf("unexpected IP: %s", info.IP)
		}
	})

	t.Run("ignores forwarded header when not trusted", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-Forwarded-For", "203.0.113.10")

		info := ParseClientInfo(headers, "10.0.0.1:52100", false)
		if info.IP != "10.0.0.1" {
			t.Errorf("unexpected IP: %s", info.IP)
		}
	})

	t.Run("falls back to peer address without header", func(t *testing.T) {
		info := ParseClientInfo(http.Header{}, "192.0.2.4:40001", true)
		if info.IP != "192.0.2.4" {
			t.Errorf("unexpected IP: %s", info.IP)
		}
	})

	t.Run("peer address without port", func(t *testing.T) {
		info := ParseClientInfo(http.Header{}, "192.0.2.4", true)
		if info.IP != "192.0.2.4" {
			t.Errorf("unexpected IP: %s", info.IP)
		}
	})

	t.Run("missing user agent becomes unknown", func(t *testing.T) {
		info := ParseClientInfo(http.Header{}, "192.0.2.4:40001", true)
		if info.UserAgent != UNKNOWN_VALUE {
			t.Errorf("unexpected user agent: %s", info.UserAgent)
		}
		if info.Browser.Name != UNKNOWN_VALUE || info.Browser.Device != DEVICE_TYPE_DESKTOP {
			t.Errorf("unexpected browser info: %v", info.Browser)
		}
	})

	t.Run("deterministic fields are stable across calls", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-Forwarded-For", "203.0.113.10")
		headers.Set("User-Agent", CHROME_UA)

		first := ParseClientInfo(headers, "10.0.0.1:52100", true)
		second := ParseClientInfo(headers, "10.0.0.1:52100", true)
		if first.IP != second.IP || first.UserAgent != second.UserAgent || first.Browser != second.Browser {
			t.Errorf("parse not stable: %v vs %v", first, second)
		}
	})
}

func TestParseBrowser(t *testing.T) {
	testCases := []struct {
		name           string
		userAgent      string
		expectedName   string
		expectedOS     string
		expectedDevice string
	}{
		{
			name:           "desktop chrome",
			userAgent:      CHROME_UA,
			expectedName:   "Chrome",
			expectedOS:     "Windows",
			expectedDevice: DEVICE_TYPE_DESKTOP,
		},
		{
			name:           "iphone safari",
			userAgent:      IPHONE_UA,
			expectedName:   "Safari",
			expectedOS:     "iOS",
			expectedDevice: DEVICE_TYPE_MOBILE,
		},
		{
			name:           "empty user agent",
			userAgent:      "",
			expectedName:   UNKNOWN_VALUE,
			expectedOS:     UNKNOWN_VALUE,
			expectedDevice: DEVICE_TYPE_DESKTOP,
		},
		{
			name:           "unknown sentinel",
			userAgent:      UNKNOWN_VALUE,
			expectedName:   UNKNOWN_VALUE,
			expectedOS:     UNKNOWN_VALUE,
			expectedDevice: DEVICE_TYPE_DESKTOP,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info := ParseBrowser(tc.userAgent)
			if info.Name != tc.expectedName {
				t.Errorf("unexpected browser name: %s", info.Name)
			}
			if info.OS != tc.expectedOS {
				t.Errorf("unexpected OS: %s", info.OS)
			}
			if info.Device != tc.expectedDevice {
				t.Errorf("unexpected device type: %s", info.Device)
			}
		})
	}
}
