package ipreputation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	httpclient "github.com/Perpelix/discord-verification-bot/pkg/http-client"
)

const (
	SOURCE_NAME_IP_API     = "ip-api"
	SOURCE_NAME_IPHUB      = "iphub"
	SOURCE_NAME_PROXYCHECK = "proxycheck"

	REASON_PROXY           = "proxy"
	REASON_HOSTING         = "hosting"
	REASON_NON_RESIDENTIAL = "non-residential"
	REASON_RESIDENTIAL_MIX = "residential-mix"
	REASON_VPN             = "vpn"

	defaultIPAPIRootURL      = "http://ip-api.com"
	defaultIPHubRootURL      = "http://v2.api.iphub.info"
	defaultProxyCheckRootURL = "https://proxycheck.io"
)

type SourcesConfig struct {
	// ip-api.com needs no credentials and is queried unless disabled.
	DisableIPAPI bool `json:"disable_ip_api" yaml:"disable_ip_api"`

	// Keyed sources are skipped entirely when their key is empty.
	IPHubAPIKey      string `json:"iphub_api_key" yaml:"iphub_api_key"`
	ProxyCheckAPIKey string `json:"proxycheck_api_key" yaml:"proxycheck_api_key"`
}

// NewSourcesFromConfig assembles the source list for the scorer. Missing
// credentials mean the source is not configured, which is not an error.
func NewSourcesFromConfig(config SourcesConfig) []Source {
	sources := []Source{}
	if !config.DisableIPAPI {
		sources = append(sources, NewIPAPISource(""))
	}
	if config.IPHubAPIKey != "" {
		sources = append(sources, NewIPHubSource(config.IPHubAPIKey, ""))
	}
	if config.ProxyCheckAPIKey != "" {
		sources = append(sources, NewProxyCheckSource(config.ProxyCheckAPIKey, ""))
	}
	return sources
}

// IPAPISource queries ip-api.com for the proxy and hosting flags.
type IPAPISource struct {
	rootURL string
}

func NewIPAPISource(rootURL string) *IPAPISource {
	if rootURL == "" {
		rootURL = defaultIPAPIRootURL
	}
	return &IPAPISource{rootURL: rootURL}
}

func (s *IPAPISource) Name() string {
	return SOURCE_NAME_IP_API
}

func (s *IPAPISource) Check(ctx context.Context, ip string) (Verdict, error) {
	url := fmt.Sprintf("%s/json/%s?fields=proxy,hosting", s.rootURL, ip)

	var result struct {
		Proxy   bool `json:"proxy"`
		Hosting bool `json:"hosting"`
	}
	if err := httpclient.RunGETRequest(ctx, url, nil, &result); err != nil {
		return Verdict{}, err
	}

	verdict := Verdict{Source: s.Name()}
	if result.Proxy {
		verdict.Detected = true
		verdict.Reason = REASON_PROXY
	} else if result.Hosting {
		verdict.Detected = true
		verdict.Reason = REASON_HOSTING
	}
	return verdict, nil
}

// IPHubSource queries iphub.info. Block level 1 means non-residential, 2 means
// a mix of residential and non-residential use.
type IPHubSource struct {
	apiKey  string
	rootURL string
}

func NewIPHubSource(apiKey string, rootURL string) *IPHubSource {
	if rootURL == "" {
		rootURL = defaultIPHubRootURL
	}
	return &IPHubSource{apiKey: apiKey, rootURL: rootURL}
}

func (s *IPHubSource) Name() string {
	return SOURCE_NAME_IPHUB
}

func (s *IPHubSource) Check(ctx context.Context, ip string) (Verdict, error) {
	url := fmt.Sprintf("%s/ip/%s", s.rootURL, ip)
	headers := http.Header{}
	headers.Set("X-Key", s.apiKey)

	var result struct {
		Block int `json:"block"`
	}
	if err := httpclient.RunGETRequest(ctx, url, headers, &result); err != nil {
		return Verdict{}, err
	}

	verdict := Verdict{Source: s.Name()}
	switch {
	case result.Block >= 2:
		verdict.Detected = true
		verdict.Reason = REASON_RESIDENTIAL_MIX
	case result.Block == 1:
		verdict.Detected = true
		verdict.Reason = REASON_NON_RESIDENTIAL
	}
	return verdict, nil
}

// ProxyCheckSource queries proxycheck.io with the VPN flag enabled.
type ProxyCheckSource struct {
	apiKey  string
	rootURL string
}

func NewProxyCheckSource(apiKey string, rootURL string) *ProxyCheckSource {
	if rootURL == "" {
		rootURL = defaultProxyCheckRootURL
	}
	return &ProxyCheckSource{apiKey: apiKey, rootURL: rootURL}
}

func (s *ProxyCheckSource) Name() string {
	return SOURCE_NAME_PROXYCHECK
}

func (s *ProxyCheckSource) Check(ctx context.Context, ip string) (Verdict, error) {
	url := fmt.Sprintf("%s/v2/%s?key=%s&vpn=1", s.rootURL, ip, s.apiKey)

	var result map[string]json.RawMessage
	if err := httpclient.RunGETRequest(ctx, url, nil, &result); err != nil {
		return Verdict{}, err
	}

	if raw, ok := result["status"]; ok {
		var status string
		if err := json.Unmarshal(raw, &status); err != nil {
			return Verdict{}, err
		}
		if status != "ok" {
			return Verdict{}, fmt.Errorf("proxycheck returned status %q", status)
		}
	}

	verdict := Verdict{Source: s.Name()}
	raw, ok := result[ip]
	if !ok {
		return verdict, nil
	}

	var entry struct {
		Proxy string `json:"proxy"`
		Type  string `json:"type"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Verdict{}, err
	}
	if entry.Proxy == "yes" {
		verdict.Detected = true
		verdict.Reason = REASON_PROXY
		if entry.Type == "VPN" {
			verdict.Reason = REASON_VPN
		}
	}
	return verdict, nil
}
