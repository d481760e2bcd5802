package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	nethttp "net/http"
	"net/url"
	"strings"

	ntlmssp "github.com/Azure/go-ntlmssp"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http/httpproxy"

	"github.com/mediastore/mediastore-cli/internal/config"
	"github.com/mediastore/mediastore-cli/internal/constants"
)

// ConfigureHTTPClient builds an HTTP client honoring the configured proxy mode.
// The returned client has the configured request timeout. basic and ntlm
// without a proxy host fall back to a direct connection.
func ConfigureHTTPClient(cfg *config.Config) (*nethttp.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}

	transport := newTransport()
	var rt nethttp.RoundTripper = transport
	warmup := false

	mode := strings.ToLower(cfg.ProxyMode)
	switch mode {
	case "", "no-proxy":
	case "system":
		transport.Proxy = nethttp.ProxyFromEnvironment
		warmup = cfg.ProxyWarmup
	case "basic", "ntlm":
		if cfg.ProxyHost == "" {
			log.Warn().Str("mode", mode).Msg("Proxy host is missing, connecting directly")
			break
		}
		if NeedsProxyPassword(cfg) {
			log.Warn().Msg("Proxy user set without a password, proxy auth disabled")
		}
		transport.Proxy = proxyFuncWithBypass(buildProxyURL(cfg), cfg.NoProxy)
		if mode == "ntlm" {
			rt = ntlmssp.Negotiator{RoundTripper: transport}
		}
		warmup = cfg.ProxyWarmup && cfg.ProxyUser != "" && cfg.ProxyPassword != ""
	default:
		return nil, fmt.Errorf("unsupported proxy mode: %s", cfg.ProxyMode)
	}

	client := &nethttp.Client{Transport: rt, Timeout: timeout}
	if warmup {
		if err := warmupProxy(client, cfg); err != nil {
			return nil, fmt.Errorf("proxy warmup failed: %w", err)
		}
	}
	return client, nil
}

func newTransport() *nethttp.Transport {
	return &nethttp.Transport{
		DialContext: (&net.Dialer{
			Timeout:   constants.HTTPDialTimeout,
			KeepAlive: constants.HTTPDialKeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       constants.HTTPIdleConnTimeout,
		TLSHandshakeTimeout:   constants.HTTPTLSHandshakeTimeout,
		ExpectContinueTimeout: constants.HTTPExpectContinueTimeout,
	}
}

// buildProxyURL returns http://host:port with credentials only when both are
// set. The port defaults to 8080.
func buildProxyURL(cfg *config.Config) *url.URL {
	port := cfg.ProxyPort
	if port == 0 {
		port = 8080
	}

	proxyURL := &url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("%s:%d", cfg.ProxyHost, port),
	}

	if cfg.ProxyUser != "" && cfg.ProxyPassword != "" {
		proxyURL.User = url.UserPassword(cfg.ProxyUser, cfg.ProxyPassword)
	}

	return proxyURL
}

// warmupProxy performs one request against the backend health endpoint so the
// proxy handshake happens before the first real call.
func warmupProxy(client *nethttp.Client, cfg *config.Config) error {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = constants.DefaultBaseURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ProxyWarmupTimeout)
	defer cancel()

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, base+constants.HealthPath, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("warmup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("warmup request returned server error: %d", resp.StatusCode)
	}
	return nil
}

// proxyFuncWithBypass sends every request through proxyURL except hosts,
// domains and CIDRs listed in noProxy.
func proxyFuncWithBypass(proxyURL *url.URL, noProxy string) func(*nethttp.Request) (*url.URL, error) {
	if noProxy == "" {
		return nethttp.ProxyURL(proxyURL)
	}
	cfg := httpproxy.Config{
		HTTPProxy:  proxyURL.String(),
		HTTPSProxy: proxyURL.String(),
		NoProxy:    noProxy,
	}
	proxyFunc := cfg.ProxyFunc()
	return func(req *nethttp.Request) (*url.URL, error) {
		result, err := proxyFunc(req.URL)
		if result == nil {
			log.Debug().Str("host", req.URL.Host).Msg("Proxy bypass (direct connection)")
		} else {
			log.Debug().Str("host", req.URL.Host).Str("proxy", result.Host).Msg("Proxied request")
		}
		return result, err
	}
}

// NeedsProxyPassword reports whether an authenticating proxy mode has a user
// but no password.
func NeedsProxyPassword(cfg *config.Config) bool {
	mode := strings.ToLower(cfg.ProxyMode)
	if mode != "basic" && mode != "ntlm" {
		return false
	}
	return cfg.ProxyUser != "" && cfg.ProxyPassword == ""
}
