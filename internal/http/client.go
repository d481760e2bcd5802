package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"

	"golang.org/x/net/http2"

	"github.com/mediastore/mediastore-cli/internal/config"
)

// CreateUploadClient creates the HTTP client used for multipart uploads.
//
// It shares the proxy setup of ConfigureHTTPClient but drops the overall
// request timeout (large videos can take minutes; callers bound uploads with
// a context instead) and enables HTTP/2 unless a proxy is in the path or
// DISABLE_HTTP2=true is set.
func CreateUploadClient(cfg *config.Config) (*nethttp.Client, error) {
	baseClient, err := ConfigureHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	baseClient.Timeout = 0

	tr, ok := baseClient.Transport.(*nethttp.Transport)
	if !ok {
		// NTLM wraps the transport in a Negotiator; leave it as configured
		return baseClient, nil
	}

	// Uploads are strictly sequential, one connection is all we ever need
	tr.MaxIdleConnsPerHost = 1
	tr.MaxConnsPerHost = 2
	// Media is already compressed
	tr.DisableCompression = true
	tr.ForceAttemptHTTP2 = true
	_ = http2.ConfigureTransport(tr)

	if os.Getenv("DISABLE_HTTP2") == "true" || (proxyActive(cfg) && os.Getenv("FORCE_HTTP2") != "true") {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
	}

	baseClient.Transport = tr
	return baseClient, nil
}

// proxyActive trusts the configured mode first and only inspects the
// environment for "system" mode.
func proxyActive(cfg *config.Config) bool {
	switch cfg.ProxyMode {
	case "no-proxy", "":
		return false
	case "system":
		return os.Getenv("HTTP_PROXY") != "" || os.Getenv("HTTPS_PROXY") != "" ||
			os.Getenv("http_proxy") != "" || os.Getenv("https_proxy") != ""
	default:
		return true
	}
}
