// Package http sends synthesized requests to the service under test and
// captures what came back. Retries and backpressure are deliberately absent.
package http

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

const (
	dialTimeout           = 5 * time.Second
	keepAliveInterval     = 30 * time.Second
	tlsHandshakeTimeout   = 5 * time.Second
	idleConnTimeout       = 90 * time.Second
	expectContinueTimeout = 1 * time.Second
)

// ClientConfig configures the shared HTTP client.
type ClientConfig struct {
	// Timeout is the per-request deadline; 0 means none.
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// NewClient builds the client every actor shares.
func NewClient(cfg ClientConfig) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: keepAliveInterval,
		}).DialContext,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		IdleConnTimeout:       idleConnTimeout,
		ExpectContinueTimeout: expectContinueTimeout,
		ForceAttemptHTTP2:     true,
	}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // target runs self-signed certs
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}
}
