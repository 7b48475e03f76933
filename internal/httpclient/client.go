// Package httpclient builds the single shared *http.Client used by every
// executor goroutine in a run, tuned for the connection-pooling caps the
// harness imposes process-wide.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// Global connection caps: at most 1000 total idle connections, at most 100
// per host, enforced on one shared client so concurrent stages and the
// stress engine all draw from the same pool.
const (
	maxIdleConns        = 1000
	maxIdleConnsPerHost = 100
	maxConnsPerHost     = 100
)

// New builds the shared HTTP client. timeout bounds a single request
// attempt (not the overall test); pass 0 for no per-request deadline beyond
// context cancellation.
func New(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          maxIdleConns,
		MaxIdleConnsPerHost:   maxIdleConnsPerHost,
		MaxConnsPerHost:       maxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
