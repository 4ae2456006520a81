// Package httpclient builds the HTTP client used for calls to the
// banking gateways.
package httpclient

import (
	"net/http"
	"time"
)

// New returns a client tuned for repeated calls to a small set of
// gateway hosts. The timeout bounds the whole request including body
// read; per-attempt deadlines are layered on top via context.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
