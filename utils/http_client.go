package utils

import (
	"net/http"
	"time"
)

// GlobalHTTPClient is shared by the HTTP command store and the log webhook.
var GlobalHTTPClient = NewHTTPClient(30 * time.Second)

// NewHTTPClient returns a client with its own connection pool. timeout bounds
// the whole request including reading the body.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 4
	t.ResponseHeaderTimeout = timeout
	return &http.Client{Transport: t, Timeout: timeout}
}
