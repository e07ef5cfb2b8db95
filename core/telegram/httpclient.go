package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/eventbot/core/telegram/netutil"
)

const (
	dialTimeout     = 5 * time.Second
	tlsHandshake    = 5 * time.Second
	idleConnTimeout = 30 * time.Second
	keepAlive       = 30 * time.Second
	retryAttempts   = 2
	retryBackoff    = time.Second
)

// BuildHTTPClient returns the client telebot uses for Bot API calls.
// The client timeout must exceed the long poll timeout or getUpdates would always fail.
func BuildHTTPClient(pollTimeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: keepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   tlsHandshake,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout:   pollTimeout + 20*time.Second,
		Transport: &retryTransport{base: transport, maxRetries: retryAttempts, backoff: retryBackoff},
	}
}

// retryTransport repeats requests that failed before reaching the server.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		curr := req
		if attempt > 0 {
			if req.Body != nil && req.GetBody == nil {
				return nil, lastErr
			}
			curr = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				curr.Body = body
			}
		}

		resp, err := t.base.RoundTrip(curr)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !netutil.ShouldRetry(err) {
			break
		}

		timer := time.NewTimer(t.backoff * time.Duration(attempt+1))
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}
