package httpmiddleware

import (
	"net"
	"net/http"
	"time"
)

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Middleware wraps an http.RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// Chain applies middlewares to base. The first middleware is the outermost.
func Chain(base http.RoundTripper, middlewares ...Middleware) http.RoundTripper {
	for i := len(middlewares) - 1; i >= 0; i-- {
		base = middlewares[i](base)
	}

	return base
}

// Header sets a request header unless the request already carries it.
// An empty value disables the middleware.
func Header(name, value string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if value == "" {
			return next
		}

		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(name) != "" {
				return next.RoundTrip(req)
			}

			req = req.Clone(req.Context())
			req.Header.Set(name, value)

			return next.RoundTrip(req)
		})
	}
}

// UserAgent sets the User-Agent header on outgoing requests.
func UserAgent(ua string) Middleware {
	return Header("User-Agent", ua)
}

// NewTransport returns a transport tuned for a handful of external APIs.
func NewTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
}

// NewClient builds an http.Client over NewTransport wrapped with middlewares.
func NewClient(timeout time.Duration, middlewares ...Middleware) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: Chain(NewTransport(), middlewares...),
	}
}
