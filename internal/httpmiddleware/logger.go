package httpmiddleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const redacted = "[REDACTED]"

var sensitiveHeaders = map[string]bool{
	"authorization":     true,
	"cookie":            true,
	"set-cookie":        true,
	"x-api-key":         true,
	"x-cg-demo-api-key": true,
	"x-cg-pro-api-key":  true,
}

var sensitiveParams = map[string]bool{
	"x_cg_demo_api_key": true,
	"x_cg_pro_api_key":  true,
	"api_key":           true,
	"token":             true,
}

// LogOptions controls what the logging middleware records.
type LogOptions struct {
	// MaxBody is the number of response body bytes to log. 0 disables body logging.
	MaxBody int
	// Headers enables request and response header logging.
	Headers bool
}

// Logger logs every outgoing request with its status and latency.
// Responses with status >= 400 are logged at warn, >= 500 at error.
func Logger(logger *slog.Logger, opts LogOptions) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)
			elapsed := time.Since(start)

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("url", redactURL(req.URL)),
				slog.Duration("duration", elapsed),
			}

			if opts.Headers {
				attrs = append(attrs, headerAttr("request_headers", req.Header))
			}

			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
				logger.LogAttrs(req.Context(), slog.LevelError, "❌ HTTP request failed", attrs...)

				return resp, err
			}

			attrs = append(attrs, slog.Int("status", resp.StatusCode))

			if opts.Headers {
				attrs = append(attrs, headerAttr("response_headers", resp.Header))
			}

			if opts.MaxBody > 0 && resp.Body != nil {
				if body, ok := peekBody(resp, opts.MaxBody); ok {
					attrs = append(attrs, slog.String("body", body))
				}
			}

			level := slog.LevelDebug
			switch {
			case resp.StatusCode >= 500:
				level = slog.LevelError
			case resp.StatusCode >= 400:
				level = slog.LevelWarn
			}

			logger.LogAttrs(req.Context(), level, "📥 HTTP response", attrs...)

			return resp, nil
		})
	}
}

// peekBody reads up to limit bytes and puts them back in front of the body.
func peekBody(resp *http.Response, limit int) (string, bool) {
	buf := make([]byte, limit)

	n, err := io.ReadFull(resp.Body, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", false
	}

	resp.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(buf[:n]), resp.Body), resp.Body}

	return string(buf[:n]), n > 0
}

func headerAttr(key string, h http.Header) slog.Attr {
	attrs := make([]slog.Attr, 0, len(h))
	for k, v := range h {
		if sensitiveHeaders[strings.ToLower(k)] {
			attrs = append(attrs, slog.String(k, redacted))
			continue
		}
		attrs = append(attrs, slog.String(k, strings.Join(v, ", ")))
	}

	return slog.Attr{Key: key, Value: slog.GroupValue(attrs...)}
}

// botToken matches the Telegram Bot API token path segment.
var botToken = regexp.MustCompile(`/bot\d+:[A-Za-z0-9_-]+`)

func redactURL(u *url.URL) string {
	c := *u
	if botToken.MatchString(c.Path) {
		c.Path = botToken.ReplaceAllString(c.Path, "/bot"+redacted)
		c.RawPath = c.Path
	}

	if c.RawQuery == "" {
		return c.String()
	}

	q := c.Query()
	for k := range q {
		if sensitiveParams[strings.ToLower(k)] {
			q.Set(k, redacted)
		}
	}

	c.RawQuery = q.Encode()

	return c.String()
}
