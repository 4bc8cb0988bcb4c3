package mailbox

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultUserAgent looks like a desktop browser; some providers reject
// requests from generic HTTP clients with 403.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// responses are bounded; larger bodies are treated as malformed
const maxBodySize = 4 << 20

// TransportConfig configures outgoing provider requests.
type TransportConfig struct {
	Timeout   time.Duration
	UserAgent string
	// Rate is the sustained request rate per second; <= 0 disables limiting.
	Rate  float64
	Burst int
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Transport performs single-attempt requests: no retries, explicit timeout,
// client-side rate limiting.
type Transport struct {
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
	log       *zap.Logger
}

// NewTransport creates a transport. A nil logger discards output.
func NewTransport(cfg TransportConfig, log *zap.Logger) *Transport {
	if log == nil {
		log = zap.NewNop()
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	limit := rate.Inf
	burst := cfg.Burst
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}
	if burst < 1 {
		burst = 1
	}

	return &Transport{
		http:      hc,
		userAgent: ua,
		limiter:   rate.NewLimiter(limit, burst),
		log:       log,
	}
}

// Response is a fully read 2xx response.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Do sends req and reads the body. Non-2xx statuses become *Error carrying
// the status code.
func (t *Transport) Do(req *http.Request) (*Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, &Error{Err: fmt.Errorf("rate limit: %w", err)}
	}

	req.Header.Set("User-Agent", t.userAgent)

	start := time.Now()
	resp, err := t.http.Do(req)
	if err != nil {
		t.log.Warn("request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Redacted()),
			zap.Error(err),
		)
		return nil, &Error{Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("read response: %w", err)}
	}

	t.log.Debug("request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		t.log.Warn("unexpected status",
			zap.String("url", req.URL.Redacted()),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", http.StatusText(resp.StatusCode)),
		}
	}
	if len(body) > maxBodySize {
		return nil, &Error{Err: fmt.Errorf("%w: body exceeds %d bytes", ErrMalformed, maxBodySize)}
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
