package fetch

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/fanout/pkg/async"
)

// HTTPConfig configures the HTTP fetcher.
type HTTPConfig struct {
	Timeout      time.Duration `env:"FETCH_HTTP_TIMEOUT" envDefault:"30s"`
	UserAgent    string        `env:"FETCH_HTTP_USER_AGENT" envDefault:"fanout/1.0"`
	MaxBodyBytes int64         `env:"FETCH_HTTP_MAX_BODY_BYTES" envDefault:"10485760"`
}

// HTTPOption configures an HTTP fetcher.
type HTTPOption func(*HTTP)

// WithHTTPClient replaces the underlying *http.Client. Nil is ignored.
// The configured timeout is not applied to a supplied client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(h *HTTP) {
		if client != nil {
			h.client = client
		}
	}
}

// HTTP fetches resources with GET requests. It is safe for concurrent use.
type HTTP struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

// NewHTTP creates an HTTP fetcher from cfg.
func NewHTTP(cfg HTTPConfig, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		client:       &http.Client{Timeout: cfg.Timeout},
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Get returns an operation that downloads url.
//
// Failures are reported as *Error: transport errors as KindConnection, non-2xx
// responses as KindStatus (with the status code), and body read failures or
// oversized bodies as KindDecode.
func (h *HTTP) Get(url string) async.Operation[Body] {
	return func(ctx context.Context) (Body, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return Body{}, newError(KindInvalidTarget, url, err)
		}
		if h.userAgent != "" {
			req.Header.Set("User-Agent", h.userAgent)
		}

		resp, err := h.client.Do(req)
		if err != nil {
			return Body{}, newError(KindConnection, url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return Body{}, &Error{
				Kind:   KindStatus,
				Target: url,
				Status: resp.StatusCode,
				Err:    errors.New(http.StatusText(resp.StatusCode)),
			}
		}

		data, err := readLimited(url, resp.Body, h.maxBodyBytes)
		if err != nil {
			return Body{}, err
		}

		return Body{
			Target:      url,
			ContentType: resp.Header.Get("Content-Type"),
			Data:        data,
		}, nil
	}
}
