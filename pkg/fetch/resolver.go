package fetch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrymomot/fanout/pkg/async"
)

// Handler turns a parsed target into an operation.
type Handler func(target *url.URL) async.Operation[Body]

// ResolverOption registers handlers on a Resolver.
type ResolverOption func(*Resolver)

// WithScheme registers h for scheme. Later registrations replace earlier ones.
func WithScheme(scheme string, h Handler) ResolverOption {
	return func(r *Resolver) {
		if scheme != "" && h != nil {
			r.handlers[strings.ToLower(scheme)] = h
		}
	}
}

// WithHTTP serves http and https targets with h.
func WithHTTP(h *HTTP) ResolverOption {
	handler := func(u *url.URL) async.Operation[Body] {
		return h.Get(u.String())
	}
	return func(r *Resolver) {
		WithScheme("http", handler)(r)
		WithScheme("https", handler)(r)
	}
}

// WithS3 serves s3://bucket/key targets with s.
func WithS3(s *S3) ResolverOption {
	return WithScheme("s3", func(u *url.URL) async.Operation[Body] {
		return s.Object(u.Host, strings.TrimPrefix(u.Path, "/"))
	})
}

// WithRedis serves redis:key targets with rd.
func WithRedis(rd *Redis) ResolverOption {
	return WithScheme("redis", func(u *url.URL) async.Operation[Body] {
		key := u.Opaque
		if key == "" {
			key = strings.TrimPrefix(u.Path, "/")
		}
		return rd.Key(key)
	})
}

// Resolver maps targets to operations by URL scheme.
// Build it once with options; it is read-only afterwards and safe for concurrent use.
type Resolver struct {
	handlers map[string]Handler
}

// NewResolver creates a Resolver with the given handlers.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{handlers: make(map[string]Handler)}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Supports reports whether a handler is registered for scheme.
func (r *Resolver) Supports(scheme string) bool {
	_, ok := r.handlers[strings.ToLower(scheme)]
	return ok
}

// Resolve returns the operation for target. Targets that cannot be parsed or
// have no registered scheme resolve to an operation failing with
// KindInvalidTarget, so a bad target fails alone like any other operation.
func (r *Resolver) Resolve(target string) async.Operation[Body] {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return async.Fail[Body](newError(KindInvalidTarget, target, err))
	}
	if u.Scheme == "" {
		return async.Fail[Body](newError(KindInvalidTarget, target, errors.New("missing scheme")))
	}

	h, ok := r.handlers[strings.ToLower(u.Scheme)]
	if !ok {
		return async.Fail[Body](newError(KindInvalidTarget, target, fmt.Errorf("unsupported scheme %q", u.Scheme)))
	}
	return h(u)
}
