package digest

import (
	"context"
	"time"

	"github.com/segmentio/ksuid"
)

type Option interface {
	apply(*options)
}

type options struct {
	timeout     time.Duration
	clientNonce func() string
}

type optionFunc func(*options)

func (fn optionFunc) apply(opts *options) {
	fn(opts)
}

// WithTimeout bounds each individual round trip (the initial request and the
// authenticated retry are timed separately). The bound covers reading the
// response body. Values of timeout <= 0 disable the bound.
func WithTimeout(timeout time.Duration) Option {
	return optionFunc(func(opts *options) {
		opts.timeout = timeout
	})
}

// WithClientNonce sets the generator used for the cnonce directive. By default
// DefaultClientNonce is sent on every request.
func WithClientNonce(fn func() string) Option {
	return optionFunc(func(opts *options) {
		opts.clientNonce = fn
	})
}

// RandomClientNonce returns a fresh, unpredictable client nonce. It is
// suitable for use with WithClientNonce.
func RandomClientNonce() string {
	return ksuid.New().String()
}

func makeOptions(opts ...Option) options {
	o := options{}
	for _, opt := range opts {
		opt.apply(&o)
	}
	return o
}

func (o options) cnonce() string {
	if o.clientNonce == nil {
		return DefaultClientNonce
	}
	return o.clientNonce()
}

type timeoutKey struct{}

// ContextWithTimeout overrides the per-round-trip timeout configured with
// WithTimeout for requests carrying the returned context.
func ContextWithTimeout(ctx context.Context, timeout time.Duration) context.Context {
	return context.WithValue(ctx, timeoutKey{}, timeout)
}

func (o options) timeoutFor(ctx context.Context) time.Duration {
	if d, ok := ctx.Value(timeoutKey{}).(time.Duration); ok {
		return d
	}
	return o.timeout
}
