package provider

import (
	"net/http"
	"time"

	"github.com/okian/mlerank/pkg/logger"
)

// DefaultHTTPTimeout bounds a single remote fetch.
const DefaultHTTPTimeout = 10 * time.Second

type options struct {
	logger  logger.Logger
	timeout time.Duration
	client  *http.Client
}

// Option configures a provider.
type Option func(*options)

// WithLogger sets the logger used for debug output.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTimeout sets the HTTP client timeout. Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

func newOptions(opts []Option) options {
	o := options{timeout: DefaultHTTPTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("provider")
	}
	return o
}
