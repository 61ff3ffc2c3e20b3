package history

import (
	"time"

	"github.com/okian/winrate/pkg/logger"
)

// Default loader configuration constants.
const (
	defaultTimeout      = 30 * time.Second
	defaultMaxRetries   = 3
	defaultRetryWaitMin = 200 * time.Millisecond
	defaultRetryWaitMax = 5 * time.Second
	defaultRateLimit    = 5.0 // requests per second
	fileNameSuffix      = "_matches.csv"
)

// Option applies a configuration option to a loader.
type Option func(*options)

type options struct {
	logger       logger.Logger
	timeout      time.Duration
	maxRetries   int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	rateLimit    float64
}

func newOptions(opts []Option) options {
	o := options{
		timeout:      defaultTimeout,
		maxRetries:   defaultMaxRetries,
		retryWaitMin: defaultRetryWaitMin,
		retryWaitMax: defaultRetryWaitMax,
		rateLimit:    defaultRateLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get()
	}
	o.logger = o.logger.Named("history")
	return o
}

// WithLogger sets a custom logger for the loader.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTimeout bounds a single HTTP attempt.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRetries sets how many times a failed HTTP request is retried and the
// backoff bounds between attempts.
func WithRetries(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(o *options) {
		if maxRetries >= 0 {
			o.maxRetries = maxRetries
		}
		if waitMin > 0 && waitMax >= waitMin {
			o.retryWaitMin = waitMin
			o.retryWaitMax = waitMax
		}
	}
}

// WithRateLimit caps outgoing HTTP requests per second.
func WithRateLimit(rps float64) Option {
	return func(o *options) {
		if rps > 0 {
			o.rateLimit = rps
		}
	}
}
