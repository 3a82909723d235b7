package dispatch

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formdispatch/pkg/render"
)

// Doer sends one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClient overrides the HTTP client.
func WithClient(client Doer) Option {
	return func(d *Dispatcher) {
		if client != nil {
			d.client = client
		}
	}
}

// WithMessages sets the banner formatter.
func WithMessages(messages *render.Messages) Option {
	return func(d *Dispatcher) {
		if messages != nil {
			d.messages = messages
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithTimeout bounds each backend call. Zero leaves the transport defaults.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout >= 0 {
			d.timeout = timeout
		}
	}
}

// WithIDGenerator replaces the submission ID source.
func WithIDGenerator(fn func() string) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.newID = fn
		}
	}
}
