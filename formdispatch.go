// Package formdispatch binds UI triggers to REST calls and renders each
// response as a banner plus a result region.
//
// A host (terminal or web page) exposes trigger elements and a surface.
// Wire builds the request builder, presenter, and dispatcher for a host and
// attaches one handler per binding.
package formdispatch

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formdispatch/pkg/binder"
	"github.com/goliatone/go-formdispatch/pkg/binding"
	"github.com/goliatone/go-formdispatch/pkg/dispatch"
	"github.com/goliatone/go-formdispatch/pkg/render"
	"github.com/goliatone/go-formdispatch/pkg/render/template"
	"github.com/goliatone/go-formdispatch/pkg/request"
)

// Options collects the settings Wire needs.
type Options struct {
	BackendURL string
	Headers    map[string]string
	Timeout    time.Duration
	BannerTTL  time.Duration
	Client     dispatch.Doer
	Logger     *zap.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithBackend sets the base URL relative binding paths resolve against.
func WithBackend(url string) Option {
	return func(o *Options) {
		o.BackendURL = url
	}
}

// WithHeaders adds headers sent on every backend call.
func WithHeaders(headers map[string]string) Option {
	return func(o *Options) {
		if o.Headers == nil {
			o.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithBannerTTL overrides how long banners stay visible.
func WithBannerTTL(d time.Duration) Option {
	return func(o *Options) {
		o.BannerTTL = d
	}
}

// WithClient overrides the HTTP client.
func WithClient(client dispatch.Doer) Option {
	return func(o *Options) {
		o.Client = client
	}
}

// WithLogger attaches a logger to every component.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Stack is the wired adapter for one host.
type Stack struct {
	Table      *binding.Table
	Presenter  *render.Presenter
	Dispatcher *dispatch.Dispatcher
	Binder     *binder.Binder
	// Bound lists the binding IDs attached to the host.
	Bound []string
}

// Wire assembles the adapter around host and binds every element of table
// the host exposes.
func Wire(host binder.RunnableHost, table *binding.Table, options ...Option) (*Stack, error) {
	opts := Options{
		BannerTTL: render.DefaultBannerTTL,
		Client:    http.DefaultClient,
		Logger:    zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	if table == nil {
		table = binding.DefaultTable()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	logger := opts.Logger.With(zap.String("host", host.Name()))

	builderOptions := make([]request.BuilderOption, 0, len(opts.Headers))
	for name, value := range opts.Headers {
		builderOptions = append(builderOptions, request.WithHeader(name, value))
	}
	builder, err := request.NewBuilder(opts.BackendURL, builderOptions...)
	if err != nil {
		return nil, err
	}

	engine, err := template.New()
	if err != nil {
		return nil, err
	}

	presenter := render.NewPresenter(host.Surface(),
		render.WithBannerTTL(opts.BannerTTL),
		render.WithLogger(logger.Named("presenter")),
	)
	dispatcher, err := dispatch.New(builder, presenter,
		dispatch.WithClient(opts.Client),
		dispatch.WithTimeout(opts.Timeout),
		dispatch.WithMessages(render.NewMessages(engine, render.WithMessageLogger(logger))),
		dispatch.WithLogger(logger.Named("dispatch")),
	)
	if err != nil {
		return nil, err
	}

	b := binder.New(host, dispatcher, binder.WithLogger(logger.Named("binder")))
	bound := b.Bind(table)
	logger.Info("bindings attached", zap.Int("bound", len(bound)), zap.Int("declared", table.Len()))

	return &Stack{
		Table:      table,
		Presenter:  presenter,
		Dispatcher: dispatcher,
		Binder:     b,
		Bound:      bound,
	}, nil
}
