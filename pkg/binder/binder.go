// Package binder attaches dispatch handlers to the trigger elements a host
// page exposes.
package binder

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formdispatch/pkg/binding"
	"github.com/goliatone/go-formdispatch/pkg/dispatch"
	"github.com/goliatone/go-formdispatch/pkg/request"
)

// Handler reacts to a trigger. It starts the dispatch and returns without
// waiting; the channel yields the result once rendered.
type Handler func(ctx context.Context, sub request.Submission) <-chan dispatch.Result

// Element is a trigger target on a host page.
type Element interface {
	OnTrigger(trigger binding.Trigger, handler Handler)
}

// Host exposes trigger elements by identifier.
type Host interface {
	Element(id string) (Element, bool)
}

// Submitter starts dispatches. *dispatch.Dispatcher satisfies it.
type Submitter interface {
	Submit(ctx context.Context, fb binding.FormBinding, sub request.Submission) <-chan dispatch.Result
}

// Binder wires one host to a submitter.
type Binder struct {
	host      Host
	submitter Submitter
	logger    *zap.Logger

	mu    sync.Mutex
	bound map[string]struct{}
}

// Option configures a Binder.
type Option func(*Binder)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Binder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New returns a binder for host.
func New(host Host, submitter Submitter, options ...Option) *Binder {
	b := &Binder{
		host:      host,
		submitter: submitter,
		logger:    zap.NewNop(),
		bound:     make(map[string]struct{}),
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Bind attaches a handler to every element of table present on the host and
// returns the IDs bound by this call. Missing elements are skipped and IDs
// already bound are not bound again.
func (b *Binder) Bind(table *binding.Table) []string {
	if b == nil || b.host == nil || table == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var attached []string
	for _, fb := range table.All() {
		if _, ok := b.bound[fb.ID]; ok {
			continue
		}
		element, ok := b.host.Element(fb.ID)
		if !ok || element == nil {
			b.logger.Debug("trigger element not present", zap.String("binding", fb.ID))
			continue
		}
		element.OnTrigger(fb.Trigger, b.handler(fb))
		b.bound[fb.ID] = struct{}{}
		attached = append(attached, fb.ID)
	}
	return attached
}

// Bound reports whether id has a handler attached.
func (b *Binder) Bound(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.bound[id]
	return ok
}

func (b *Binder) handler(fb binding.FormBinding) Handler {
	return func(ctx context.Context, sub request.Submission) <-chan dispatch.Result {
		return b.submitter.Submit(ctx, fb, sub)
	}
}
