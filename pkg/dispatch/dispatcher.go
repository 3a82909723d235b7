// Package dispatch runs the trigger → request → backend → surface pipeline
// for any binding in a table.
package dispatch

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdispatch/pkg/binding"
	"github.com/goliatone/go-formdispatch/pkg/outcome"
	"github.com/goliatone/go-formdispatch/pkg/render"
	"github.com/goliatone/go-formdispatch/pkg/request"
)

// ErrNilDependency is returned by New when a required collaborator is nil.
var ErrNilDependency = errors.New("dispatch: builder and presenter are required")

// Result reports what happened to one submission.
type Result struct {
	SubmissionID string
	BindingID    string
	Outcome      outcome.Outcome
	// Rendered is false when a newer submission superseded this one.
	Rendered bool
	// Toggled is true when the trigger hid a visible result instead of
	// dispatching.
	Toggled  bool
	Duration time.Duration
}

// Dispatcher is the single generic handler behind every binding.
type Dispatcher struct {
	client    Doer
	builder   *request.Builder
	presenter *render.Presenter
	messages  *render.Messages
	logger    *zap.Logger
	timeout   time.Duration
	newID     func() string
}

// New wires a dispatcher around a builder and presenter.
func New(builder *request.Builder, presenter *render.Presenter, options ...Option) (*Dispatcher, error) {
	if builder == nil || presenter == nil {
		return nil, ErrNilDependency
	}
	d := &Dispatcher{
		client:    http.DefaultClient,
		builder:   builder,
		presenter: presenter,
		messages:  render.NewMessages(nil),
		logger:    zap.NewNop(),
		newID:     uuid.NewString,
	}
	for _, opt := range options {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// Dispatch runs one submission to completion and returns its result.
func (d *Dispatcher) Dispatch(ctx context.Context, fb binding.FormBinding, sub request.Submission) Result {
	return <-d.Submit(ctx, fb, sub)
}

// Submit starts a submission without waiting for the backend. The region
// enters Loading before Submit returns; the channel yields exactly one
// Result once the outcome has been rendered or dropped.
func (d *Dispatcher) Submit(ctx context.Context, fb binding.FormBinding, sub request.Submission) <-chan Result {
	done := make(chan Result, 1)
	res := Result{SubmissionID: d.newID(), BindingID: fb.ID}
	logger := d.logger.With(
		zap.String("submission_id", res.SubmissionID),
		zap.String("binding", fb.ID),
	)

	if fb.Toggle && d.presenter.Toggle(fb.ResultRegion) {
		logger.Debug("result hidden by toggle", zap.String("region", fb.ResultRegion))
		res.Toggled = true
		done <- res
		return done
	}

	ticket := d.presenter.Begin(fb.ResultRegion, fb.LoadingMessage)
	start := time.Now()

	go func() {
		res.Outcome = d.call(ctx, logger, fb, sub)
		res.Duration = time.Since(start)
		res.Rendered = d.presenter.Complete(ticket, res.Outcome, d.messages.Banner(fb, res.Outcome))

		fields := []zap.Field{
			zap.Int("status", res.Outcome.StatusCode),
			zap.String("kind", string(res.Outcome.Kind)),
			zap.Duration("duration", res.Duration),
			zap.Bool("rendered", res.Rendered),
		}
		if res.Outcome.OK() {
			logger.Info("dispatch completed", fields...)
		} else {
			fields = append(fields,
				zap.String("class", string(res.Outcome.Class)),
				zap.String("message", res.Outcome.Message),
			)
			logger.Warn("dispatch failed", fields...)
		}
		done <- res
	}()
	return done
}

func (d *Dispatcher) call(ctx context.Context, logger *zap.Logger, fb binding.FormBinding, sub request.Submission) outcome.Outcome {
	env, err := d.builder.Build(fb, sub)
	if err != nil {
		if request.IsInputError(err) {
			return outcome.FromInputError(err)
		}
		logger.Error("build request", zap.Error(err))
		return outcome.Failure(outcome.ClassInput, 0, err.Error())
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	req, err := env.HTTPRequest(ctx)
	if err != nil {
		return outcome.Failure(outcome.ClassInput, 0, err.Error())
	}
	logger.Debug("sending request",
		zap.String("method", env.Method),
		zap.String("url", env.URL),
		zap.String("content_type", env.ContentType()),
	)

	resp, err := d.client.Do(req)
	if err != nil {
		return outcome.FromTransportError(err)
	}
	return outcome.FromResponse(resp, outcome.Options{
		Text:                fb.Response == binding.ResponseText,
		SuccessFlagOptional: fb.SuccessFlagOptional,
	})
}
