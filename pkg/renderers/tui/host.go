// Package tui hosts the dispatch adapter in a terminal: every binding is a
// menu entry and its fields become prompts.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formdispatch/pkg/binder"
	"github.com/goliatone/go-formdispatch/pkg/binding"
	"github.com/goliatone/go-formdispatch/pkg/render"
	"github.com/goliatone/go-formdispatch/pkg/request"
)

const (
	quitOption = "Quit"
	noneOption = "(none)"
)

// Host is a terminal page exposing one element per binding of its table.
type Host struct {
	driver PromptDriver
	out    io.Writer
	theme  Theme
	logger *zap.Logger

	surface *Surface

	mu       sync.Mutex
	order    []string
	elements map[string]*element
}

var _ binder.RunnableHost = (*Host)(nil)

type element struct {
	host    *Host
	binding binding.FormBinding
	handler binder.Handler
}

// OnTrigger replaces the element's handler; a terminal menu entry has a
// single action regardless of the trigger kind.
func (e *element) OnTrigger(_ binding.Trigger, handler binder.Handler) {
	e.host.mu.Lock()
	defer e.host.mu.Unlock()
	e.handler = handler
}

// New builds a host exposing the bindings of table.
func New(table *binding.Table, options ...Option) *Host {
	h := &Host{
		out:      os.Stdout,
		theme:    DefaultTheme,
		logger:   zap.NewNop(),
		elements: make(map[string]*element),
	}
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	if h.driver == nil {
		h.driver = newSurveyDriver(h.out)
	}
	h.surface = NewSurface(h.out, h.theme)

	if table != nil {
		for _, fb := range table.All() {
			h.order = append(h.order, fb.ID)
			h.elements[fb.ID] = &element{host: h, binding: fb}
		}
	}
	return h
}

// Name reports the host identifier.
func (h *Host) Name() string {
	return "tui"
}

// Surface returns the terminal surface.
func (h *Host) Surface() render.Surface {
	return h.surface
}

// Element returns the element for id.
func (h *Host) Element(id string) (binder.Element, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	el, ok := h.elements[id]
	if !ok {
		return nil, false
	}
	return el, true
}

// Run shows the action menu until the user quits or ctx ends. Each action
// waits for its result before the menu returns.
func (h *Host) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		actions := h.actions()
		if len(actions) == 0 {
			return ErrNoActions
		}

		options := make([]string, 0, len(actions)+1)
		for _, el := range actions {
			options = append(options, el.binding.DisplayTitle())
		}
		options = append(options, quitOption)

		idx, err := h.driver.Select(ctx, SelectConfig{Message: "Action", Options: options, PageSize: len(options)})
		if err != nil {
			if errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if idx < 0 || idx >= len(actions) {
			return nil
		}

		el := actions[idx]
		sub, err := h.collect(ctx, el.binding)
		if err != nil {
			if errors.Is(err, ErrAborted) {
				continue
			}
			return err
		}
		res := <-el.handler(ctx, sub)
		h.logger.Debug("action finished",
			zap.String("binding", res.BindingID),
			zap.Bool("toggled", res.Toggled),
			zap.Bool("rendered", res.Rendered),
		)
		if res.Toggled {
			_ = h.driver.Info(ctx, fmt.Sprintf("%s %s hidden", h.theme.InfoPrefix, el.binding.ResultRegion))
		}
	}
}

type action struct {
	binding binding.FormBinding
	handler binder.Handler
}

func (h *Host) actions() []action {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]action, 0, len(h.order))
	for _, id := range h.order {
		if el := h.elements[id]; el.handler != nil {
			out = append(out, action{binding: el.binding, handler: el.handler})
		}
	}
	return out
}

// collect prompts for every field of fb. Values are kept raw; parsing and
// numeric checks happen when the request is built.
func (h *Host) collect(ctx context.Context, fb binding.FormBinding) (request.Submission, error) {
	sub := request.NewSubmission(nil)
	if fb.Trigger == binding.TriggerClick {
		return sub, nil
	}
	for _, field := range fb.Fields {
		switch {
		case len(field.Options) > 0:
			value, err := h.promptOption(ctx, field)
			if err != nil {
				return sub, err
			}
			sub = sub.With(field.Name, value)
		case field.Kind == binding.FieldFile:
			path, err := h.driver.Input(ctx, InputConfig{
				Message:   field.DisplayLabel() + " (path)",
				Help:      field.Help,
				Validator: fileValidator(field.Required),
			})
			if err != nil {
				return sub, err
			}
			if path = strings.TrimSpace(path); path != "" {
				sub = sub.WithFile(field.Name, request.File{Path: path})
			}
		default:
			value, err := h.driver.Input(ctx, InputConfig{
				Message:   field.DisplayLabel(),
				Help:      field.Help,
				Validator: requiredValidator(field.Required),
			})
			if err != nil {
				return sub, err
			}
			sub = sub.With(field.Name, value)
		}
	}
	return sub, nil
}

func (h *Host) promptOption(ctx context.Context, field binding.FieldSpec) (string, error) {
	options := append([]string(nil), field.Options...)
	if !field.Required {
		options = append([]string{noneOption}, options...)
	}
	idx, err := h.driver.Select(ctx, SelectConfig{Message: field.DisplayLabel(), Options: options, Help: field.Help})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(options) || options[idx] == noneOption {
		return "", nil
	}
	return options[idx], nil
}

func requiredValidator(required bool) func(string) error {
	if !required {
		return nil
	}
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return request.ErrRequired
		}
		return nil
	}
}

func fileValidator(required bool) func(string) error {
	return func(value string) error {
		path := strings.TrimSpace(value)
		if path == "" {
			if required {
				return request.ErrRequired
			}
			return nil
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return nil
	}
}
