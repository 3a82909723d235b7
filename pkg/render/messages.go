package render

import (
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formdispatch/pkg/binding"
	"github.com/goliatone/go-formdispatch/pkg/outcome"
	"github.com/goliatone/go-formdispatch/pkg/render/template"
)

// Messages produces banner text for an outcome. Success banners come from the
// binding's SuccessMessage template evaluated against the response payload.
type Messages struct {
	engine template.Renderer
	logger *zap.Logger
}

// MessagesOption configures Messages.
type MessagesOption func(*Messages)

// WithMessageLogger attaches a logger used for template failures.
func WithMessageLogger(logger *zap.Logger) MessagesOption {
	return func(m *Messages) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMessages builds a formatter around engine. A nil engine disables
// templating and success banners fall back to the default text.
func NewMessages(engine template.Renderer, options ...MessagesOption) *Messages {
	m := &Messages{engine: engine, logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Banner returns the banner text for out.
func (m *Messages) Banner(fb binding.FormBinding, out outcome.Outcome) string {
	if !out.OK() {
		return "Error: " + out.Message
	}
	return m.SuccessText(fb, out)
}

// SuccessText renders fb.SuccessMessage, or "<title> successful!".
func (m *Messages) SuccessText(fb binding.FormBinding, out outcome.Outcome) string {
	fallback := fb.DisplayTitle() + " successful!"
	tpl := strings.TrimSpace(fb.SuccessMessage)
	if tpl == "" {
		return fallback
	}
	if m == nil || m.engine == nil || !strings.Contains(tpl, "{") {
		return tpl
	}

	data := out.PayloadMap()
	if data == nil {
		data = map[string]any{}
	}
	text, err := m.engine.RenderString("{% autoescape off %}"+tpl+"{% endautoescape %}", data)
	if err != nil {
		m.logger.Warn("success message template failed",
			zap.String("binding", fb.ID),
			zap.Error(err),
		)
		return fallback
	}
	return strings.TrimSpace(text)
}
