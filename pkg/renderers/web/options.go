package web

import (
	"time"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdispatch/pkg/render/template"
)

// Option configures the web host.
type Option func(*Host)

// WithAddr sets the listen address used by Run.
func WithAddr(addr string) Option {
	return func(h *Host) {
		if addr != "" {
			h.addr = addr
		}
	}
}

// WithTitle sets the page heading.
func WithTitle(title string) Option {
	return func(h *Host) {
		if title != "" {
			h.title = title
		}
	}
}

// WithTheme selects a manifest and variant for the page colours.
func WithTheme(manifest *theme.Manifest, variant string) Option {
	return func(h *Host) {
		h.theme = ResolveTheme(manifest, variant)
	}
}

// WithTemplateRenderer overrides the page template renderer.
func WithTemplateRenderer(renderer template.Renderer) Option {
	return func(h *Host) {
		if renderer != nil {
			h.templates = renderer
		}
	}
}

// WithMaxUploadBytes bounds multipart form parsing.
func WithMaxUploadBytes(n int64) Option {
	return func(h *Host) {
		if n > 0 {
			h.maxUpload = n
		}
	}
}

// WithShutdownTimeout bounds graceful shutdown in Run.
func WithShutdownTimeout(d time.Duration) Option {
	return func(h *Host) {
		if d > 0 {
			h.shutdownTimeout = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}
