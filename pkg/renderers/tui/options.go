package tui

import (
	"io"

	"go.uber.org/zap"
)

// Theme captures the prefixes printed in front of surface output.
type Theme struct {
	SuccessPrefix string
	ErrorPrefix   string
	InfoPrefix    string
	LoadingPrefix string
}

// DefaultTheme is used when WithTheme is not supplied.
var DefaultTheme = Theme{
	SuccessPrefix: "[ok]",
	ErrorPrefix:   "[error]",
	InfoPrefix:    "[info]",
	LoadingPrefix: "[...]",
}

// Option configures the terminal host.
type Option func(*Host)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(h *Host) {
		if driver != nil {
			h.driver = driver
		}
	}
}

// WithOutput redirects surface output. Defaults to os.Stdout.
func WithOutput(out io.Writer) Option {
	return func(h *Host) {
		if out != nil {
			h.out = out
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(h *Host) {
		h.theme = theme
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
