// Package template wraps pongo2 for the page and message templates used by
// the renderers.
package template

import (
	"io"
)

// Renderer is the seam the web surface and message formatter rely on.
type Renderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(content string, data any, out ...io.Writer) (string, error)
}
