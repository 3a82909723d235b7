package binding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// tableDocument is the on-disk layout for binding tables.
type tableDocument struct {
	Bindings []FormBinding `yaml:"bindings" json:"bindings"`
}

// Decode turns a loaded document into a validated Table. YAML and JSON (with
// comments and trailing commas) tables are accepted, as are OpenAPI 3
// documents describing the backend.
func Decode(ctx context.Context, doc Document) (*Table, error) {
	raw := doc.Raw()
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("binding: document %s is empty", doc.Location())
	}

	if isOpenAPI(raw) {
		bindings, err := FromOpenAPI(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("binding: %s: %w", doc.Location(), err)
		}
		return NewTable(bindings...)
	}

	var parsed tableDocument
	switch strings.ToLower(filepath.Ext(doc.Location())) {
	case ".json", ".jsonc", ".hujson":
		standard, err := hujson.Standardize(raw)
		if err != nil {
			return nil, fmt.Errorf("binding: parse %s: %w", doc.Location(), err)
		}
		if err := json.Unmarshal(standard, &parsed); err != nil {
			return nil, fmt.Errorf("binding: decode %s: %w", doc.Location(), err)
		}
	default:
		if err := yaml.Unmarshal(raw, &parsed); err != nil {
			return nil, fmt.Errorf("binding: decode %s: %w", doc.Location(), err)
		}
	}

	if len(parsed.Bindings) == 0 {
		return nil, fmt.Errorf("binding: document %s declares no bindings", doc.Location())
	}
	table, err := NewTable(parsed.Bindings...)
	if err != nil {
		return nil, fmt.Errorf("binding: %s: %w", doc.Location(), err)
	}
	return table, nil
}

// isOpenAPI sniffs the top-level "openapi" key. YAML is a superset of JSON so
// a single probe covers both encodings.
func isOpenAPI(raw []byte) bool {
	var probe struct {
		OpenAPI string `yaml:"openapi"`
	}
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(probe.OpenAPI), "3")
}
