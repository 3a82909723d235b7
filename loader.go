package formdispatch

import (
	"context"
	"fmt"
	"strings"

	internalLoader "github.com/goliatone/go-formdispatch/internal/loader"
	"github.com/goliatone/go-formdispatch/pkg/binding"
)

// NewLoader constructs a binding document loader while keeping the concrete
// type hidden from consumers.
func NewLoader(options ...binding.LoaderOption) binding.Loader {
	cfg := binding.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// SourceFor maps a location to a Source: http(s) URLs load remotely,
// anything else is a file path.
func SourceFor(location string) (binding.Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("formdispatch: binding source is empty")
	}
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return binding.SourceFromURL(location)
	}
	return binding.SourceFromFile(location), nil
}

// LoadTable loads and decodes a binding table. An empty location returns the
// built-in table.
func LoadTable(ctx context.Context, loader binding.Loader, location string) (*binding.Table, error) {
	if strings.TrimSpace(location) == "" {
		return binding.DefaultTable(), nil
	}
	src, err := SourceFor(location)
	if err != nil {
		return nil, err
	}
	if loader == nil {
		loader = NewLoader()
	}
	doc, err := loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("formdispatch: load bindings: %w", err)
	}
	table, err := binding.Decode(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("formdispatch: decode bindings: %w", err)
	}
	return table, nil
}
