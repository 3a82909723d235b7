package binding

import (
	"fmt"
	"sort"
)

// Table stores bindings by ID while preserving declaration order. It is built
// once at startup and read concurrently afterwards.
type Table struct {
	order    []string
	bindings map[string]FormBinding
}

// NewTable normalises and validates the supplied bindings. Duplicate IDs
// return ErrDuplicateID.
func NewTable(bindings ...FormBinding) (*Table, error) {
	table := &Table{
		order:    make([]string, 0, len(bindings)),
		bindings: make(map[string]FormBinding, len(bindings)),
	}
	for _, raw := range bindings {
		b := raw.Normalize()
		if err := b.Validate(); err != nil {
			return nil, err
		}
		if _, exists := table.bindings[b.ID]; exists {
			return nil, fmt.Errorf("%w %q", ErrDuplicateID, b.ID)
		}
		table.bindings[b.ID] = cloneBinding(b)
		table.order = append(table.order, b.ID)
	}
	return table, nil
}

// MustNewTable panics when the bindings are invalid. Useful for init-time
// wiring of built-in tables.
func MustNewTable(bindings ...FormBinding) *Table {
	table, err := NewTable(bindings...)
	if err != nil {
		panic(err)
	}
	return table
}

// Get retrieves a binding by ID.
func (t *Table) Get(id string) (FormBinding, error) {
	if t == nil {
		return FormBinding{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	b, ok := t.bindings[id]
	if !ok {
		return FormBinding{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return cloneBinding(b), nil
}

// Has reports whether a binding is registered.
func (t *Table) Has(id string) bool {
	if t == nil {
		return false
	}
	_, ok := t.bindings[id]
	return ok
}

// IDs returns binding IDs in declaration order.
func (t *Table) IDs() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.order...)
}

// All returns copies of every binding in declaration order.
func (t *Table) All() []FormBinding {
	if t == nil {
		return nil
	}
	out := make([]FormBinding, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, cloneBinding(t.bindings[id]))
	}
	return out
}

// Len reports the number of bindings.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Regions returns the sorted set of result regions referenced by the table.
func (t *Table) Regions() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(t.bindings))
	for _, b := range t.bindings {
		seen[b.ResultRegion] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for region := range seen {
		out = append(out, region)
	}
	sort.Strings(out)
	return out
}

func cloneBinding(b FormBinding) FormBinding {
	clone := b
	if len(b.Fields) > 0 {
		clone.Fields = make([]FieldSpec, len(b.Fields))
		for i, field := range b.Fields {
			field.Options = append([]string(nil), field.Options...)
			clone.Fields[i] = field
		}
	}
	if len(b.Params) > 0 {
		clone.Params = make(map[string]any, len(b.Params))
		for k, v := range b.Params {
			clone.Params[k] = v
		}
	}
	if len(b.Headers) > 0 {
		clone.Headers = make(map[string]string, len(b.Headers))
		for k, v := range b.Headers {
			clone.Headers[k] = v
		}
	}
	return clone
}
