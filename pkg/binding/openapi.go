package binding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// dispatchExtensionKey carries per-operation binding hints:
//
//	x-dispatch:
//	  id: simulateForm
//	  region: simulateResult
//	  trigger: submit
//	  title: Simulate days
//	  loading_message: Processing...
//	  success_message: "{{ newDate }}"
//	  success_flag_optional: true
//	  response: text
//	  toggle: true
//	  skip: true
const dispatchExtensionKey = "x-dispatch"

var hintKeys = map[string]struct{}{
	"id": {}, "region": {}, "trigger": {}, "title": {}, "loading_message": {},
	"success_message": {}, "success_flag_optional": {}, "response": {},
	"toggle": {}, "skip": {},
}

// FromOpenAPI derives bindings from an OpenAPI 3 document. Encoding follows
// the request body media type (query string for bodiless operations), fields
// follow query/path parameters and request body properties.
func FromOpenAPI(ctx context.Context, raw []byte) ([]FormBinding, error) {
	var out []FormBinding
	err := walkOperations(ctx, raw, func(method, path string, item *openapi3.PathItem, op *openapi3.Operation) {
		hints := dispatchHints(op.Extensions)
		if hintBool(hints, "skip") {
			return
		}
		out = append(out, bindingFromOperation(method, path, item.Parameters, op, hints))
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("openapi: no operations extracted")
	}
	return out, nil
}

// HintIssue reports an x-dispatch key the binding derivation ignores.
type HintIssue struct {
	Method string
	Path   string
	Key    string
}

// LintOpenAPIHints lists unsupported x-dispatch keys in raw.
func LintOpenAPIHints(ctx context.Context, raw []byte) ([]HintIssue, error) {
	var issues []HintIssue
	err := walkOperations(ctx, raw, func(method, path string, _ *openapi3.PathItem, op *openapi3.Operation) {
		hints := dispatchHints(op.Extensions)
		keys := make([]string, 0, len(hints))
		for key := range hints {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if _, ok := hintKeys[key]; !ok {
				issues = append(issues, HintIssue{Method: method, Path: path, Key: key})
			}
		}
	})
	return issues, err
}

// walkOperations visits operations sorted by path then method.
func walkOperations(ctx context.Context, raw []byte, visit func(method, path string, item *openapi3.PathItem, op *openapi3.Operation)) error {
	if len(raw) == 0 {
		return errors.New("openapi: document payload is empty")
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx

	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return fmt.Errorf("openapi: load document: %w", err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return errors.New("openapi: document does not contain any paths")
	}

	paths := spec.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)

	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		operations := item.Operations()
		methods := make([]string, 0, len(operations))
		for method := range operations {
			methods = append(methods, method)
		}
		sort.Strings(methods)
		for _, method := range methods {
			if err := ctx.Err(); err != nil {
				return err
			}
			if op := operations[method]; op != nil {
				visit(strings.ToUpper(method), path, item, op)
			}
		}
	}
	return nil
}

func bindingFromOperation(method, path string, shared openapi3.Parameters, op *openapi3.Operation, hints map[string]any) FormBinding {
	id := hintString(hints, "id")
	if id == "" {
		id = op.OperationID
	}
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}

	b := FormBinding{
		ID:                  id,
		Method:              method,
		URL:                 path,
		ResultRegion:        hintString(hints, "region"),
		Trigger:             Trigger(hintString(hints, "trigger")),
		Title:               firstNonEmpty(hintString(hints, "title"), op.Summary),
		LoadingMessage:      hintString(hints, "loading_message"),
		SuccessMessage:      hintString(hints, "success_message"),
		Response:            ResponseMode(hintString(hints, "response")),
		SuccessFlagOptional: hintBool(hints, "success_flag_optional"),
		Toggle:              hintBool(hints, "toggle"),
	}

	params := append(append(openapi3.Parameters(nil), shared...), op.Parameters...)
	for _, ref := range params {
		if ref == nil || ref.Value == nil {
			continue
		}
		p := ref.Value
		if p.In != openapi3.ParameterInQuery && p.In != openapi3.ParameterInPath {
			continue
		}
		field := fieldFromSchema(p.Name, p.Schema)
		field.Required = p.Required
		field.Help = p.Description
		b.Fields = append(b.Fields, field)
	}

	encoding, body := requestBodySchema(op.RequestBody)
	if encoding != "" {
		b.Encoding = encoding
	}
	if body != nil && body.Value != nil {
		required := make(map[string]struct{}, len(body.Value.Required))
		for _, name := range body.Value.Required {
			required[name] = struct{}{}
		}
		names := make([]string, 0, len(body.Value.Properties))
		for name := range body.Value.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			field := fieldFromSchema(name, body.Value.Properties[name])
			_, field.Required = required[name]
			b.Fields = append(b.Fields, field)
		}
		if len(names) == 0 && b.Encoding == EncodingJSON {
			b.Params = map[string]any{}
		}
	}
	if b.Encoding == "" && method != http.MethodGet && method != http.MethodHead && method != http.MethodDelete && len(b.Fields) > 0 {
		b.Encoding = EncodingQuery
	}
	return b
}

func requestBodySchema(ref *openapi3.RequestBodyRef) (Encoding, *openapi3.SchemaRef) {
	if ref == nil || ref.Value == nil {
		return "", nil
	}
	content := ref.Value.Content
	candidates := []struct {
		mediaType string
		encoding  Encoding
	}{
		{"multipart/form-data", EncodingMultipart},
		{"application/json", EncodingJSON},
		{"application/x-www-form-urlencoded", EncodingURLEncoded},
	}
	for _, candidate := range candidates {
		if mt, ok := content[candidate.mediaType]; ok && mt != nil {
			return candidate.encoding, mt.Schema
		}
	}
	return "", nil
}

func fieldFromSchema(name string, ref *openapi3.SchemaRef) FieldSpec {
	field := FieldSpec{Name: name, Kind: FieldText}
	if ref == nil || ref.Value == nil {
		return field
	}
	schema := ref.Value
	field.Help = schema.Description
	switch firstSchemaType(schema.Type) {
	case openapi3.TypeInteger:
		field.Kind = FieldInt
	case openapi3.TypeNumber:
		field.Kind = FieldFloat
	case openapi3.TypeArray:
		field.Kind = FieldList
	case openapi3.TypeString:
		if schema.Format == "binary" {
			field.Kind = FieldFile
		}
	}
	for _, value := range schema.Enum {
		field.Options = append(field.Options, fmt.Sprint(value))
	}
	return field
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func dispatchHints(extensions map[string]any) map[string]any {
	if len(extensions) == 0 {
		return nil
	}
	hints, ok := extensions[dispatchExtensionKey].(map[string]any)
	if !ok {
		return nil
	}
	return hints
}

func hintString(hints map[string]any, key string) string {
	value, ok := hints[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func hintBool(hints map[string]any, key string) bool {
	value, ok := hints[key].(bool)
	return ok && value
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
