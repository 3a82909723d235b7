package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formdispatch/pkg/binding"
)

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Builder turns a binding plus submitted values into an Envelope.
type Builder struct {
	baseURL string
	headers http.Header
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithHeader adds a header sent with every envelope.
func WithHeader(name, value string) BuilderOption {
	return func(b *Builder) {
		if strings.TrimSpace(name) == "" {
			return
		}
		b.headers.Add(name, value)
	}
}

// NewBuilder constructs a Builder resolving relative binding URLs against
// baseURL. An empty baseURL keeps binding URLs as declared.
func NewBuilder(baseURL string, options ...BuilderOption) (*Builder, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base != "" {
		parsed, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("request: invalid base url %q: %w", baseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return nil, fmt.Errorf("request: base url %q must be absolute", baseURL)
		}
	}
	b := &Builder{baseURL: base, headers: make(http.Header)}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

// param is a parsed field ready for encoding.
type param struct {
	name  string
	field string
	kind  binding.FieldKind
	value any
	file  *File
	data  []byte
}

// Build parses the submission against the binding's field specs and encodes
// the envelope. Field problems return an *InputError and no request is built.
func (b *Builder) Build(fb binding.FormBinding, sub Submission) (Envelope, error) {
	params, err := parseFields(fb, sub)
	if err != nil {
		return Envelope{}, err
	}

	path, params, err := expandPath(fb.URL, params)
	if err != nil {
		return Envelope{}, err
	}
	target, err := b.resolve(path)
	if err != nil {
		return Envelope{}, err
	}

	env := Envelope{
		Method: fb.Method,
		Header: b.headers.Clone(),
	}
	if env.Header == nil {
		env.Header = make(http.Header)
	}
	if fb.Response == binding.ResponseText {
		env.Header.Set("Accept", "*/*")
	} else {
		env.Header.Set("Accept", "application/json")
	}

	switch fb.Encoding {
	case binding.EncodingQuery:
		query := target.Query()
		addStatic(query, fb.Params)
		addValues(query, params)
		target.RawQuery = query.Encode()
	case binding.EncodingJSON:
		body, err := encodeJSON(fb.Params, params)
		if err != nil {
			return Envelope{}, err
		}
		env.Body = body
		env.Header.Set("Content-Type", "application/json")
	case binding.EncodingURLEncoded:
		form := url.Values{}
		addStatic(form, fb.Params)
		addValues(form, params)
		env.Body = []byte(form.Encode())
		env.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	case binding.EncodingMultipart:
		body, contentType, err := encodeMultipart(fb.Params, params)
		if err != nil {
			return Envelope{}, err
		}
		env.Body = body
		env.Header.Set("Content-Type", contentType)
	default:
		return Envelope{}, fmt.Errorf("request: %w %q", binding.ErrUnknownEncoding, fb.Encoding)
	}

	for name, value := range fb.Headers {
		env.Header.Set(name, value)
	}
	env.URL = target.String()
	return env, nil
}

func (b *Builder) resolve(path string) (*url.URL, error) {
	raw := path
	if b.baseURL != "" && !strings.Contains(path, "://") {
		raw = b.baseURL + "/" + strings.TrimLeft(path, "/")
	}
	target, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("request: invalid url %q: %w", raw, err)
	}
	return target, nil
}

func parseFields(fb binding.FormBinding, sub Submission) ([]param, error) {
	keyFields := fb.KeyFields()
	params := make([]param, 0, len(fb.Fields))

	for _, field := range fb.Fields {
		raw := sub.Value(field.Name)
		trimmed := strings.TrimSpace(raw)

		if _, isKey := keyFields[field.Name]; isKey {
			if err := checkScalar(field, trimmed); err != nil {
				return nil, err
			}
			continue
		}

		name := field.WireName()
		if field.ParamFrom != "" {
			source, _ := fb.Field(field.ParamFrom)
			name = strings.TrimSpace(sub.Value(field.ParamFrom))
			if name == "" {
				return nil, inputErr(source.Name, "", ErrRequired)
			}
		}

		p := param{name: name, field: field.Name, kind: field.Kind}
		switch field.Kind {
		case binding.FieldList:
			items := SplitList(raw)
			if field.Required && len(items) == 0 {
				return nil, inputErr(field.Name, "", ErrRequired)
			}
			p.value = items
		case binding.FieldInt:
			if trimmed == "" {
				if field.Required {
					return nil, inputErr(field.Name, "", ErrRequired)
				}
				continue
			}
			n, err := strconv.ParseInt(trimmed, 10, 64)
			if err != nil {
				return nil, inputErr(field.Name, raw, ErrNotInteger)
			}
			p.value = n
		case binding.FieldFloat:
			if trimmed == "" {
				if field.Required {
					return nil, inputErr(field.Name, "", ErrRequired)
				}
				continue
			}
			f, err := strconv.ParseFloat(trimmed, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, inputErr(field.Name, raw, ErrNotNumeric)
			}
			p.value = f
		case binding.FieldFile:
			file, ok := sub.File(field.Name)
			if !ok {
				if field.Required {
					return nil, inputErr(field.Name, "", ErrMissingFile)
				}
				continue
			}
			data, err := file.Bytes()
			if err != nil {
				return nil, inputErr(field.Name, file.Name(), err)
			}
			p.file = &file
			p.data = data
		default:
			if err := checkScalar(field, trimmed); err != nil {
				return nil, err
			}
			if trimmed == "" {
				continue
			}
			p.value = trimmed
		}
		params = append(params, p)
	}
	return params, nil
}

func checkScalar(field binding.FieldSpec, value string) error {
	if value == "" {
		if field.Required {
			return inputErr(field.Name, "", ErrRequired)
		}
		return nil
	}
	if len(field.Options) == 0 {
		return nil
	}
	for _, option := range field.Options {
		if option == value {
			return nil
		}
	}
	return inputErr(field.Name, value, ErrNotAllowed)
}

// expandPath substitutes {name} placeholders from parsed params and drops
// the consumed params.
func expandPath(template string, params []param) (string, []param, error) {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return template, params, nil
	}

	consumed := make(map[string]struct{}, len(matches))
	var expandErr error
	path := placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := strings.Trim(token, "{}")
		for _, p := range params {
			if p.field != name && p.name != name {
				continue
			}
			text, ok := scalarString(p.value)
			if !ok || text == "" {
				break
			}
			consumed[p.field] = struct{}{}
			return url.PathEscape(text)
		}
		if expandErr == nil {
			expandErr = inputErr(name, "", ErrRequired)
		}
		return token
	})
	if expandErr != nil {
		return "", nil, expandErr
	}

	remaining := params[:0:0]
	for _, p := range params {
		if _, ok := consumed[p.field]; ok {
			continue
		}
		remaining = append(remaining, p)
	}
	return path, remaining, nil
}

func scalarString(value any) (string, bool) {
	switch typed := value.(type) {
	case string:
		return typed, true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(typed), true
	default:
		return "", false
	}
}

func addValues(values url.Values, params []param) {
	for _, p := range params {
		switch typed := p.value.(type) {
		case []string:
			for _, item := range typed {
				values.Add(p.name, item)
			}
		default:
			if text, ok := scalarString(typed); ok && text != "" {
				values.Set(p.name, text)
			}
		}
	}
}

func addStatic(values url.Values, static map[string]any) {
	for _, key := range sortedKeys(static) {
		if text := fmt.Sprint(static[key]); text != "" {
			values.Set(key, text)
		}
	}
}

func encodeJSON(static map[string]any, params []param) ([]byte, error) {
	payload := make(map[string]any, len(static)+len(params))
	for key, value := range static {
		payload[key] = value
	}
	for _, p := range params {
		payload[p.name] = p.value
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("request: encode json body: %w", err)
	}
	return body, nil
}

func encodeMultipart(static map[string]any, params []param) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, key := range sortedKeys(static) {
		if err := writer.WriteField(key, fmt.Sprint(static[key])); err != nil {
			return nil, "", fmt.Errorf("request: write multipart field: %w", err)
		}
	}
	for _, p := range params {
		if p.file != nil {
			if err := writeFilePart(writer, p); err != nil {
				return nil, "", err
			}
			continue
		}
		switch typed := p.value.(type) {
		case []string:
			for _, item := range typed {
				if err := writer.WriteField(p.name, item); err != nil {
					return nil, "", fmt.Errorf("request: write multipart field: %w", err)
				}
			}
		default:
			text, _ := scalarString(typed)
			if err := writer.WriteField(p.name, text); err != nil {
				return nil, "", fmt.Errorf("request: write multipart field: %w", err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("request: close multipart body: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

func writeFilePart(writer *multipart.Writer, p param) error {
	contentType := p.file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(p.name), escapeQuotes(p.file.Name())))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("request: create multipart file part: %w", err)
	}
	if _, err := part.Write(p.data); err != nil {
		return fmt.Errorf("request: write multipart file part: %w", err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// IsInputError reports whether err carries an *InputError.
func IsInputError(err error) bool {
	var target *InputError
	return errors.As(err, &target)
}
