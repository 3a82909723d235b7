package binding

import (
	"fmt"
	"net/http"
	"strings"
)

// Trigger identifies the native UI action a binding intercepts.
type Trigger string

const (
	// TriggerSubmit intercepts a form submission.
	TriggerSubmit Trigger = "submit"
	// TriggerClick intercepts a button click carrying only static parameters.
	TriggerClick Trigger = "click"
)

// Encoding selects how field values travel to the backend.
type Encoding string

const (
	// EncodingJSON sends a JSON object body.
	EncodingJSON Encoding = "json"
	// EncodingMultipart passes fields and files through as multipart/form-data.
	EncodingMultipart Encoding = "multipart"
	// EncodingURLEncoded sends an application/x-www-form-urlencoded body.
	EncodingURLEncoded Encoding = "urlencoded"
	// EncodingQuery appends the fields to the URL query string (GET).
	EncodingQuery Encoding = "query"
)

// ResponseMode controls how a response body is interpreted.
type ResponseMode string

const (
	// ResponseJSON expects a JSON object carrying a boolean success flag.
	ResponseJSON ResponseMode = "json"
	// ResponseText treats the body as opaque text (for example a CSV export).
	ResponseText ResponseMode = "text"
)

// FieldKind declares how a raw field value is parsed before encoding.
type FieldKind string

const (
	FieldText  FieldKind = "text"
	FieldList  FieldKind = "list"
	FieldInt   FieldKind = "int"
	FieldFloat FieldKind = "float"
	FieldFile  FieldKind = "file"
)

// FieldSpec describes one input of a binding.
type FieldSpec struct {
	Name string    `yaml:"name" json:"name"`
	Kind FieldKind `yaml:"kind,omitempty" json:"kind,omitempty"`
	// Param overrides the wire name. Defaults to Name.
	Param string `yaml:"param,omitempty" json:"param,omitempty"`
	// ParamFrom names another field whose value is used as this field's wire
	// name. The referenced field is consumed and never encoded itself.
	ParamFrom string   `yaml:"param_from,omitempty" json:"param_from,omitempty"`
	Options   []string `yaml:"options,omitempty" json:"options,omitempty"`
	Required  bool     `yaml:"required,omitempty" json:"required,omitempty"`
	Label     string   `yaml:"label,omitempty" json:"label,omitempty"`
	Help      string   `yaml:"help,omitempty" json:"help,omitempty"`
}

// WireName reports the static parameter name used on the wire.
func (f FieldSpec) WireName() string {
	if f.Param != "" {
		return f.Param
	}
	return f.Name
}

// DisplayLabel returns the label shown by hosts, falling back to the name.
func (f FieldSpec) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return f.Name
}

// FormBinding maps a UI trigger to an API action. Bindings are static
// configuration and must not be mutated once registered in a Table.
type FormBinding struct {
	ID           string            `yaml:"id" json:"id"`
	Trigger      Trigger           `yaml:"trigger,omitempty" json:"trigger,omitempty"`
	Method       string            `yaml:"method" json:"method"`
	URL          string            `yaml:"url" json:"url"`
	Encoding     Encoding          `yaml:"encoding,omitempty" json:"encoding,omitempty"`
	ResultRegion string            `yaml:"result_region" json:"result_region"`
	Fields       []FieldSpec       `yaml:"fields,omitempty" json:"fields,omitempty"`
	Params       map[string]any    `yaml:"params,omitempty" json:"params,omitempty"`
	Headers      map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Title        string            `yaml:"title,omitempty" json:"title,omitempty"`
	// LoadingMessage is shown in the result region while the call is in flight.
	LoadingMessage string `yaml:"loading_message,omitempty" json:"loading_message,omitempty"`
	// SuccessMessage is a template rendered against the response payload.
	SuccessMessage string       `yaml:"success_message,omitempty" json:"success_message,omitempty"`
	Response       ResponseMode `yaml:"response,omitempty" json:"response,omitempty"`
	// SuccessFlagOptional accepts 2xx JSON bodies that omit the success flag.
	SuccessFlagOptional bool `yaml:"success_flag_optional,omitempty" json:"success_flag_optional,omitempty"`
	// Toggle hides a visible terminal result instead of dispatching again.
	Toggle bool `yaml:"toggle,omitempty" json:"toggle,omitempty"`
}

// Normalize fills defaults derived from the method and fields.
func (b FormBinding) Normalize() FormBinding {
	b.ID = strings.TrimSpace(b.ID)
	b.Method = strings.ToUpper(strings.TrimSpace(b.Method))
	if b.Method == "" {
		b.Method = http.MethodPost
	}
	if b.Trigger == "" {
		if len(b.Fields) == 0 {
			b.Trigger = TriggerClick
		} else {
			b.Trigger = TriggerSubmit
		}
	}
	if b.Encoding == "" {
		b.Encoding = defaultEncoding(b)
	}
	if b.Response == "" {
		b.Response = ResponseJSON
	}
	if b.ResultRegion == "" && b.ID != "" {
		b.ResultRegion = strings.TrimSuffix(strings.TrimSuffix(b.ID, "Form"), "Button") + "Result"
	}
	for i := range b.Fields {
		if b.Fields[i].Kind == "" {
			b.Fields[i].Kind = FieldText
		}
	}
	return b
}

func defaultEncoding(b FormBinding) Encoding {
	switch b.Method {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return EncodingQuery
	}
	for _, field := range b.Fields {
		if field.Kind == FieldFile {
			return EncodingMultipart
		}
	}
	return EncodingJSON
}

// Validate checks a normalised binding for structural problems.
func (b FormBinding) Validate() error {
	if b.ID == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(b.URL) == "" {
		return fmt.Errorf("binding %q: %w", b.ID, ErrMissingURL)
	}
	if b.ResultRegion == "" {
		return fmt.Errorf("binding %q: %w", b.ID, ErrMissingRegion)
	}
	switch b.Encoding {
	case EncodingJSON, EncodingMultipart, EncodingURLEncoded, EncodingQuery:
	default:
		return fmt.Errorf("binding %q: %w %q", b.ID, ErrUnknownEncoding, b.Encoding)
	}
	switch b.Trigger {
	case TriggerSubmit, TriggerClick:
	default:
		return fmt.Errorf("binding %q: %w %q", b.ID, ErrUnknownTrigger, b.Trigger)
	}
	switch b.Response {
	case ResponseJSON, ResponseText:
	default:
		return fmt.Errorf("binding %q: %w %q", b.ID, ErrUnknownResponse, b.Response)
	}

	names := make(map[string]FieldSpec, len(b.Fields))
	for _, field := range b.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return fmt.Errorf("binding %q: %w", b.ID, ErrMissingFieldName)
		}
		if _, exists := names[name]; exists {
			return fmt.Errorf("binding %q: field %q: %w", b.ID, name, ErrDuplicateField)
		}
		switch field.Kind {
		case FieldText, FieldList, FieldInt, FieldFloat:
		case FieldFile:
			if b.Encoding != EncodingMultipart {
				return fmt.Errorf("binding %q: field %q: %w", b.ID, name, ErrFileNeedsMultipart)
			}
		default:
			return fmt.Errorf("binding %q: field %q: %w %q", b.ID, name, ErrUnknownFieldKind, field.Kind)
		}
		names[name] = field
	}
	for _, field := range b.Fields {
		if field.ParamFrom == "" {
			continue
		}
		if _, ok := names[field.ParamFrom]; !ok {
			return fmt.Errorf("binding %q: field %q: %w %q", b.ID, field.Name, ErrUnknownParamSource, field.ParamFrom)
		}
	}
	return nil
}

// Field returns the spec for the named field.
func (b FormBinding) Field(name string) (FieldSpec, bool) {
	for _, field := range b.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldSpec{}, false
}

// KeyFields returns the names of fields consumed as wire names by ParamFrom.
func (b FormBinding) KeyFields() map[string]struct{} {
	out := make(map[string]struct{})
	for _, field := range b.Fields {
		if field.ParamFrom != "" {
			out[field.ParamFrom] = struct{}{}
		}
	}
	return out
}

// DisplayTitle returns the title shown by hosts.
func (b FormBinding) DisplayTitle() string {
	if title := strings.TrimSpace(b.Title); title != "" {
		return title
	}
	return b.ID
}
