package outcome

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind discriminates a rendered outcome.
type Kind string

const (
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
)

// Class groups failures by where they originated.
type Class string

const (
	// ClassNone is used by successful outcomes.
	ClassNone Class = ""
	// ClassNetwork covers transport-level failures (unreachable host, reset).
	ClassNetwork Class = "network"
	// ClassProtocol covers non-2xx statuses and bodies with success=false.
	ClassProtocol Class = "protocol"
	// ClassParse covers malformed response bodies.
	ClassParse Class = "parse"
	// ClassInput covers client-side field parsing problems.
	ClassInput Class = "input"
)

// Outcome is the result of one dispatch: Success carries the decoded payload,
// Failure carries the most specific message available.
type Outcome struct {
	Kind       Kind
	Payload    any
	Text       string
	Message    string
	StatusCode int
	Class      Class
}

// Success builds a successful outcome around a decoded JSON payload.
func Success(status int, payload any) Outcome {
	return Outcome{Kind: KindSuccess, StatusCode: status, Payload: payload}
}

// SuccessText builds a successful outcome for verbatim text bodies.
func SuccessText(status int, text string) Outcome {
	return Outcome{Kind: KindSuccess, StatusCode: status, Text: text}
}

// Failure builds a failed outcome.
func Failure(class Class, status int, message string) Outcome {
	return Outcome{Kind: KindFailure, Class: class, StatusCode: status, Message: message}
}

// FromInputError wraps a client-side field error.
func FromInputError(err error) Outcome {
	return Failure(ClassInput, 0, err.Error())
}

// FromTransportError wraps a network-level error.
func FromTransportError(err error) Outcome {
	return Failure(ClassNetwork, 0, err.Error())
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// Detail renders the persistent region content: pretty-printed JSON for
// payloads, verbatim text for text bodies, "Error: <message>" for failures.
func (o Outcome) Detail() string {
	if !o.OK() {
		return "Error: " + o.Message
	}
	if o.Payload == nil {
		return o.Text
	}
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(o.Payload); err != nil {
		return fmt.Sprint(o.Payload)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

// PayloadMap returns the payload as an object, or nil when it is not one.
func (o Outcome) PayloadMap() map[string]any {
	m, _ := o.Payload.(map[string]any)
	return m
}
