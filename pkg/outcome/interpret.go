package outcome

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxBodyBytes caps how much of a response body is read.
const MaxBodyBytes = 32 << 20

// messageFields lists domain message keys from most to least specific.
var messageFields = []string{"message", "description", "detail"}

// Options tune interpretation per binding.
type Options struct {
	// Text treats the body as verbatim text; success follows the status only.
	Text bool
	// SuccessFlagOptional accepts 2xx JSON bodies that omit "success".
	SuccessFlagOptional bool
}

// FromResponse derives an outcome from an HTTP response. The body is read
// and closed. Success requires a 2xx status AND success=true in the body.
func FromResponse(resp *http.Response, opts Options) Outcome {
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return Failure(ClassNetwork, resp.StatusCode, fmt.Sprintf("read response: %v", err))
	}
	return Interpret(resp.StatusCode, body, opts)
}

// Interpret classifies a status code and raw body.
func Interpret(status int, body []byte, opts Options) Outcome {
	okStatus := status >= 200 && status < 300

	if opts.Text {
		if okStatus {
			return SuccessText(status, string(body))
		}
		if msg := domainMessageFromBytes(body); msg != "" {
			return Failure(ClassProtocol, status, msg)
		}
		return Failure(ClassProtocol, status, statusMessage(status))
	}

	var payload any
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return Failure(ClassParse, status, GenericHTTPMessage(status))
	}

	object, _ := payload.(map[string]any)
	flag, hasFlag := object["success"].(bool)
	flagOK := flag || (!hasFlag && opts.SuccessFlagOptional)

	if okStatus && flagOK {
		return Success(status, normalizeNumbers(payload))
	}

	if msg := domainMessage(object); msg != "" {
		return Failure(ClassProtocol, status, msg)
	}
	if !okStatus {
		return Failure(ClassProtocol, status, statusMessage(status))
	}
	return Failure(ClassProtocol, status, GenericHTTPMessage(status))
}

// GenericHTTPMessage is the least specific failure text.
func GenericHTTPMessage(status int) string {
	return fmt.Sprintf("HTTP error! status: %d", status)
}

func statusMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return GenericHTTPMessage(status)
}

func domainMessage(object map[string]any) string {
	if object == nil {
		return ""
	}
	for _, key := range messageFields {
		if value, ok := object[key].(string); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func domainMessageFromBytes(body []byte) string {
	var object map[string]any
	if err := json.Unmarshal(body, &object); err != nil {
		return ""
	}
	return domainMessage(object)
}

// normalizeNumbers turns json.Number values into int64 when integral and
// float64 otherwise so pretty-printing keeps integers intact.
func normalizeNumbers(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for key, v := range typed {
			typed[key] = normalizeNumbers(v)
		}
		return typed
	case []any:
		for i, v := range typed {
			typed[i] = normalizeNumbers(v)
		}
		return typed
	case json.Number:
		if n, err := typed.Int64(); err == nil {
			return n
		}
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return typed.String()
	default:
		return typed
	}
}
