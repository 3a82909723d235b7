package request

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
)

// Envelope is a fully constructed request ready for dispatch. It is built
// fresh per submission and never persisted.
type Envelope struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// HTTPRequest converts the envelope into an *http.Request bound to ctx.
func (e Envelope) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body *bytes.Reader
	if len(e.Body) > 0 {
		body = bytes.NewReader(e.Body)
	}

	var (
		req *http.Request
		err error
	)
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, e.Method, e.URL, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, e.Method, e.URL, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("request: new http request: %w", err)
	}
	for name, values := range e.Header {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	return req, nil
}

// ContentType reports the Content-Type header, if any.
func (e Envelope) ContentType() string {
	if e.Header == nil {
		return ""
	}
	return e.Header.Get("Content-Type")
}
