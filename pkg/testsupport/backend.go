package testsupport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// CapturedRequest is a request observed by a Backend.
type CapturedRequest struct {
	Method      string
	Path        string
	RawQuery    string
	ContentType string
	Body        []byte
}

// Reply is a scripted backend response.
type Reply struct {
	Status      int
	ContentType string
	Body        string
}

// Backend is an httptest server answering each path with a scripted reply
// and recording what it received.
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	replies  map[string]Reply
	requests []CapturedRequest
	gate     map[string]chan struct{}
}

// NewBackend starts a backend closed when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{replies: make(map[string]Reply), gate: make(map[string]chan struct{})}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

// Reply scripts the response for path.
func (b *Backend) Reply(path string, reply Reply) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies[path] = reply
}

// Hold makes requests to path wait until the returned release func runs.
func (b *Backend) Hold(path string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.gate[path] = ch
	b.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Requests returns the captured requests.
func (b *Backend) Requests() []CapturedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]CapturedRequest(nil), b.requests...)
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.requests = append(b.requests, CapturedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		RawQuery:    r.URL.RawQuery,
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})
	reply, ok := b.replies[r.URL.Path]
	gate := b.gate[r.URL.Path]
	delete(b.gate, r.URL.Path)
	b.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if !ok {
		reply = Reply{Status: http.StatusNotFound, Body: `{"detail":"Not Found"}`}
	}
	contentType := reply.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(reply.Status)
	_, _ = io.WriteString(w, reply.Body)
}
