// Package web hosts the dispatch adapter as a single server-rendered page.
// Each binding is a form; surface changes are pushed to the page over a
// websocket.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdispatch/pkg/binder"
	"github.com/goliatone/go-formdispatch/pkg/binding"
	"github.com/goliatone/go-formdispatch/pkg/render"
	"github.com/goliatone/go-formdispatch/pkg/render/template"
	"github.com/goliatone/go-formdispatch/pkg/request"
)

//go:embed templates/*.tpl
var templateFS embed.FS

const (
	defaultAddr      = "127.0.0.1:8080"
	defaultMaxUpload = 32 << 20
	defaultShutdown  = 5 * time.Second
	wsPath           = "/ws"
	pageTemplateName = "page"
)

// ErrUnknownForm is returned for submissions naming an unbound element.
var ErrUnknownForm = errors.New("web: unknown form")

// Host serves the page, accepts form posts and streams surface events.
type Host struct {
	addr            string
	title           string
	theme           *theme.RendererConfig
	templates       template.Renderer
	maxUpload       int64
	shutdownTimeout time.Duration
	logger          *zap.Logger

	surface *Surface
	hub     *Hub
	router  *mux.Router

	mu          sync.RWMutex
	order       []string
	elements    map[string]*element
	dispatchCtx context.Context
}

var _ binder.RunnableHost = (*Host)(nil)

type element struct {
	host    *Host
	binding binding.FormBinding
	handler binder.Handler
}

// OnTrigger attaches handler to the form. Submit and click triggers both
// arrive as a POST of the element's form.
func (e *element) OnTrigger(_ binding.Trigger, handler binder.Handler) {
	e.host.mu.Lock()
	defer e.host.mu.Unlock()
	e.handler = handler
}

// New builds a web host exposing every binding of table.
func New(table *binding.Table, options ...Option) (*Host, error) {
	h := &Host{
		addr:            defaultAddr,
		title:           "Stowage console",
		maxUpload:       defaultMaxUpload,
		shutdownTimeout: defaultShutdown,
		logger:          zap.NewNop(),
		elements:        make(map[string]*element),
		dispatchCtx:     context.Background(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	if h.theme == nil {
		h.theme = ResolveTheme(DefaultManifest(), "")
	}
	if h.templates == nil {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("web: templates: %w", err)
		}
		engine, err := template.New(template.WithFS(sub))
		if err != nil {
			return nil, fmt.Errorf("web: template engine: %w", err)
		}
		h.templates = engine
	}

	h.surface = NewSurface(nil)
	h.hub = NewHub(h.logger, h.surface.Snapshot)
	h.surface.SetPublisher(h.hub)

	if table != nil {
		for _, fb := range table.All() {
			h.order = append(h.order, fb.ID)
			h.elements[fb.ID] = &element{host: h, binding: fb}
		}
	}
	h.router = h.routes()
	return h, nil
}

// Name reports the host identifier.
func (h *Host) Name() string {
	return "web"
}

// Surface returns the page surface.
func (h *Host) Surface() render.Surface {
	return h.surface
}

// Element returns the form for id.
func (h *Host) Element(id string) (binder.Element, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	el, ok := h.elements[id]
	if !ok {
		return nil, false
	}
	return el, true
}

// Handler exposes the router, mainly for tests.
func (h *Host) Handler() http.Handler {
	return h.router
}

// Run serves until ctx is done, then shuts down gracefully. Dispatches
// started by form posts live as long as ctx.
func (h *Host) Run(ctx context.Context) error {
	h.mu.Lock()
	h.dispatchCtx = ctx
	h.mu.Unlock()

	srv := &http.Server{
		Addr:              h.addr,
		Handler:           h.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("web host listening", zap.String("addr", h.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web: serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("web: shutdown: %w", err)
		}
		return nil
	}
}

func (h *Host) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", h.handlePage).Methods(http.MethodGet)
	r.HandleFunc("/forms/{id}", h.handleSubmit).Methods(http.MethodPost)
	r.Handle(wsPath, h.hub).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	return r
}

func (h *Host) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": h.hub.Clients(),
	})
}

func (h *Host) handlePage(w http.ResponseWriter, _ *http.Request) {
	page, err := h.templates.RenderTemplate(pageTemplateName, h.pageData())
	if err != nil {
		h.logger.Error("render page", zap.Error(err))
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, page)
}

func (h *Host) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	h.mu.RLock()
	el, ok := h.elements[id]
	var handler binder.Handler
	var fb binding.FormBinding
	if ok {
		handler = el.handler
		fb = el.binding
	}
	ctx := h.dispatchCtx
	h.mu.RUnlock()

	if !ok || handler == nil {
		h.logger.Debug("post to unbound form", zap.String("binding", id))
		http.Error(w, fmt.Sprintf("%v: %s", ErrUnknownForm, id), http.StatusNotFound)
		return
	}

	sub, err := h.submission(r, fb)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The result arrives through the surface; the channel is buffered.
	_ = handler(ctx, sub)

	if wantsJSON(r) {
		writeJSON(w, http.StatusAccepted, map[string]any{
			"status":  "accepted",
			"binding": fb.ID,
			"region":  fb.ResultRegion,
		})
		return
	}
	http.Redirect(w, r, "/#"+fb.ResultRegion, http.StatusSeeOther)
}

// submission captures the posted fields of fb. Only declared fields are
// kept; parsing happens when the request is built.
func (h *Host) submission(r *http.Request, fb binding.FormBinding) (request.Submission, error) {
	sub := request.NewSubmission(nil)
	if len(fb.Fields) == 0 {
		return sub, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxUpload); err != nil {
			return sub, fmt.Errorf("web: parse multipart form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return sub, fmt.Errorf("web: parse form: %w", err)
	}

	for _, field := range fb.Fields {
		if field.Kind != binding.FieldFile {
			sub = sub.With(field.Name, r.FormValue(field.Name))
			continue
		}
		if r.MultipartForm == nil {
			continue
		}
		headers := r.MultipartForm.File[field.Name]
		if len(headers) == 0 || headers[0].Filename == "" {
			continue
		}
		file, err := headers[0].Open()
		if err != nil {
			return sub, fmt.Errorf("web: open upload %q: %w", field.Name, err)
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return sub, fmt.Errorf("web: read upload %q: %w", field.Name, err)
		}
		sub = sub.WithFile(field.Name, request.File{
			Filename:    headers[0].Filename,
			ContentType: headers[0].Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return sub, nil
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
