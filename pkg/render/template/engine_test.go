package template_test

import (
	"io"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formdispatch/pkg/render/template"
	"github.com/goliatone/go-formdispatch/pkg/testsupport"
)

func newEngine(t *testing.T, options ...template.Option) *template.Engine {
	t.Helper()

	files := fstest.MapFS{
		"hello.tpl":      {Data: []byte("Hello {{ name }}!")},
		"use-global.tpl": {Data: []byte("env={{ env }}")},
		"use-trim.tpl":   {Data: []byte("[{{ value|trim }}]")},
	}
	engine, err := template.New(append([]template.Option{template.WithFS(files)}, options...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})

	want := "Hello Ada!"
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestEngine_GlobalData(t *testing.T) {
	engine := newEngine(t, template.WithGlobalData(map[string]any{"env": "staging"}))

	got, err := engine.RenderTemplate("use-global.tpl", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "env=staging" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_TrimFilter(t *testing.T) {
	engine := newEngine(t)

	got, err := engine.RenderTemplate("use-trim", map[string]any{"value": "  padded  "})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "[padded]" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_RenderStringUsesPayload(t *testing.T) {
	engine, err := template.New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	tpl := "Successfully imported {{ containersImported }} containers."
	for i := 0; i < 2; i++ {
		got, err := engine.RenderString(tpl, map[string]any{"containersImported": int64(3)})
		if err != nil {
			t.Fatalf("render string: %v", err)
		}
		if got != "Successfully imported 3 containers." {
			t.Fatalf("unexpected output %q", got)
		}
	}
}

func TestEngine_RenderStructUsesJSONNames(t *testing.T) {
	engine, err := template.New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	data := struct {
		NewDate string `json:"newDate"`
	}{NewDate: "2025-04-02"}

	got, err := engine.RenderString("day {{ newDate }}", data)
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "day 2025-04-02" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_ParseError(t *testing.T) {
	engine, err := template.New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := engine.RenderString("{% if %}", nil); err == nil {
		t.Fatalf("expected parse error")
	}
}
