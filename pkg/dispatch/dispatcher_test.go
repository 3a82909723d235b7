package dispatch_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-formdispatch/pkg/binding"
	"github.com/goliatone/go-formdispatch/pkg/dispatch"
	"github.com/goliatone/go-formdispatch/pkg/outcome"
	"github.com/goliatone/go-formdispatch/pkg/render"
	"github.com/goliatone/go-formdispatch/pkg/render/template"
	"github.com/goliatone/go-formdispatch/pkg/request"
	"github.com/goliatone/go-formdispatch/pkg/testsupport"
)

type fixture struct {
	backend    *testsupport.Backend
	surface    *testsupport.RecordingSurface
	presenter  *render.Presenter
	dispatcher *dispatch.Dispatcher
	table      *binding.Table
}

func newFixture(t *testing.T, options ...dispatch.Option) *fixture {
	t.Helper()

	backend := testsupport.NewBackend(t)
	builder, err := request.NewBuilder(backend.URL)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	engine, err := template.New()
	if err != nil {
		t.Fatalf("template.New: %v", err)
	}
	surface := testsupport.NewRecordingSurface()
	clock := &testsupport.ManualClock{}
	presenter := render.NewPresenter(surface, render.WithAfterFunc(clock.AfterFunc))

	opts := append([]dispatch.Option{dispatch.WithMessages(render.NewMessages(engine))}, options...)
	dispatcher, err := dispatch.New(builder, presenter, opts...)
	if err != nil {
		t.Fatalf("dispatch.New: %v", err)
	}
	return &fixture{
		backend:    backend,
		surface:    surface,
		presenter:  presenter,
		dispatcher: dispatcher,
		table:      binding.DefaultTable(),
	}
}

func (f *fixture) binding(t *testing.T, id string) binding.FormBinding {
	t.Helper()
	b, err := f.table.Get(id)
	if err != nil {
		t.Fatalf("Get %s: %v", id, err)
	}
	return b
}

func TestDispatchSuccess(t *testing.T) {
	f := newFixture(t, dispatch.WithIDGenerator(func() string { return "sub-1" }))
	f.backend.Reply("/api/retrieve", testsupport.Reply{Status: 200, Body: `{"success":true}`})

	res := f.dispatcher.Dispatch(context.Background(), f.binding(t, "retrieveForm"),
		request.NewSubmission(map[string]string{"itemId": "42"}))

	if res.SubmissionID != "sub-1" || res.BindingID != "retrieveForm" {
		t.Fatalf("unexpected identifiers: %+v", res)
	}
	if !res.Outcome.OK() || !res.Rendered || res.Toggled {
		t.Fatalf("unexpected result: %+v", res)
	}

	requests := f.backend.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected one request, got %d", len(requests))
	}
	want := testsupport.CapturedRequest{
		Method:      http.MethodPost,
		Path:        "/api/retrieve",
		ContentType: "application/json",
		Body:        []byte(`{"itemId":42}`),
	}
	if diff := cmp.Diff(want, requests[0]); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}

	banner, _ := f.surface.Banner()
	if diff := cmp.Diff(render.Banner{Kind: render.BannerSuccess, Text: "Retrieve item successful!"}, banner); diff != "" {
		t.Fatalf("banner mismatch (-want +got):\n%s", diff)
	}
	region, _ := f.surface.Region("retrieveResult")
	if region.Kind != render.ResultSuccess || region.Text != "{\n  \"success\": true\n}" {
		t.Fatalf("unexpected region content: %+v", region)
	}
}

func TestDispatchInputErrorSkipsBackend(t *testing.T) {
	f := newFixture(t)

	res := f.dispatcher.Dispatch(context.Background(), f.binding(t, "retrieveForm"),
		request.NewSubmission(map[string]string{"itemId": "abc"}))

	if res.Outcome.Class != outcome.ClassInput {
		t.Fatalf("expected input failure, got %+v", res.Outcome)
	}
	if n := len(f.backend.Requests()); n != 0 {
		t.Fatalf("no request should be sent, got %d", n)
	}
	region, _ := f.surface.Region("retrieveResult")
	if region.Kind != render.ResultError || !strings.HasPrefix(region.Text, "Error: field itemId") {
		t.Fatalf("unexpected region content: %+v", region)
	}
}

func TestDispatchProtocolFailures(t *testing.T) {
	tests := []struct {
		name       string
		reply      *testsupport.Reply
		wantBanner string
	}{
		{
			name:       "unscripted route returns framework detail",
			wantBanner: "Error: Not Found",
		},
		{
			name:       "domain failure on 200",
			reply:      &testsupport.Reply{Status: 200, Body: `{"success":false,"message":"No space available"}`},
			wantBanner: "Error: No space available",
		},
		{
			name:       "html error page",
			reply:      &testsupport.Reply{Status: 502, ContentType: "text/html", Body: "<h1>Bad gateway</h1>"},
			wantBanner: "Error: HTTP error! status: 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.reply != nil {
				f.backend.Reply("/api/placement", *tt.reply)
			}

			res := f.dispatcher.Dispatch(context.Background(), f.binding(t, "triggerPlacementButton"), request.Submission{})
			if res.Outcome.OK() {
				t.Fatalf("expected failure, got %+v", res.Outcome)
			}
			banner, _ := f.surface.Banner()
			if banner.Kind != render.BannerError || banner.Text != tt.wantBanner {
				t.Fatalf("unexpected banner: %+v", banner)
			}
			if f.presenter.State("placementResult") != render.RegionError {
				t.Fatalf("expected error state")
			}
		})
	}
}

type failingDoer struct{}

func (failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestDispatchTransportFailure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	f := newFixture(t, dispatch.WithClient(failingDoer{}), dispatch.WithLogger(zap.New(core)))

	res := f.dispatcher.Dispatch(context.Background(), f.binding(t, "identifyWasteButton"), request.Submission{})
	if res.Outcome.Class != outcome.ClassNetwork {
		t.Fatalf("expected network failure, got %+v", res.Outcome)
	}
	banner, _ := f.surface.Banner()
	if banner.Text != "Error: dial tcp: connection refused" {
		t.Fatalf("unexpected banner: %+v", banner)
	}

	failed := logs.FilterMessage("dispatch failed").All()
	if len(failed) != 1 {
		t.Fatalf("expected one failure log, got %d", len(failed))
	}
	if got := failed[0].ContextMap()["class"]; got != "network" {
		t.Fatalf("expected class field, got %v", got)
	}
}

func TestDispatchToggle(t *testing.T) {
	f := newFixture(t)
	f.backend.Reply("/api/placement", testsupport.Reply{Status: 200, Body: `{"success":true,"placements":[]}`})
	placement := f.binding(t, "triggerPlacementButton")

	first := f.dispatcher.Dispatch(context.Background(), placement, request.Submission{})
	if !first.Rendered {
		t.Fatalf("first click should render: %+v", first)
	}
	second := f.dispatcher.Dispatch(context.Background(), placement, request.Submission{})
	if !second.Toggled {
		t.Fatalf("second click should hide the result: %+v", second)
	}
	if _, ok := f.surface.Region("placementResult"); ok {
		t.Fatalf("region should be hidden")
	}
	third := f.dispatcher.Dispatch(context.Background(), placement, request.Submission{})
	if third.Toggled || !third.Rendered {
		t.Fatalf("third click should dispatch again: %+v", third)
	}
	if n := len(f.backend.Requests()); n != 2 {
		t.Fatalf("expected two backend calls, got %d", n)
	}
}

func TestDispatchToggleWhileLoading(t *testing.T) {
	f := newFixture(t)
	f.backend.Reply("/api/placement", testsupport.Reply{Status: 200, Body: `{"success":true,"placements":[]}`})
	release := f.backend.Hold("/api/placement")
	t.Cleanup(release)
	placement := f.binding(t, "triggerPlacementButton")

	pending := f.dispatcher.Submit(context.Background(), placement, request.Submission{})
	waitForRequests(t, f.backend, 1)

	second := <-f.dispatcher.Submit(context.Background(), placement, request.Submission{})
	if !second.Toggled {
		t.Fatalf("click while loading should hide the region: %+v", second)
	}
	if _, ok := f.surface.Region("placementResult"); ok {
		t.Fatalf("loading text should be hidden")
	}

	release()
	first := <-pending
	if first.Rendered {
		t.Fatalf("abandoned submission must not render: %+v", first)
	}
	if n := len(f.backend.Requests()); n != 1 {
		t.Fatalf("expected one backend call, got %d", n)
	}
}

func TestSubmitMostRecentWins(t *testing.T) {
	f := newFixture(t)
	f.backend.Reply("/api/search", testsupport.Reply{Status: 200, Body: `{"success":true,"found":true}`})
	release := f.backend.Hold("/api/search")
	t.Cleanup(release)
	search := f.binding(t, "searchForm")

	older := f.dispatcher.Submit(context.Background(), search,
		request.NewSubmission(map[string]string{"searchType": "itemId", "searchQuery": "001"}))
	if f.presenter.State("searchResult") != render.RegionLoading {
		t.Fatalf("region should be loading once Submit returns")
	}
	waitForRequests(t, f.backend, 1)

	newer := <-f.dispatcher.Submit(context.Background(), search,
		request.NewSubmission(map[string]string{"searchType": "itemId", "searchQuery": "002"}))
	if !newer.Rendered {
		t.Fatalf("newest submission should render: %+v", newer)
	}

	release()
	stale := <-older
	if stale.Rendered {
		t.Fatalf("superseded submission must not render: %+v", stale)
	}

	requests := f.backend.Requests()
	if requests[0].RawQuery != "itemId=001" || requests[1].RawQuery != "itemId=002" {
		t.Fatalf("unexpected queries: %q %q", requests[0].RawQuery, requests[1].RawQuery)
	}
}

func TestDispatchTimeout(t *testing.T) {
	f := newFixture(t, dispatch.WithTimeout(50*time.Millisecond))
	release := f.backend.Hold("/api/waste/identify")
	t.Cleanup(release)

	res := f.dispatcher.Dispatch(context.Background(), f.binding(t, "identifyWasteButton"), request.Submission{})
	if res.Outcome.Class != outcome.ClassNetwork {
		t.Fatalf("expected timeout to surface as network failure, got %+v", res.Outcome)
	}
}

func TestDispatchTextAndOptionalFlag(t *testing.T) {
	f := newFixture(t)
	f.backend.Reply("/api/export/arrangement", testsupport.Reply{Status: 200, ContentType: "text/csv", Body: "Item ID,Container ID\n001,contA\n"})
	f.backend.Reply("/api/logs", testsupport.Reply{Status: 200, Body: `{"logs":[]}`})

	export := f.dispatcher.Dispatch(context.Background(), f.binding(t, "exportArrangementButton"), request.Submission{})
	if !export.Outcome.OK() {
		t.Fatalf("export should succeed: %+v", export.Outcome)
	}
	region, _ := f.surface.Region("exportResult")
	if region.Text != "Item ID,Container ID\n001,contA\n" {
		t.Fatalf("unexpected export content %q", region.Text)
	}

	logs := f.dispatcher.Dispatch(context.Background(), f.binding(t, "logsForm"),
		request.NewSubmission(map[string]string{"itemId": "42"}))
	if !logs.Outcome.OK() {
		t.Fatalf("logs without a success flag should succeed: %+v", logs.Outcome)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := dispatch.New(nil, nil); !errors.Is(err, dispatch.ErrNilDependency) {
		t.Fatalf("expected ErrNilDependency, got %v", err)
	}
}

func waitForRequests(t *testing.T, backend *testsupport.Backend, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(backend.Requests()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("backend did not receive %d requests", n)
}
