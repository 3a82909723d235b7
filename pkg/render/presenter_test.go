package render_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdispatch/pkg/outcome"
	"github.com/goliatone/go-formdispatch/pkg/render"
	"github.com/goliatone/go-formdispatch/pkg/testsupport"
)

func newPresenter(t *testing.T) (*render.Presenter, *testsupport.RecordingSurface, *testsupport.ManualClock) {
	t.Helper()
	surface := testsupport.NewRecordingSurface()
	clock := &testsupport.ManualClock{}
	presenter := render.NewPresenter(surface, render.WithAfterFunc(clock.AfterFunc))
	return presenter, surface, clock
}

func TestPresenterSuccessCycle(t *testing.T) {
	presenter, surface, clock := newPresenter(t)

	ticket := presenter.Begin("placementResult", "Processing... Please wait.")
	if presenter.State("placementResult") != render.RegionLoading {
		t.Fatalf("expected loading state")
	}

	out := outcome.Success(200, map[string]any{"success": true})
	if !presenter.Complete(ticket, out, "Placement successful!") {
		t.Fatalf("expected current ticket to render")
	}

	want := []string{
		"clear placementResult",
		"show placementResult loading Processing... Please wait.",
		"clear placementResult",
		"show placementResult success {\n  \"success\": true\n}",
		"banner success Placement successful!",
	}
	if diff := cmp.Diff(want, surface.Calls()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if presenter.State("placementResult") != render.RegionSuccess {
		t.Fatalf("expected success state")
	}

	clock.Advance(render.DefaultBannerTTL - time.Millisecond)
	if _, ok := surface.Banner(); !ok {
		t.Fatalf("banner hidden too early")
	}
	clock.Advance(time.Millisecond)
	if _, ok := surface.Banner(); ok {
		t.Fatalf("banner should be hidden after the ttl")
	}
	if _, ok := presenter.CurrentBanner(); ok {
		t.Fatalf("presenter still reports a banner")
	}
	if result, ok := surface.Region("placementResult"); !ok || result.Kind != render.ResultSuccess {
		t.Fatalf("region content should persist after the banner hides: %+v", result)
	}
}

func TestPresenterFailureReplacesPreviousContent(t *testing.T) {
	presenter, surface, _ := newPresenter(t)

	first := presenter.Begin("retrieveResult", "")
	presenter.Complete(first, outcome.Failure(outcome.ClassProtocol, 404, "Item not found"), "Error: Item not found")

	surface.Reset()
	second := presenter.Begin("retrieveResult", "")
	presenter.Complete(second, outcome.Success(200, map[string]any{"success": true}), "Retrieve item successful!")

	want := []string{
		"clear retrieveResult",
		"clear retrieveResult",
		"show retrieveResult success {\n  \"success\": true\n}",
		"banner success Retrieve item successful!",
	}
	if diff := cmp.Diff(want, surface.Calls()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	result, _ := surface.Region("retrieveResult")
	if result.Kind != render.ResultSuccess {
		t.Fatalf("error styling leaked into the new result: %+v", result)
	}
}

func TestPresenterDropsSupersededOutcome(t *testing.T) {
	presenter, surface, _ := newPresenter(t)

	older := presenter.Begin("searchResult", "")
	newer := presenter.Begin("searchResult", "")

	if !presenter.Complete(newer, outcome.Success(200, map[string]any{"success": true, "found": true}), "Search item successful!") {
		t.Fatalf("newest ticket must render")
	}
	if presenter.Complete(older, outcome.Failure(outcome.ClassNetwork, 0, "timeout"), "Error: timeout") {
		t.Fatalf("older ticket must be dropped")
	}

	result, _ := surface.Region("searchResult")
	if result.Kind != render.ResultSuccess {
		t.Fatalf("stale outcome overwrote the region: %+v", result)
	}
	banner, _ := surface.Banner()
	if banner.Text != "Search item successful!" {
		t.Fatalf("stale outcome replaced the banner: %+v", banner)
	}
}

func TestPresenterToggle(t *testing.T) {
	presenter, surface, _ := newPresenter(t)

	if presenter.Toggle("placementResult") {
		t.Fatalf("empty region must not toggle")
	}

	ticket := presenter.Begin("placementResult", "")
	if presenter.Toggle("placementResult") {
		t.Fatalf("loading region without text must not toggle")
	}
	presenter.Complete(ticket, outcome.Success(200, map[string]any{"success": true}), "ok")

	if !presenter.Toggle("placementResult") {
		t.Fatalf("terminal region should toggle")
	}
	if _, ok := surface.Region("placementResult"); ok {
		t.Fatalf("toggle should clear the region")
	}
	if presenter.State("placementResult") != render.RegionEmpty {
		t.Fatalf("expected empty state after toggle")
	}
	if presenter.Complete(ticket, outcome.Success(200, nil), "late") {
		t.Fatalf("ticket from before the toggle must be dropped")
	}
}

func TestPresenterToggleHidesLoadingText(t *testing.T) {
	presenter, surface, _ := newPresenter(t)

	ticket := presenter.Begin("placementResult", "Processing... Please wait.")
	if !presenter.Toggle("placementResult") {
		t.Fatalf("visible loading text should toggle")
	}
	if _, ok := surface.Region("placementResult"); ok {
		t.Fatalf("toggle should clear the loading text")
	}
	if got := presenter.State("placementResult"); got != render.RegionEmpty {
		t.Fatalf("expected empty state after toggle, got %q", got)
	}
	if presenter.Complete(ticket, outcome.Success(200, map[string]any{"success": true}), "late") {
		t.Fatalf("outcome of the abandoned submission must be dropped")
	}
	if _, ok := surface.Region("placementResult"); ok {
		t.Fatalf("dropped outcome must not reopen the region")
	}
}

func TestPresenterBannerReplacement(t *testing.T) {
	presenter, surface, clock := newPresenter(t)

	presenter.Notify(render.BannerInfo, "first")
	clock.Advance(3 * time.Second)
	presenter.Notify(render.BannerError, "second")

	clock.Advance(3 * time.Second)
	banner, ok := surface.Banner()
	if !ok || banner.Text != "second" {
		t.Fatalf("replacement banner hidden by the old timer: %+v %v", banner, ok)
	}
	if clock.Pending() != 1 {
		t.Fatalf("expected one pending timer, got %d", clock.Pending())
	}

	clock.Advance(2 * time.Second)
	if _, ok := surface.Banner(); ok {
		t.Fatalf("banner should hide after its own ttl")
	}
}

func TestPresenterBannerTTLOption(t *testing.T) {
	surface := testsupport.NewRecordingSurface()
	clock := &testsupport.ManualClock{}
	presenter := render.NewPresenter(surface,
		render.WithAfterFunc(clock.AfterFunc),
		render.WithBannerTTL(time.Second),
	)

	presenter.Notify(render.BannerSuccess, "saved")
	clock.Advance(time.Second)
	if _, ok := surface.Banner(); ok {
		t.Fatalf("custom ttl not honoured")
	}
}
