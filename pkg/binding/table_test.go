package binding_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdispatch/pkg/binding"
)

func TestNewTableRejectsDuplicateIDs(t *testing.T) {
	_, err := binding.NewTable(
		binding.FormBinding{ID: "a", URL: "/one"},
		binding.FormBinding{ID: "a", URL: "/two"},
	)
	if !errors.Is(err, binding.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestTableReturnsCopies(t *testing.T) {
	table := binding.MustNewTable(binding.FormBinding{
		ID:     "searchForm",
		Method: "GET",
		URL:    "/api/search",
		Fields: []binding.FieldSpec{{Name: "searchType", Options: []string{"itemId", "itemName"}}},
		Params: map[string]any{"limit": 10},
	})

	got, err := table.Get("searchForm")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got.Fields[0].Options[0] = "mutated"
	got.Params["limit"] = 99

	again, _ := table.Get("searchForm")
	if again.Fields[0].Options[0] != "itemId" || again.Params["limit"] != 10 {
		t.Fatalf("table binding was mutated through a copy: %+v", again)
	}

	if _, err := table.Get("missing"); !errors.Is(err, binding.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDefaultTable(t *testing.T) {
	table := binding.DefaultTable()

	wantIDs := []string{
		"importContainersForm",
		"importItemsForm",
		"triggerPlacementButton",
		"searchForm",
		"retrieveForm",
		"identifyWasteButton",
		"wasteReturnPlanForm",
		"completeUndockingForm",
		"simulateForm",
		"logsForm",
		"exportArrangementButton",
	}
	if diff := cmp.Diff(wantIDs, table.IDs()); diff != "" {
		t.Fatalf("IDs mismatch (-want +got):\n%s", diff)
	}
	if table.Len() != len(wantIDs) {
		t.Fatalf("expected %d bindings, got %d", len(wantIDs), table.Len())
	}

	for _, b := range table.All() {
		if b.Trigger == "" || b.Encoding == "" || b.ResultRegion == "" {
			t.Fatalf("binding %s was not normalised: %+v", b.ID, b)
		}
	}

	placement, _ := table.Get("triggerPlacementButton")
	if !placement.Toggle || placement.Trigger != binding.TriggerClick {
		t.Fatalf("placement should be a toggling click: %+v", placement)
	}
	export, _ := table.Get("exportArrangementButton")
	if export.Response != binding.ResponseText {
		t.Fatalf("export should read text, got %q", export.Response)
	}
}

func TestNilTable(t *testing.T) {
	var table *binding.Table
	if table.Has("x") || table.Len() != 0 || table.IDs() != nil || table.Regions() != nil {
		t.Fatalf("nil table should be empty")
	}
}
