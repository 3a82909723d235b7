package binding_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdispatch/pkg/binding"
)

func TestNormalizeDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   binding.FormBinding
		want binding.FormBinding
	}{
		{
			name: "form suffix becomes result region",
			in: binding.FormBinding{
				ID:     " searchForm ",
				Method: "get",
				URL:    "/api/search",
				Fields: []binding.FieldSpec{{Name: "searchQuery"}},
			},
			want: binding.FormBinding{
				ID:           "searchForm",
				Trigger:      binding.TriggerSubmit,
				Method:       "GET",
				URL:          "/api/search",
				Encoding:     binding.EncodingQuery,
				ResultRegion: "searchResult",
				Fields:       []binding.FieldSpec{{Name: "searchQuery", Kind: binding.FieldText}},
				Response:     binding.ResponseJSON,
			},
		},
		{
			name: "button without fields is a click",
			in: binding.FormBinding{
				ID:  "identifyWasteButton",
				URL: "/api/waste/identify",
			},
			want: binding.FormBinding{
				ID:           "identifyWasteButton",
				Trigger:      binding.TriggerClick,
				Method:       "POST",
				URL:          "/api/waste/identify",
				Encoding:     binding.EncodingJSON,
				ResultRegion: "identifyWasteResult",
				Response:     binding.ResponseJSON,
			},
		},
		{
			name: "file field selects multipart",
			in: binding.FormBinding{
				ID:           "importItemsForm",
				URL:          "/api/import/items",
				ResultRegion: "itemsResult",
				Fields:       []binding.FieldSpec{{Name: "itemsFile", Kind: binding.FieldFile}},
			},
			want: binding.FormBinding{
				ID:           "importItemsForm",
				Trigger:      binding.TriggerSubmit,
				Method:       "POST",
				URL:          "/api/import/items",
				Encoding:     binding.EncodingMultipart,
				ResultRegion: "itemsResult",
				Fields:       []binding.FieldSpec{{Name: "itemsFile", Kind: binding.FieldFile}},
				Response:     binding.ResponseJSON,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
			}
			if err := got.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		in   binding.FormBinding
		want error
	}{
		{
			name: "missing id",
			in:   binding.FormBinding{URL: "/x"},
			want: binding.ErrMissingID,
		},
		{
			name: "missing url",
			in:   binding.FormBinding{ID: "a"},
			want: binding.ErrMissingURL,
		},
		{
			name: "file without multipart",
			in: binding.FormBinding{
				ID:       "a",
				URL:      "/x",
				Encoding: binding.EncodingJSON,
				Fields:   []binding.FieldSpec{{Name: "f", Kind: binding.FieldFile}},
			},
			want: binding.ErrFileNeedsMultipart,
		},
		{
			name: "unknown param source",
			in: binding.FormBinding{
				ID:     "a",
				URL:    "/x",
				Fields: []binding.FieldSpec{{Name: "q", ParamFrom: "kind"}},
			},
			want: binding.ErrUnknownParamSource,
		},
		{
			name: "duplicate field",
			in: binding.FormBinding{
				ID:     "a",
				URL:    "/x",
				Fields: []binding.FieldSpec{{Name: "q"}, {Name: "q"}},
			},
			want: binding.ErrDuplicateField,
		},
		{
			name: "unknown kind",
			in: binding.FormBinding{
				ID:     "a",
				URL:    "/x",
				Fields: []binding.FieldSpec{{Name: "q", Kind: "date"}},
			},
			want: binding.ErrUnknownFieldKind,
		},
		{
			name: "unknown response",
			in:   binding.FormBinding{ID: "a", URL: "/x", Response: "xml"},
			want: binding.ErrUnknownResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Normalize().Validate()
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestKeyFieldsAndLabels(t *testing.T) {
	b := binding.FormBinding{
		ID: "searchForm",
		Fields: []binding.FieldSpec{
			{Name: "searchType", Label: "Search by"},
			{Name: "searchQuery", ParamFrom: "searchType"},
		},
	}

	if diff := cmp.Diff(map[string]struct{}{"searchType": {}}, b.KeyFields()); diff != "" {
		t.Fatalf("KeyFields mismatch (-want +got):\n%s", diff)
	}
	field, ok := b.Field("searchQuery")
	if !ok || field.DisplayLabel() != "searchQuery" {
		t.Fatalf("unexpected field lookup: %+v %v", field, ok)
	}
	if got := b.DisplayTitle(); got != "searchForm" {
		t.Fatalf("expected id as title, got %q", got)
	}
	if got := (binding.FieldSpec{Name: "n", Param: "numOfDays"}).WireName(); got != "numOfDays" {
		t.Fatalf("expected param override, got %q", got)
	}
}
