package outcome_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-formdispatch/pkg/outcome"
)

func TestDetail(t *testing.T) {
	tests := []struct {
		name string
		in   outcome.Outcome
		want string
	}{
		{
			name: "pretty printed payload",
			in:   outcome.Success(200, map[string]any{"success": true, "items": []any{int64(1), int64(2)}}),
			want: "{\n  \"items\": [\n    1,\n    2\n  ],\n  \"success\": true\n}",
		},
		{
			name: "markup characters kept literal",
			in:   outcome.Interpret(200, []byte(`{"success":true,"items":[{"name":"Food & Water <kit>"}]}`), outcome.Options{}),
			want: "{\n  \"items\": [\n    {\n      \"name\": \"Food & Water <kit>\"\n    }\n  ],\n  \"success\": true\n}",
		},
		{
			name: "verbatim text",
			in:   outcome.SuccessText(200, "a,b\n"),
			want: "a,b\n",
		},
		{
			name: "failure prefix",
			in:   outcome.Failure(outcome.ClassProtocol, 400, "Invalid item"),
			want: "Error: Invalid item",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Detail(); got != tt.want {
				t.Fatalf("Detail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorConstructors(t *testing.T) {
	input := outcome.FromInputError(errors.New("field itemId must be an integer"))
	if input.OK() || input.Class != outcome.ClassInput || input.StatusCode != 0 {
		t.Fatalf("unexpected input outcome %+v", input)
	}

	network := outcome.FromTransportError(errors.New("connection refused"))
	if network.Class != outcome.ClassNetwork || network.Detail() != "Error: connection refused" {
		t.Fatalf("unexpected network outcome %+v", network)
	}

	if outcome.SuccessText(200, "x").PayloadMap() != nil {
		t.Fatalf("text outcome should not expose a payload map")
	}
}
