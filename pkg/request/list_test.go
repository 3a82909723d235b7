package request_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdispatch/pkg/request"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "a, b ,c", want: []string{"a", "b", "c"}},
		{in: "", want: []string{}},
		{in: "  ", want: []string{}},
		{in: "a,,b,", want: []string{"a", "b"}},
		{in: "single", want: []string{"single"}},
	}
	for _, tt := range tests {
		got := request.SplitList(tt.in)
		if got == nil {
			t.Fatalf("SplitList(%q) returned nil", tt.in)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("SplitList(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}
