package request

import "strings"

// SplitList splits comma-separated text into trimmed items, preserving order.
// Blank input and blank items yield no entries; the result is never nil so
// JSON encoding produces [] rather than null.
func SplitList(raw string) []string {
	out := []string{}
	if strings.TrimSpace(raw) == "" {
		return out
	}
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
