package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name  string
		base  map[string]any
		patch map[string]any
		want  map[string]any
	}{
		{
			name:  "adds and overwrites top level",
			base:  map[string]any{"a": 1, "b": "x"},
			patch: map[string]any{"b": "y", "c": true},
			want:  map[string]any{"a": 1, "b": "y", "c": true},
		},
		{
			name: "merges nested objects",
			base: map[string]any{
				"student_address": map[string]any{"street": "1 Main", "city": "Austin", "state": "TX"},
			},
			patch: map[string]any{
				"student_address": map[string]any{"city": "Dallas"},
			},
			want: map[string]any{
				"student_address": map[string]any{"street": "1 Main", "city": "Dallas", "state": "TX"},
			},
		},
		{
			name:  "null replaces",
			base:  map[string]any{"a": map[string]any{"b": 1}},
			patch: map[string]any{"a": nil},
			want:  map[string]any{"a": nil},
		},
		{
			name:  "object replaces scalar",
			base:  map[string]any{"a": "x"},
			patch: map[string]any{"a": map[string]any{"b": 1}},
			want:  map[string]any{"a": map[string]any{"b": 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.base, tt.patch)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeDoesNotMutate(t *testing.T) {
	base := map[string]any{"addr": map[string]any{"city": "Austin"}}
	_ = Merge(base, map[string]any{"addr": map[string]any{"city": "Dallas"}})

	want := map[string]any{"addr": map[string]any{"city": "Austin"}}
	if diff := cmp.Diff(want, base); diff != "" {
		t.Errorf("base was modified (-want +got):\n%s", diff)
	}
}
