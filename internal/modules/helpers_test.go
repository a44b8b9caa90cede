package modules

import (
	"reflect"
	"testing"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "whitespace only", input: "   ", want: nil},
		{name: "single", input: "bug", want: []string{"bug"}},
		{name: "multiple", input: "bug,enhancement,help wanted", want: []string{"bug", "enhancement", "help wanted"}},
		{name: "spaces around commas", input: " bug , enhancement ", want: []string{"bug", "enhancement"}},
		{name: "trailing comma", input: "bug,", want: []string{"bug"}},
		{name: "consecutive commas", input: "bug,,enhancement", want: []string{"bug", "enhancement"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitList(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitList(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestToStringSlice(t *testing.T) {
	got := ToStringSlice([]interface{}{"a", 1, "b", nil, "c"})
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToStringSlice = %v, want %v", got, want)
	}
}

func TestToJSON(t *testing.T) {
	out, err := ToJSON(map[string]string{"key": "value"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"key":"value"}` {
		t.Errorf("ToJSON = %s", out)
	}
}
