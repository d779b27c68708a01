package database

import (
	"reflect"
	"testing"
)

func TestSplitAliases(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"ge", []string{"ge"}},
		{"ge, general electric ,", []string{"ge", "general electric"}},
	}

	for _, tt := range tests {
		if got := splitAliases(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitAliases(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
