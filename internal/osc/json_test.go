package osc

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestPayloadFromJSON(t *testing.T) {
	tests := []struct {
		name   string
		tags   string
		values []any
		want   []any
	}{
		{name: "float", tags: "f", values: []any{5.0}, want: []any{float32(5)}},
		{name: "int", tags: "i", values: []any{3.0}, want: []any{int32(3)}},
		{name: "json number", tags: "h", values: []any{json.Number("42")}, want: []any{int64(42)}},
		{name: "string", tags: "s", values: []any{"locked"}, want: []any{"locked"}},
		{name: "blob", tags: "b", values: []any{"AQID"}, want: []any{[]byte{1, 2, 3}}},
		{name: "boolean takes no value", tags: "T", values: nil, want: []any{}},
		{name: "mixed", tags: "sTf", values: []any{"a", 1.5}, want: []any{"a", float32(1.5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PayloadFromJSON(tt.tags, tt.values)
			if err != nil {
				t.Fatalf("PayloadFromJSON() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PayloadFromJSON() = %#v, want %#v", got, tt.want)
			}
			if _, err := NewMessage("/x", tt.tags, got...); err != nil {
				t.Errorf("NewMessage() rejected converted payload: %v", err)
			}
		})
	}
}

func TestPayloadFromJSONErrors(t *testing.T) {
	tests := []struct {
		name   string
		tags   string
		values []any
	}{
		{name: "fractional int", tags: "i", values: []any{1.5}},
		{name: "int overflow", tags: "i", values: []any{3e9}},
		{name: "string for float", tags: "f", values: []any{"1"}},
		{name: "too few", tags: "ff", values: []any{1.0}},
		{name: "too many", tags: "f", values: []any{1.0, 2.0}},
		{name: "bad base64", tags: "b", values: []any{"!!"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PayloadFromJSON(tt.tags, tt.values); !errors.Is(err, ErrArgMismatch) {
				t.Errorf("PayloadFromJSON() error = %v, want ErrArgMismatch", err)
			}
		})
	}
}
