package decode_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/pdf-annotator/pkg/decode"
)

type origin struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type options struct {
	Text   string  `json:"text"`
	Width  float64 `json:"width"`
	Origin origin  `json:"origin"`
}

func TestFromMap(t *testing.T) {
	input := map[string]any{
		"text":   "hello",
		"width":  2.5,
		"origin": map[string]any{"x": 10.0, "y": 20.0},
	}

	got, err := decode.FromMap[options](input)
	if err != nil {
		t.Fatalf("FromMap() failed: %v", err)
	}

	want := options{Text: "hello", Width: 2.5, Origin: origin{X: 10, Y: 20}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromMap() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromMap_TypeMismatch(t *testing.T) {
	if _, err := decode.FromMap[options](map[string]any{"width": "wide"}); err == nil {
		t.Error("FromMap() with a string width succeeded")
	}
}

func TestFromValue(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  []string
	}{
		{"nil", nil, nil},
		{"list", []any{"a", "b"}, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decode.FromValue[[]string](tt.input)
			if err != nil {
				t.Fatalf("FromValue() failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FromValue() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
