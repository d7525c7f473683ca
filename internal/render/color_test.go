package render

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    color.RGBA
		wantErr bool
	}{
		{"named", "red", color.RGBA{R: 255, A: 255}, false},
		{"named uppercase", "  White ", color.RGBA{R: 255, G: 255, B: 255, A: 255}, false},
		{"short hex", "#0f8", color.RGBA{R: 0, G: 255, B: 136, A: 255}, false},
		{"hex", "#102030", color.RGBA{R: 16, G: 32, B: 48, A: 255}, false},
		{"hex without hash", "102030", color.RGBA{R: 16, G: 32, B: 48, A: 255}, false},
		{"hex with alpha", "#10203080", color.RGBA{R: 16, G: 32, B: 48, A: 128}, false},
		{"rgb function", "rgb(1, 2, 3)", color.RGBA{R: 1, G: 2, B: 3, A: 255}, false},
		{"empty", "", color.RGBA{}, true},
		{"bad hex", "#12345", color.RGBA{}, true},
		{"not hex", "#zzzzzz", color.RGBA{}, true},
		{"rgb out of range", "rgb(256, 0, 0)", color.RGBA{}, true},
		{"rgb missing value", "rgb(1, 2)", color.RGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBlend(t *testing.T) {
	black := color.RGBA{A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	if got := Blend(black, white, 0); got != black {
		t.Errorf("Blend(0) = %v", got)
	}
	if got := Blend(black, white, 1); got != white {
		t.Errorf("Blend(1) = %v", got)
	}
	if got := Blend(black, white, 0.5); got.R != 128 {
		t.Errorf("Blend(0.5).R = %d, want 128", got.R)
	}
	if got := Blend(black, white, 7); got != white {
		t.Errorf("Blend clamps ratio: got %v", got)
	}
}
