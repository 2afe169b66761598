package scene

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"", color.NRGBA{}, false},
		{"transparent", color.NRGBA{}, false},
		{"white", color.NRGBA{R: 255, G: 255, B: 255, A: 255}, false},
		{"#0089e6", color.NRGBA{R: 0x00, G: 0x89, B: 0xe6, A: 255}, false},
		{"#E55E00", color.NRGBA{R: 0xe5, G: 0x5e, B: 0x00, A: 255}, false},
		{"#333", color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255}, false},
		{"rgba(0,0,0,0.5)", color.NRGBA{A: 128}, false},
		{"rgba(0, 137, 230, 0.2)", color.NRGBA{G: 137, B: 230, A: 51}, false},
		{"rgb(10,20,30)", color.NRGBA{R: 10, G: 20, B: 30, A: 255}, false},
		{"rgba(0,0,0)", color.NRGBA{}, true},
		{"hsl(0,0,0)", color.NRGBA{}, true},
		{"#zzzzzz", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlendEndpoints(t *testing.T) {
	from := MustColor("#0089e6")
	to := MustColor("#e55e00")
	if got := Blend(from, to, 0); got != from {
		t.Errorf("Blend(0) = %v, want %v", got, from)
	}
	if got := Blend(from, to, 1); got != to {
		t.Errorf("Blend(1) = %v, want %v", got, to)
	}
}
