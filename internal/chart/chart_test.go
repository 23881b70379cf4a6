package chart

import (
	"bytes"
	"context"
	"image/png"
	"testing"
)

func TestRenderPNGProducesDecodableImage(t *testing.T) {
	r := NewSVGBarRenderer()
	bars := []Bar{
		{Label: "alice", Value: 12},
		{Label: "bob", Value: 7},
		{Label: "carol", Value: 0},
	}
	raw, err := r.RenderPNG(context.Background(), bars, RenderOptions{Title: "Wins"})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != defaultWidth {
		t.Fatalf("width = %d, want %d", bounds.Dx(), defaultWidth)
	}
	wantHeight := topMargin + 3*(barHeight+barGap) - barGap + bottomMargin
	if bounds.Dy() != wantHeight {
		t.Fatalf("height = %d, want %d", bounds.Dy(), wantHeight)
	}
}

func TestRenderPNGRejectsEmptyInput(t *testing.T) {
	r := NewSVGBarRenderer()
	if _, err := r.RenderPNG(context.Background(), nil, RenderOptions{}); err == nil {
		t.Fatalf("expected error for empty bar list")
	}
}

func TestRenderPNGHonorsCancelledContext(t *testing.T) {
	r := NewSVGBarRenderer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.RenderPNG(ctx, []Bar{{Label: "alice", Value: 1}}, RenderOptions{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestBarPixelWidth(t *testing.T) {
	cases := []struct {
		value, max float64
		track      int
		want       int
	}{
		{0, 10, 400, 0},
		{10, 10, 400, 400},
		{5, 10, 400, 200},
		{0.01, 10, 400, minBarWidth},
		{3, 0, 400, 0},
	}
	for _, tc := range cases {
		if got := barPixelWidth(tc.value, tc.max, tc.track); got != tc.want {
			t.Fatalf("barPixelWidth(%v, %v, %d) = %d, want %d", tc.value, tc.max, tc.track, got, tc.want)
		}
	}
}
