package chart

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Bar is one row of a horizontal bar chart.
type Bar struct {
	Label string
	Value float64
	// Annotation replaces the formatted value at the bar tip when set.
	Annotation string
}

type RenderOptions struct {
	Title string
	// Width of the rendered PNG in pixels. Height follows the bar count.
	Width int
	// ValueFormat renders the number at each bar tip. Defaults to "%.0f".
	ValueFormat func(float64) string
}

type BarRenderer interface {
	RenderPNG(ctx context.Context, bars []Bar, opts RenderOptions) ([]byte, error)
}

type svgBarRenderer struct {
}

func NewSVGBarRenderer() BarRenderer {
	return &svgBarRenderer{}
}

const (
	defaultWidth = 720
	minWidth     = 360
	sideMargin   = 24
	topMargin    = 56
	bottomMargin = 24
	barHeight    = 26
	barGap       = 14
	labelColumn  = 150
	valueColumn  = 70
	barRadius    = 6
	minBarWidth  = 3
)

const (
	backgroundFill = "#1c1f2e"
	trackFill      = "#272b40"
	barFill        = "#5b8def"
	leaderFill     = "#f2c14e"
)

var (
	titleTextColor = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	labelTextColor = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	valueTextColor = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
)

func (r *svgBarRenderer) RenderPNG(ctx context.Context, bars []Bar, opts RenderOptions) ([]byte, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars to draw")
	}

	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}
	if width < minWidth {
		width = minWidth
	}
	height := topMargin + len(bars)*(barHeight+barGap) - barGap + bottomMargin

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	maxValue := 0.0
	for _, bar := range bars {
		if bar.Value > maxValue {
			maxValue = bar.Value
		}
	}
	trackWidth := width - sideMargin*2 - labelColumn - valueColumn

	svg := buildBarSVG(bars, width, height, trackWidth, maxValue)
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("parse chart svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	raster := rasterx.NewDasher(width, height, scanner)
	icon.Draw(raster, 1.0)

	drawChartText(img, bars, opts, width, trackWidth)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return pngBuf.Bytes(), nil
}

// oksvg has no text support, so the SVG carries only the panel geometry.
// Labels and values are drawn onto the raster afterwards.
func buildBarSVG(bars []Bar, width, height, trackWidth int, maxValue float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	fmt.Fprintf(&b, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, width, height, backgroundFill)

	x := sideMargin + labelColumn
	for i, bar := range bars {
		y := topMargin + i*(barHeight+barGap)
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" rx="%d" fill="%s"/>`,
			x, y, trackWidth, barHeight, barRadius, trackFill)

		w := barPixelWidth(bar.Value, maxValue, trackWidth)
		if w <= 0 {
			continue
		}
		fill := barFill
		if i == 0 {
			fill = leaderFill
		}
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" rx="%d" fill="%s"/>`,
			x, y, w, barHeight, barRadius, fill)
	}
	b.WriteString(`</svg>`)
	return b.String()
}

func barPixelWidth(value, maxValue float64, trackWidth int) int {
	if value <= 0 || maxValue <= 0 {
		return 0
	}
	w := int(value / maxValue * float64(trackWidth))
	if w < minBarWidth {
		w = minBarWidth
	}
	if w > trackWidth {
		w = trackWidth
	}
	return w
}

func drawChartText(img *image.RGBA, bars []Bar, opts RenderOptions, width, trackWidth int) {
	drawer := &font.Drawer{
		Dst:  img,
		Face: basicfont.Face7x13,
	}
	ascent := basicfont.Face7x13.Metrics().Ascent.Ceil()
	descent := basicfont.Face7x13.Metrics().Descent.Ceil()

	title := strings.TrimSpace(opts.Title)
	if title != "" {
		drawer.Src = image.NewUniform(titleTextColor)
		drawer.Dot = fixed.P(sideMargin, 24+ascent/2)
		drawer.DrawString(truncateWithEllipsis(drawer, title, width-sideMargin*2))
	}

	formatValue := opts.ValueFormat
	if formatValue == nil {
		formatValue = func(v float64) string { return fmt.Sprintf("%.0f", v) }
	}

	trackX := sideMargin + labelColumn
	for i, bar := range bars {
		y := topMargin + i*(barHeight+barGap)
		baseline := y + (barHeight+ascent-descent)/2

		label := truncateWithEllipsis(drawer, strings.TrimSpace(bar.Label), labelColumn-12)
		drawer.Src = image.NewUniform(labelTextColor)
		drawer.Dot = fixed.P(sideMargin, baseline)
		drawer.DrawString(label)

		value := bar.Annotation
		if value == "" {
			value = formatValue(bar.Value)
		}
		drawer.Src = image.NewUniform(valueTextColor)
		drawer.Dot = fixed.P(trackX+trackWidth+8, baseline)
		drawer.DrawString(truncateWithEllipsis(drawer, value, valueColumn-8))
	}
}

func truncateWithEllipsis(drawer *font.Drawer, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 {
		return ""
	}
	if drawer.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}

	ellipsis := "..."
	if drawer.MeasureString(ellipsis).Round() > maxWidth {
		return ""
	}

	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}
