package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"mandalart/internal/grid"
)

func rgbaAt(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func center(r image.Rectangle) (int, int) {
	return (r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2
}

func TestOptions_CanvasSize(t *testing.T) {
	if got := FullOptions.CanvasSize(); got != 920 {
		t.Fatalf("full canvas = %d, want 920", got)
	}
	if got := ThumbnailOptions.CanvasSize(); got != 280 {
		t.Fatalf("thumbnail canvas = %d, want 280", got)
	}
}

func TestGrid_ColorsCellsByRole(t *testing.T) {
	for _, o := range []Options{FullOptions, ThumbnailOptions} {
		img, err := Grid(grid.Grid{}, o)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if img.Bounds().Dx() != o.CanvasSize() || img.Bounds().Dy() != o.CanvasSize() {
			t.Fatalf("unexpected bounds %v", img.Bounds())
		}
		cases := []struct {
			index int
			want  color.RGBA
		}{
			{grid.CenterIndex, ColorCenter},
			{30, ColorTheme},
			{10, ColorTheme},
			{0, ColorDetail},
			{80, ColorDetail},
		}
		for _, tc := range cases {
			x, y := center(o.CellRect(tc.index))
			if got := rgbaAt(img, x, y); got != tc.want {
				t.Fatalf("cell %d at (%d,%d) = %v, want %v", tc.index, x, y, got, tc.want)
			}
		}
	}
}

func TestGrid_DrawsBlockLines(t *testing.T) {
	img, err := Grid(grid.Grid{}, FullOptions)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	// The boundary between block columns 0 and 1 sits at x=307.
	if got := rgbaAt(img, 307, 52); got != ColorBlockLine {
		t.Fatalf("expected block line, got %v", got)
	}
	// Thin line between cells 0 and 1.
	if got := rgbaAt(img, 103, 52); got != ColorGridLine {
		t.Fatalf("expected grid line, got %v", got)
	}
}

func TestGrid_DrawsText(t *testing.T) {
	var g grid.Grid
	g.Themes[0].Details[0] = "WWWW"
	img, err := Grid(g, FullOptions)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	r := FullOptions.CellRect(0)
	dark := false
	for y := r.Min.Y; y < r.Max.Y && !dark; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if c := rgbaAt(img, x, y); c.R < 0xC0 {
				dark = true
				break
			}
		}
	}
	if !dark {
		t.Fatalf("expected text pixels in cell 0")
	}

	thumb, err := Grid(g, ThumbnailOptions)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	tr := ThumbnailOptions.CellRect(0)
	x, y := center(tr)
	if got := rgbaAt(thumb, x, y); got != ColorDetail {
		t.Fatalf("thumbnail should not draw text, got %v", got)
	}
}

func TestWrapText(t *testing.T) {
	face, err := NewFace(12, false)
	if err != nil {
		t.Fatalf("face: %v", err)
	}
	defer face.Close()

	text := "Practice every single morning before work"
	lines := WrapText(face, text, 90)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %q", lines)
	}
	if strings.Join(lines, "") != text {
		t.Fatalf("wrapping lost runes: %q", lines)
	}
	for _, l := range lines {
		if measure(face, l) > 90 {
			t.Fatalf("line %q wider than 90px", l)
		}
	}

	if got := WrapText(face, "", 90); len(got) != 0 {
		t.Fatalf("expected no lines, got %q", got)
	}
	if got := WrapText(face, "W", 1); len(got) != 1 || got[0] != "W" {
		t.Fatalf("a wide rune should still get its own line, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("0123456789abc", 10); got != "0123456789..." {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("健康的な生活習慣を身につける", 10); got != "健康的な生活習慣を身..." {
		t.Fatalf("got %q", got)
	}
}

func TestOGImage(t *testing.T) {
	blank, err := OGImage(grid.Grid{})
	if err != nil {
		t.Fatalf("og: %v", err)
	}
	if blank.Bounds() != image.Rect(0, 0, OGWidth, OGHeight) {
		t.Fatalf("unexpected bounds %v", blank.Bounds())
	}
	if got := rgbaAt(blank, 0, 0); got != ogGradientFrom {
		t.Fatalf("top-left = %v, want %v", got, ogGradientFrom)
	}
	br := rgbaAt(blank, OGWidth-1, OGHeight-1)
	if diff := int(br.B) - int(ogGradientTo.B); diff < -1 || diff > 1 {
		t.Fatalf("bottom-right = %v, want about %v", br, ogGradientTo)
	}

	var g grid.Grid
	g.Center = "Goal"
	g.Themes[0].Title = "A"
	withTheme, err := OGImage(g)
	if err != nil {
		t.Fatalf("og: %v", err)
	}
	// Inside the first theme's box, left of its label.
	if rgbaAt(withTheme, 228, 262) == rgbaAt(blank, 228, 262) {
		t.Fatalf("expected the theme box to tint the background")
	}
	// The middle slot stays empty even with eight themes.
	for i := range g.Themes {
		g.Themes[i].Title = "Theme"
	}
	full, err := OGImage(g)
	if err != nil {
		t.Fatalf("og: %v", err)
	}
	if rgbaAt(full, 600, 410) != rgbaAt(blank, 600, 410) {
		t.Fatalf("expected the middle slot to stay empty")
	}
}

func TestPNGEncoding(t *testing.T) {
	b, err := GridPNG(grid.Grid{}, ThumbnailOptions)
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 280 {
		t.Fatalf("unexpected width %d", img.Bounds().Dx())
	}

	og, err := OGImagePNG(grid.Grid{})
	if err != nil {
		t.Fatalf("og png: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(og))
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.Width != OGWidth || cfg.Height != OGHeight {
		t.Fatalf("unexpected og size %dx%d", cfg.Width, cfg.Height)
	}
}
