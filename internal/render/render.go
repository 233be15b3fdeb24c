// Package render rasterizes mandalarts into PNG images: the full grid,
// list thumbnails and the 1200x630 share image.
package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"mandalart/internal/grid"
)

var (
	ColorCenter    = color.RGBA{0xDC, 0x14, 0x3C, 0xFF}
	ColorTheme     = color.RGBA{0x31, 0x78, 0x73, 0xFF}
	ColorDetail    = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	ColorText      = color.RGBA{0x33, 0x33, 0x33, 0xFF}
	ColorGridLine  = color.RGBA{0xE0, 0xE0, 0xE0, 0xFF}
	ColorBlockLine = ColorCenter
)

// Options controls the grid raster.
type Options struct {
	CellSize       int
	Gap            int
	GridLineWidth  int
	BlockLineWidth int
	ShowText       bool
	// TitleSize and DetailSize are font sizes in pixels.
	TitleSize  float64
	DetailSize float64
	LineHeight int
}

var FullOptions = Options{
	CellSize:       100,
	Gap:            2,
	GridLineWidth:  1,
	BlockLineWidth: 3,
	ShowText:       true,
	TitleSize:      14,
	DetailSize:     12,
	LineHeight:     18,
}

// ThumbnailOptions draws colors only; text would be unreadable at this size.
var ThumbnailOptions = Options{
	CellSize:       30,
	Gap:            1,
	GridLineWidth:  1,
	BlockLineWidth: 2,
}

// CanvasSize is the width and height of the grid image.
func (o Options) CanvasSize() int {
	return o.CellSize*grid.Size + o.Gap*(grid.Size+1)
}

// CellRect is the area of index inside the canvas.
func (o Options) CellRect(index int) image.Rectangle {
	row, col := grid.RowCol(index)
	x := o.Gap + col*(o.CellSize+o.Gap)
	y := o.Gap + row*(o.CellSize+o.Gap)
	return image.Rect(x, y, x+o.CellSize, y+o.CellSize)
}

// Grid draws all 81 cells of g.
func Grid(g grid.Grid, o Options) (*image.RGBA, error) {
	size := o.CanvasSize()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	fill(img, img.Bounds(), color.White)

	var titleFace, detailFace font.Face
	if o.ShowText {
		var err error
		if titleFace, err = NewFace(o.TitleSize, true); err != nil {
			return nil, err
		}
		defer titleFace.Close()
		if detailFace, err = NewFace(o.DetailSize, false); err != nil {
			return nil, err
		}
		defer detailFace.Close()
	}

	for _, c := range g.Cells() {
		r := o.CellRect(c.Index)
		face, textColor := detailFace, color.Color(ColorText)
		switch c.Address.Kind {
		case grid.KindCenter:
			fill(img, r, ColorCenter)
			face, textColor = titleFace, color.White
		case grid.KindTheme:
			fill(img, r, ColorTheme)
			face, textColor = titleFace, color.White
		default:
			fill(img, r, ColorDetail)
		}
		text := strings.TrimSpace(c.Text)
		if !o.ShowText || text == "" {
			continue
		}
		drawCellText(img, face, textColor, r, text, o)
	}

	// Thin lines between every cell, then thick lines around the blocks.
	for i := 0; i <= grid.Size; i++ {
		pos := o.Gap + i*(o.CellSize+o.Gap) - o.Gap/2
		strokeVertical(img, pos, o.GridLineWidth, ColorGridLine)
		strokeHorizontal(img, pos, o.GridLineWidth, ColorGridLine)
	}
	for i := 0; i <= 3; i++ {
		pos := o.Gap + i*3*(o.CellSize+o.Gap) - o.Gap/2
		strokeVertical(img, pos, o.BlockLineWidth, ColorBlockLine)
		strokeHorizontal(img, pos, o.BlockLineWidth, ColorBlockLine)
	}
	return img, nil
}

func drawCellText(img *image.RGBA, face font.Face, c color.Color, r image.Rectangle, text string, o Options) {
	lines := WrapText(face, text, o.CellSize-10)
	total := len(lines) * o.LineHeight
	startY := r.Min.Y + (o.CellSize-total)/2 + o.LineHeight/2
	d := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: face}
	cx := r.Min.X + o.CellSize/2
	for i, line := range lines {
		w := measure(face, line)
		d.Dot = fixed.Point26_6{X: fixed.I(cx - w/2), Y: middleBaseline(face, startY+i*o.LineHeight)}
		d.DrawString(line)
	}
}

// WrapText breaks text into lines no wider than maxWidth, one rune at a time.
// A single rune wider than maxWidth still gets its own line.
func WrapText(face font.Face, text string, maxWidth int) []string {
	var lines []string
	var cur strings.Builder
	for _, r := range text {
		test := cur.String() + string(r)
		if measure(face, test) > maxWidth && cur.Len() > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// Truncate shortens s to max runes, appending "..." when cut.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}

func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// GridPNG renders g with o and returns the encoded PNG.
func GridPNG(g grid.Grid, o Options) ([]byte, error) {
	img, err := Grid(g, o)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func blend(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// strokeVertical paints a full-height line of the given width centered on x.
func strokeVertical(img *image.RGBA, x, width int, c color.Color) {
	lo := x - width/2
	fill(img, image.Rect(lo, 0, lo+width, img.Bounds().Dy()).Intersect(img.Bounds()), c)
}

func strokeHorizontal(img *image.RGBA, y, width int, c color.Color) {
	lo := y - width/2
	fill(img, image.Rect(0, lo, img.Bounds().Dx(), lo+width).Intersect(img.Bounds()), c)
}
