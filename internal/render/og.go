package render

import (
	"bytes"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"mandalart/internal/grid"
)

const (
	OGWidth  = 1200
	OGHeight = 630

	// SiteTitle heads every share image.
	SiteTitle = "Everyone's Mandalart"
	// DefaultCenterLabel stands in for an empty center goal.
	DefaultCenterLabel = "Main Goal"

	ogThemeRunes = 10
)

var (
	ogGradientFrom = color.RGBA{0xFF, 0xF9, 0xF0, 0xFF}
	ogGradientTo   = color.RGBA{0xFF, 0xE8, 0xCC, 0xFF}
	ogThemeBox     = color.NRGBA{49, 120, 115, 38}
	ogCenterText   = color.RGBA{0x33, 0x33, 0x33, 0xFF}
)

// ogPositions is a 3x3 layout of theme label centers; the middle slot
// is left free.
var ogPositions = [9][2]int{
	{250, 280}, {600, 280}, {950, 280},
	{250, 420}, {600, 420}, {950, 420},
	{250, 560}, {600, 560}, {950, 560},
}

// OGImage draws the share image for g.
func OGImage(g grid.Grid) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, OGWidth, OGHeight))
	diagonalGradient(img, ogGradientFrom, ogGradientTo)

	titleFace, err := NewFace(48, true)
	if err != nil {
		return nil, err
	}
	defer titleFace.Close()
	centerFace, err := NewFace(56, true)
	if err != nil {
		return nil, err
	}
	defer centerFace.Close()
	themeFace, err := NewFace(28, true)
	if err != nil {
		return nil, err
	}
	defer themeFace.Close()

	drawCentered(img, titleFace, ColorCenter, SiteTitle, OGWidth/2, 80)

	center := strings.TrimSpace(g.Center)
	if center == "" {
		center = DefaultCenterLabel
	}
	drawCentered(img, centerFace, ogCenterText, fitWidth(centerFace, center, OGWidth-100), OGWidth/2, 170)

	for i, th := range g.Themes {
		title := strings.TrimSpace(th.Title)
		if title == "" {
			continue
		}
		slot := i
		if i >= 4 {
			slot = i + 1
		}
		x, y := ogPositions[slot][0], ogPositions[slot][1]
		text := Truncate(title, ogThemeRunes)
		w := measure(themeFace, text)
		blend(img, image.Rect(x-w/2-15, y-35, x+w/2+15, y+15), ogThemeBox)
		drawCentered(img, themeFace, ColorTheme, text, x, y)
	}
	return img, nil
}

// OGImagePNG renders and encodes the share image.
func OGImagePNG(g grid.Grid) ([]byte, error) {
	img, err := OGImage(g)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawCentered draws s centered on x with its baseline at y.
func drawCentered(img *image.RGBA, face font.Face, c color.Color, s string, x, y int) {
	w := measure(face, s)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x-w/2, y),
	}
	d.DrawString(s)
}

// fitWidth trims runes from the end of s until it fits maxWidth.
func fitWidth(face font.Face, s string, maxWidth int) string {
	if measure(face, s) <= maxWidth {
		return s
	}
	rs := []rune(s)
	for n := len(rs) - 1; n > 0; n-- {
		cand := string(rs[:n]) + "..."
		if measure(face, cand) <= maxWidth {
			return cand
		}
	}
	return "..."
}

// diagonalGradient fills img from top-left (from) to bottom-right (to).
func diagonalGradient(img *image.RGBA, from, to color.RGBA) {
	b := img.Bounds()
	dx, dy := float64(b.Dx()), float64(b.Dy())
	den := dx*dx + dy*dy
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			t := (float64(x-b.Min.X)*dx + float64(y-b.Min.Y)*dy) / den
			img.SetRGBA(x, y, lerp(from, to, t))
		}
	}
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5) }
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), mix(a.A, b.A)}
}
