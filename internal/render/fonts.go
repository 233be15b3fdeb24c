package render

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type fontBank struct {
	regular *opentype.Font
	bold    *opentype.Font
}

var (
	fontsOnce sync.Once
	fonts     fontBank
	fontsErr  error
)

func loadFonts() (fontBank, error) {
	fontsOnce.Do(func() {
		reg, err := opentype.Parse(goregular.TTF)
		if err != nil {
			fontsErr = fmt.Errorf("render: parse regular font: %w", err)
			return
		}
		bol, err := opentype.Parse(gobold.TTF)
		if err != nil {
			fontsErr = fmt.Errorf("render: parse bold font: %w", err)
			return
		}
		fonts = fontBank{regular: reg, bold: bol}
	})
	return fonts, fontsErr
}

// NewFace returns a face of size px. Faces are not safe for concurrent use,
// so every render builds its own.
func NewFace(size float64, bold bool) (font.Face, error) {
	bank, err := loadFonts()
	if err != nil {
		return nil, err
	}
	base := bank.regular
	if bold {
		base = bank.bold
	}
	return opentype.NewFace(base, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// measure returns the advance width of s in whole pixels, rounded.
func measure(face font.Face, s string) int {
	if face == nil || s == "" {
		return 0
	}
	adv := font.MeasureString(face, s)
	px := (int(adv) + 32) >> 6
	if px < 0 {
		px = 0
	}
	return px
}

// middleBaseline returns the baseline that vertically centers a line on y.
func middleBaseline(face font.Face, y int) fixed.Int26_6 {
	m := face.Metrics()
	return fixed.I(y) + (m.Ascent-m.Descent)/2
}
