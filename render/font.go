package render

import (
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// Alignment positions a label along the top edge of its box
type Alignment int

const (
	Left Alignment = iota + 1
	Center
	Right
)

// hersheyHeight is the cap height in pixels of FontHersheySimplex at scale 1
const hersheyHeight = 22

// Font holds the text settings of box labels drawn on a gocv Mat
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// padding between the text and its background box
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
	Alignment Alignment
	// ShowProbability appends the class probability to the label
	ShowProbability bool
}

// DefaultFont returns the label font for a 640 pixel high image
func DefaultFont() Font {
	return FontForHeight(640)
}

// FontForHeight returns label settings for an image of the given height.
// Text is 3% of the image height, matching the glyph size darknet picks from
// its alphabet, and never smaller than scale 0.4.
func FontForHeight(height int) Font {

	scale := math.Max(float64(height)*0.03/hersheyHeight, 0.4)
	pad := int(math.Max(math.Round(scale*5), 2))

	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     scale,
		Color:     Black,
		Thickness: max(1, int(math.Round(scale))),
		LineType:  gocv.LineAA,
		LeftPad:   pad,
		RightPad:  pad,
		TopPad:    pad,
		BottomPad: pad + pad/2,
		Alignment: Left,
	}
}

// LineWidth returns the box outline width darknet uses for an image of the
// given height, 0.6% of the height and at least one pixel
func LineWidth(height int) int {
	return max(1, int(float64(height)*0.006))
}
