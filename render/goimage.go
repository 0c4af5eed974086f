package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/swdee/go-darknet"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DrawResults renders the bounding boxes and class labels of results onto
// dst using only the Go image packages, for use without OpenCV
func DrawResults(dst draw.Image, results []darknet.Result, numClasses int,
	lineThickness int) {

	face := basicfont.Face7x13
	bounds := dst.Bounds()

	for _, res := range results {

		clr := ClassColor(res.Class, numClasses)
		rect := image.Rect(res.Box.Left, res.Box.Top, res.Box.Right, res.Box.Bottom).
			Add(bounds.Min)

		strokeRect(dst, rect, clr, lineThickness)

		// label box sits on top of the bounding box, or inside it when the
		// box touches the top of the image
		text := labelText(res, false)
		width := font.MeasureString(face, text).Ceil()
		height := face.Metrics().Height.Ceil()

		top := rect.Min.Y - height

		if top < bounds.Min.Y {
			top = rect.Min.Y
		}

		labelRect := image.Rect(rect.Min.X, top, rect.Min.X+width+2, top+height).
			Intersect(bounds)
		draw.Draw(dst, labelRect, image.NewUniform(clr), image.Point{}, draw.Src)

		d := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(Black),
			Face: face,
			Dot: fixed.Point26_6{
				X: fixed.I(rect.Min.X + 1),
				Y: fixed.I(top + face.Metrics().Ascent.Ceil()),
			},
		}
		d.DrawString(text)
	}
}

// strokeRect draws the outline of rect with the given line thickness, growing
// inwards from the rectangle edges
func strokeRect(dst draw.Image, rect image.Rectangle, clr color.Color, thickness int) {

	if thickness < 1 {
		thickness = 1
	}

	src := image.NewUniform(clr)
	bounds := dst.Bounds()

	edges := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X+1, rect.Min.Y+thickness),
		image.Rect(rect.Min.X, rect.Max.Y-thickness+1, rect.Max.X+1, rect.Max.Y+1),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+thickness, rect.Max.Y+1),
		image.Rect(rect.Max.X-thickness+1, rect.Min.Y, rect.Max.X+1, rect.Max.Y+1),
	}

	for _, e := range edges {
		draw.Draw(dst, e.Intersect(bounds), src, image.Point{}, draw.Src)
	}
}
