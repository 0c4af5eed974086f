package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/swdee/go-darknet"
	"gocv.io/x/gocv"
)

// boxLabel holds a precalculated label so labels can be drawn after all boxes
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// labelText returns the text drawn above a detection box
func labelText(res darknet.Result, showProb bool) string {

	name := res.Name

	if name == "" {
		name = fmt.Sprintf("class %d", res.Class)
	}

	if showProb {
		return fmt.Sprintf("%s %.2f", name, res.Probability)
	}

	return name
}

// DetectionBoxes renders the bounding boxes around the objects detected on a
// gocv Mat the image was loaded into.  numClasses selects the same box
// colors darknet uses.
func DetectionBoxes(img *gocv.Mat, results []darknet.Result, numClasses int,
	font Font, lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0, len(results))

	for _, res := range results {

		useClr := ClassColor(res.Class, numClasses)

		// draw rectangle around detected object
		rect := image.Rect(res.Box.Left, res.Box.Top, res.Box.Right, res.Box.Bottom)
		gocv.Rectangle(img, rect, useClr, lineThickness)

		text := labelText(res, font.ShowProbability)
		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		// Calculate the alignment of text label
		var centerX int

		switch font.Alignment {
		case Center:
			centerX = (res.Box.Left + res.Box.Right) / 2

		case Right:
			centerX = res.Box.Right - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

		case Left:
			fallthrough
		default:
			centerX = res.Box.Left + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
		}

		// keep labels of boxes touching the top edge inside the image
		top := res.Box.Top

		if minTop := textSize.Y + font.TopPad + font.BottomPad; top < minTop {
			top = minTop
		}

		boxLabels = append(boxLabels, boxLabel{
			rect: image.Rect(centerX-textSize.X/2-font.LeftPad,
				top-textSize.Y-font.TopPad-font.BottomPad,
				centerX+textSize.X/2+font.RightPad, top),
			clr:     useClr,
			text:    text,
			textPos: image.Pt(centerX-textSize.X/2, top-font.BottomPad),
		})
	}

	// draw all precalculated box labels so they are the top most layer on the
	// image and are not overlapped by neighbouring boxes
	for _, box := range boxLabels {
		gocv.Rectangle(img, box.rect, box.clr, -1)

		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}
