package preprocess

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/swdee/go-darknet"
)

// letterboxFill is the gray darknet pads letterboxed images with
var letterboxFill = color.RGBA{R: 127, G: 127, B: 127, A: 255}

// FromImageScaled resizes src to width x height with Lanczos3 resampling and
// converts the result into a darknet Image
func FromImageScaled(lib *darknet.Library, src image.Image, width, height int) (*darknet.Image, error) {

	if width < 1 || height < 1 {
		return nil, errors.Errorf("invalid target size %dx%d", width, height)
	}

	return FromImage(lib, resize.Resize(uint(width), uint(height), src, resize.Lanczos3))
}

// Letterbox scales src to fit inside width x height keeping its aspect ratio
// and centers it on a gray canvas, the pure Go counterpart of darknet's
// letterbox_image
func Letterbox(src image.Image, width, height int) (*image.RGBA, error) {

	if width < 1 || height < 1 {
		return nil, errors.Errorf("invalid target size %dx%d", width, height)
	}

	bounds := src.Bounds()
	sw, sh := bounds.Dx(), bounds.Dy()

	if sw < 1 || sh < 1 {
		return nil, errors.New("source image is empty")
	}

	newW, newH := width, height

	if width*sh < height*sw {
		newH = max(1, sh*width/sw)
	} else {
		newW = max(1, sw*height/sh)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(letterboxFill), image.Point{}, draw.Src)

	scaled := resize.Resize(uint(newW), uint(newH), src, resize.Lanczos3)
	offset := image.Pt((width-newW)/2, (height-newH)/2)

	draw.Draw(dst, image.Rectangle{Min: offset, Max: offset.Add(image.Pt(newW, newH))},
		scaled, scaled.Bounds().Min, draw.Src)

	return dst, nil
}
