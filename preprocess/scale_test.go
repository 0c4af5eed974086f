package preprocess

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, clr color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(clr), image.Point{}, draw.Src)
	return img
}

func TestFromImageScaled(t *testing.T) {

	lib, engine := newLibrary(t)

	img, err := FromImageScaled(lib, solid(8, 4, color.RGBA{R: 255, A: 255}), 4, 2)
	require.NoError(t, err)

	w, h, c := img.Size()
	assert.Equal(t, []int{4, 2, 3}, []int{w, h, c})

	pix := img.Pixels()
	assert.InDelta(t, 1, pix[0], 1e-6)
	assert.InDelta(t, 0, pix[8], 1e-6)

	require.NoError(t, img.Close())
	assert.Equal(t, 1, engine.freed)

	_, err = FromImageScaled(lib, solid(8, 4, color.RGBA{A: 255}), 0, 2)
	assert.Error(t, err)
}

func TestLetterbox(t *testing.T) {

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	// wide source, padded above and below
	dst, err := Letterbox(solid(20, 10, white), 10, 10)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 10, 10), dst.Bounds())
	assert.Equal(t, letterboxFill, dst.RGBAAt(5, 0))
	assert.Equal(t, letterboxFill, dst.RGBAAt(5, 9))
	assert.Equal(t, white, dst.RGBAAt(5, 5))
	assert.Equal(t, white, dst.RGBAAt(0, 3))

	// tall source, padded left and right
	dst, err = Letterbox(solid(10, 20, white), 10, 10)
	require.NoError(t, err)

	assert.Equal(t, letterboxFill, dst.RGBAAt(0, 5))
	assert.Equal(t, letterboxFill, dst.RGBAAt(9, 5))
	assert.Equal(t, white, dst.RGBAAt(5, 5))

	_, err = Letterbox(solid(0, 0, white), 10, 10)
	assert.Error(t, err)

	_, err = Letterbox(solid(4, 4, white), 10, -1)
	assert.Error(t, err)
}
