package preprocess

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"github.com/swdee/go-darknet"
	"gocv.io/x/gocv"
)

// MatToImage converts an 8 bit gocv Mat in BGR, BGRA or grayscale into a
// darknet Image with RGB planar float pixels in the range [0,1]
func MatToImage(lib *darknet.Library, mat gocv.Mat) (*darknet.Image, error) {

	if mat.Empty() {
		return nil, errors.New("mat is empty")
	}

	// convert colorspace to the channel order darknet expects
	src := mat
	channels := 1

	switch mat.Type() {
	case gocv.MatTypeCV8UC1:

	case gocv.MatTypeCV8UC3:
		src = gocv.NewMat()
		defer src.Close()
		gocv.CvtColor(mat, &src, gocv.ColorBGRToRGB)
		channels = 3

	case gocv.MatTypeCV8UC4:
		src = gocv.NewMat()
		defer src.Close()
		gocv.CvtColor(mat, &src, gocv.ColorBGRAToRGB)
		channels = 3

	default:
		return nil, errors.Errorf("unsupported mat type %d", int(mat.Type()))
	}

	// make mat continuous
	if !src.IsContinuous() {
		cont := src.Clone()
		defer cont.Close()
		src = cont
	}

	data, err := src.DataPtrUint8()

	if err != nil {
		return nil, errors.Wrap(err, "error getting data pointer to Mat")
	}

	img, err := lib.NewImage(src.Cols(), src.Rows(), channels)

	if err != nil {
		return nil, err
	}

	interleavedToPlanar(data, img.Pixels(), src.Cols(), src.Rows(), channels)

	return img, nil
}

// ImageToMat converts a darknet Image into an 8 bit BGR, or grayscale for
// single channel images, gocv Mat.  The caller must close the Mat.
func ImageToMat(img *darknet.Image) (gocv.Mat, error) {

	w, h, c := img.Size()

	if w == 0 || h == 0 {
		return gocv.NewMat(), errors.New("image is closed or empty")
	}

	var matType gocv.MatType

	switch c {
	case 1:
		matType = gocv.MatTypeCV8UC1
	case 3:
		matType = gocv.MatTypeCV8UC3
	default:
		return gocv.NewMat(), errors.Errorf("unsupported channel count %d", c)
	}

	data := make([]byte, w*h*c)
	planarToInterleaved(img.Pixels(), data, w, h, c)

	mat, err := gocv.NewMatFromBytes(h, w, matType, data)

	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "error creating Mat")
	}

	defer mat.Close()

	// copy out of the Go buffer backing mat
	out := gocv.NewMat()

	if c == 3 {
		gocv.CvtColor(mat, &out, gocv.ColorRGBToBGR)
	} else {
		mat.CopyTo(&out)
	}

	return out, nil
}

// ToRGBA converts a darknet Image into a Go image
func ToRGBA(img *darknet.Image) (*image.RGBA, error) {

	w, h, c := img.Size()

	if w == 0 || h == 0 {
		return nil, errors.New("image is closed or empty")
	}

	if c != 1 && c != 3 {
		return nil, errors.Errorf("unsupported channel count %d", c)
	}

	pix := img.Pixels()
	plane := w * h
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			r := toByte(pix[i])
			g, b := r, r

			if c == 3 {
				g = toByte(pix[plane+i])
				b = toByte(pix[2*plane+i])
			}

			dst.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	return dst, nil
}

// FromImage converts a Go image into a 3 channel darknet Image
func FromImage(lib *darknet.Library, src image.Image) (*darknet.Image, error) {

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	img, err := lib.NewImage(w, h, 3)

	if err != nil {
		return nil, err
	}

	pix := img.Pixels()
	plane := w * h

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			clr := color.RGBAModel.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.RGBA)
			i := y*w + x

			pix[i] = float32(clr.R) / 255
			pix[plane+i] = float32(clr.G) / 255
			pix[2*plane+i] = float32(clr.B) / 255
		}
	}

	return img, nil
}

// interleavedToPlanar converts HWC bytes into CHW floats in the range [0,1]
func interleavedToPlanar(src []byte, dst []float32, w, h, c int) {

	plane := w * h

	for k := 0; k < c; k++ {
		for i := 0; i < plane; i++ {
			dst[k*plane+i] = float32(src[i*c+k]) / 255
		}
	}
}

// planarToInterleaved converts CHW floats in the range [0,1] into HWC bytes
func planarToInterleaved(src []float32, dst []byte, w, h, c int) {

	plane := w * h

	for k := 0; k < c; k++ {
		for i := 0; i < plane; i++ {
			dst[i*c+k] = toByte(src[k*plane+i])
		}
	}
}

// toByte scales a [0,1] float to a byte, clamping out of range values
func toByte(v float32) uint8 {

	if v <= 0 {
		return 0
	}

	if v >= 1 {
		return 255
	}

	return uint8(v*255 + 0.5)
}
