package darknet

import (
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Image wraps a native darknet image.  Pixels are stored as float32 values in
// the range [0,1] in planar CHW order.
type Image struct {
	lib *Library
	// handle is the native image, nil once closed
	handle ImageHandle
}

// LoadImageColor wraps load_image_color and decodes the image file at path
// into a 3 channel image.  A width and height of 0 keeps the native image
// size, otherwise the image is resized to the given dimensions.
func (l *Library) LoadImageColor(path string, width, height int) (*Image, error) {

	const op = "LoadImageColor"

	if width < 0 || height < 0 {
		return nil, invalidArgf(op, "image dimensions must not be negative, got %dx%d",
			width, height)
	}

	cPath, err := NewCString(path)

	if err != nil {
		return nil, newError(MarshalError, op, errors.Wrap(err, "image path"))
	}

	if err := checkFile(op, "image", path); err != nil {
		return nil, err
	}

	h := l.engine.LoadImageColor(cPath, width, height)
	runtime.KeepAlive(cPath)

	if h == nil {
		return nil, newError(LoadError, op,
			errors.Errorf("darknet returned no image data for %s", path))
	}

	l.log.Debug("loaded image", zap.String("path", path))

	return &Image{lib: l, handle: h}, nil
}

// NewImage wraps make_image and allocates a blank image
func (l *Library) NewImage(width, height, channels int) (*Image, error) {

	const op = "NewImage"

	if width < 1 || height < 1 || channels < 1 {
		return nil, invalidArgf(op, "image dimensions must be positive, got %dx%dx%d",
			width, height, channels)
	}

	h := l.engine.MakeImage(width, height, channels)

	if h == nil {
		return nil, newError(LoadError, op, errors.New("darknet returned no image"))
	}

	return &Image{lib: l, handle: h}, nil
}

// Close wraps free_image and releases the native image.  Only the first call
// releases, subsequent calls do nothing.
func (i *Image) Close() error {

	if i.handle == nil {
		return nil
	}

	i.lib.engine.FreeImage(i.handle)
	i.handle = nil

	return nil
}

// Closed reports whether the image has been released
func (i *Image) Closed() bool {
	return i == nil || i.handle == nil
}

// check returns an error when the image can not be passed to darknet
func (i *Image) check(op string) error {

	if i == nil {
		return invalidArgf(op, "image is nil")
	}

	if i.handle == nil {
		return closedError(op)
	}

	return nil
}

// Resize wraps resize_image and returns a new image of the given size.  The
// receiver is not modified or released, both images must be closed.
func (i *Image) Resize(width, height int) (*Image, error) {
	return i.derive("Resize", width, height, Engine.ResizeImage)
}

// Letterbox wraps letterbox_image and returns a new image of the given size
// holding the receiver scaled to fit whilst keeping its aspect ratio
func (i *Image) Letterbox(width, height int) (*Image, error) {
	return i.derive("Letterbox", width, height, Engine.LetterboxImage)
}

func (i *Image) derive(op string, width, height int,
	fn func(Engine, ImageHandle, int, int) ImageHandle) (*Image, error) {

	if err := i.check(op); err != nil {
		return nil, err
	}

	if width < 1 || height < 1 {
		return nil, invalidArgf(op, "image dimensions must be positive, got %dx%d",
			width, height)
	}

	h := fn(i.lib.engine, i.handle, width, height)

	if h == nil {
		return nil, newError(LoadError, op, errors.New("darknet returned no image"))
	}

	return &Image{lib: i.lib, handle: h}, nil
}

// Save wraps save_image.  darknet appends the file extension to basename.
func (i *Image) Save(basename string) error {

	const op = "Save"

	if err := i.check(op); err != nil {
		return err
	}

	if basename == "" {
		return invalidArgf(op, "basename is empty")
	}

	name, err := NewCString(basename)

	if err != nil {
		return newError(MarshalError, op, errors.Wrap(err, "basename"))
	}

	i.lib.engine.SaveImage(i.handle, name)
	runtime.KeepAlive(name)

	i.lib.log.Debug("saved image", zap.String("basename", basename))

	return nil
}

// Width returns the image width, or 0 if closed
func (i *Image) Width() int {
	w, _, _ := i.Size()
	return w
}

// Height returns the image height, or 0 if closed
func (i *Image) Height() int {
	_, h, _ := i.Size()
	return h
}

// Channels returns the number of image channels, or 0 if closed
func (i *Image) Channels() int {
	_, _, c := i.Size()
	return c
}

// Size returns the image dimensions
func (i *Image) Size() (width, height, channels int) {

	if i.Closed() {
		return 0, 0, 0
	}

	return i.lib.engine.ImageSize(i.handle)
}

// Pixels returns a view over the native pixel buffer.  The slice points to
// native memory and must not be used after the image is closed.
func (i *Image) Pixels() []float32 {

	if i.Closed() {
		return nil
	}

	return i.lib.engine.ImageData(i.handle)
}
