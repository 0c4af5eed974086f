package darknet

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadImageColor(t *testing.T) {

	lib, stub := newTestLibrary(t)
	path := tempFile(t, "horses.jpg")

	tests := []struct {
		width, height int
		wantW, wantH  int
	}{
		{0, 0, 640, 480},
		{320, 240, 320, 240},
	}

	for _, tc := range tests {
		img, err := lib.LoadImageColor(path, tc.width, tc.height)
		require.NoError(t, err)

		assert.Equal(t, tc.wantW, img.Width())
		assert.Equal(t, tc.wantH, img.Height())
		assert.Equal(t, 3, img.Channels())
		assert.Len(t, img.Pixels(), tc.wantW*tc.wantH*3)

		require.NoError(t, img.Close())
	}

	assert.Equal(t, 2, stub.calls["FreeImage"])
}

func TestLoadImageColorErrors(t *testing.T) {

	lib, stub := newTestLibrary(t)
	path := tempFile(t, "horses.jpg")

	_, err := lib.LoadImageColor(path, -1, 0)
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	_, err = lib.LoadImageColor("data/hor\x00ses.jpg", 0, 0)
	require.Error(t, err)
	assert.True(t, IsMarshalError(err))

	_, err = lib.LoadImageColor(path+".missing", 0, 0)
	require.Error(t, err)
	assert.True(t, IsLoadError(err))

	assert.Equal(t, 0, stub.totalCalls())

	stub.failLoads = true

	_, err = lib.LoadImageColor(path, 0, 0)
	require.Error(t, err)
	assert.True(t, IsLoadError(err))
}

func TestImageCloseReleasesOnce(t *testing.T) {

	lib, stub := newTestLibrary(t)

	img, err := lib.LoadImageColor(tempFile(t, "horses.jpg"), 0, 0)
	require.NoError(t, err)

	handle := unsafe.Pointer(img.handle)

	require.NoError(t, img.Close())
	require.NoError(t, img.Close())

	assert.True(t, img.Closed())
	assert.Equal(t, 1, stub.freed[handle])
	assert.Equal(t, 0, img.Width())
	assert.Nil(t, img.Pixels())
}

func TestResizeToSameSizeIsIndependent(t *testing.T) {

	lib, stub := newTestLibrary(t)

	src, err := lib.LoadImageColor(tempFile(t, "horses.jpg"), 0, 0)
	require.NoError(t, err)

	dst, err := src.Resize(src.Width(), src.Height())
	require.NoError(t, err)

	srcHandle := unsafe.Pointer(src.handle)
	dstHandle := unsafe.Pointer(dst.handle)

	assert.NotEqual(t, srcHandle, dstHandle)
	assert.Equal(t, src.Width(), dst.Width())
	assert.Equal(t, src.Height(), dst.Height())

	// the source remains usable after the resize
	assert.False(t, src.Closed())
	assert.Len(t, src.Pixels(), src.Width()*src.Height()*3)

	require.NoError(t, dst.Close())
	assert.False(t, src.Closed())
	require.NoError(t, src.Close())

	assert.Equal(t, 1, stub.freed[srcHandle])
	assert.Equal(t, 1, stub.freed[dstHandle])
	assert.Equal(t, 2, stub.calls["FreeImage"])
}

func TestDeriveImageErrors(t *testing.T) {

	lib, stub := newTestLibrary(t)

	img, err := lib.NewImage(16, 8, 3)
	require.NoError(t, err)

	_, err = img.Resize(0, 8)
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	_, err = img.Letterbox(16, -1)
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	boxed, err := img.Letterbox(32, 32)
	require.NoError(t, err)
	assert.Equal(t, 32, boxed.Width())
	require.NoError(t, boxed.Close())

	require.NoError(t, img.Close())

	_, err = img.Resize(8, 8)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrClosed)

	var nilImg *Image

	_, err = nilImg.Resize(8, 8)
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	assert.Equal(t, 0, stub.calls["ResizeImage"])
	assert.Equal(t, 1, stub.calls["LetterboxImage"])
}

func TestNewImageValidates(t *testing.T) {

	lib, stub := newTestLibrary(t)

	_, err := lib.NewImage(0, 8, 3)
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
	assert.Equal(t, 0, stub.calls["MakeImage"])
}

func TestImageSave(t *testing.T) {

	lib, stub := newTestLibrary(t)

	img, err := lib.NewImage(8, 8, 3)
	require.NoError(t, err)
	defer img.Close()

	require.NoError(t, img.Save("predictions"))
	assert.Equal(t, "predictions", stub.lastSave)

	err = img.Save("pred\x00ictions")
	require.Error(t, err)
	assert.True(t, IsMarshalError(err))

	var saveErr *Error
	require.ErrorAs(t, err, &saveErr)
	assert.Equal(t, "Save", saveErr.Op)
	assert.Contains(t, err.Error(), "basename")

	err = img.Save("")
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	assert.Equal(t, 1, stub.calls["SaveImage"])
}
