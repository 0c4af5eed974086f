package darknet

import "unsafe"

// Opaque references to resources owned by the native engine.  A nil handle
// is the native failure sentinel.
type (
	NetworkHandle    unsafe.Pointer
	ImageHandle      unsafe.Pointer
	DetectionsHandle unsafe.Pointer
	MetadataHandle   unsafe.Pointer
	AlphabetHandle   unsafe.Pointer
	NamesHandle      unsafe.Pointer
)

// DetectionRecord is a copy of a single native detection struct
type DetectionRecord struct {
	// X, Y is the box centre and W, H its size, either relative to the image
	// or in pixels depending on how the boxes were extracted
	X, Y, W, H float32
	// Objectness is the confidence that the box contains any object
	Objectness float32
	// Prob holds the per class probabilities
	Prob []float32
}

// Engine is the fixed C boundary of libdarknet.  Every method maps onto one
// native function, or a small helper around one, and runs to completion on
// the calling goroutine.  CString arguments are only valid for the duration
// of the call, a nil CString is passed to darknet as NULL.
type Engine interface {
	// LoadNetwork wraps load_network
	LoadNetwork(cfg, weights CString, clear bool) NetworkHandle
	// FreeNetwork wraps free_network
	FreeNetwork(net NetworkHandle)
	// SetBatchNetwork wraps set_batch_network
	SetBatchNetwork(net NetworkHandle, batch int)
	// ForwardNetwork wraps forward_network
	ForwardNetwork(net NetworkHandle)
	// BackwardNetwork wraps backward_network
	BackwardNetwork(net NetworkHandle)
	// UpdateNetwork wraps update_network
	UpdateNetwork(net NetworkHandle)
	// NetworkPredictImage wraps network_predict_image
	NetworkPredictImage(net NetworkHandle, img ImageHandle)
	// NetworkSize returns the input width, height and channel count of the
	// network
	NetworkSize(net NetworkHandle) (width, height, channels int)

	// LoadImageColor wraps load_image_color
	LoadImageColor(path CString, width, height int) ImageHandle
	// MakeImage wraps make_image
	MakeImage(width, height, channels int) ImageHandle
	// ResizeImage wraps resize_image, the source image is left untouched
	ResizeImage(img ImageHandle, width, height int) ImageHandle
	// LetterboxImage wraps letterbox_image
	LetterboxImage(img ImageHandle, width, height int) ImageHandle
	// SaveImage wraps save_image, darknet appends the file extension
	SaveImage(img ImageHandle, name CString)
	// ImageSize returns the image dimensions
	ImageSize(img ImageHandle) (width, height, channels int)
	// ImageData returns a view over the native CHW pixel buffer
	ImageData(img ImageHandle) []float32
	// FreeImage wraps free_image
	FreeImage(img ImageHandle)

	// GetNetworkBoxes wraps get_network_boxes and returns the detections
	// together with their count
	GetNetworkBoxes(net NetworkHandle, width, height int, thresh, hier float32,
		mapping []int32, relative bool) (DetectionsHandle, int)
	// DoNMSObj wraps do_nms_obj and returns the logical count of detections
	// after suppression
	DoNMSObj(dets DetectionsHandle, total, classes int, thresh float32) int
	// DrawDetections wraps draw_detections
	DrawDetections(img ImageHandle, dets DetectionsHandle, num int, thresh float32,
		names NamesHandle, alphabet AlphabetHandle, classes int)
	// Detection copies the detection at index out of native memory
	Detection(dets DetectionsHandle, index int) DetectionRecord
	// FreeDetections wraps free_detections
	FreeDetections(dets DetectionsHandle, num int)

	// GetMetadata wraps get_metadata
	GetMetadata(path CString) MetadataHandle
	// MetadataClasses returns the number of classes in the metadata
	MetadataClasses(meta MetadataHandle) int
	// MetadataNames copies the class names out of the metadata
	MetadataNames(meta MetadataHandle) []string
	// FreeMetadata releases the class names array of the metadata
	FreeMetadata(meta MetadataHandle)

	// LoadAlphabet wraps load_alphabet
	LoadAlphabet() AlphabetHandle
	// FreeAlphabet releases every glyph image loaded by LoadAlphabet
	FreeAlphabet(alphabet AlphabetHandle)

	// NewNameArray builds a char** array for labels, either pointing into
	// them or holding native copies.  The labels storage must stay alive
	// until FreeNameArray is called.
	NewNameArray(labels []CString) NamesHandle
	// FreeNameArray releases the array built by NewNameArray
	FreeNameArray(names NamesHandle)
}
