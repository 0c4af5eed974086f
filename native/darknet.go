// Package native implements darknet.Engine against libdarknet with cgo.
package native

/*
#cgo CFLAGS: -Wno-unused-result
#cgo LDFLAGS: -ldarknet -lm -lpthread
#cgo gpu CFLAGS: -DGPU -I/usr/local/cuda/include
#cgo gpu LDFLAGS: -L/usr/local/cuda/lib64 -lcuda -lcudart -lcublas -lcurand -lstdc++
#cgo cudnn CFLAGS: -DCUDNN
#cgo cudnn LDFLAGS: -lcudnn
#cgo opencv CFLAGS: -DOPENCV
#cgo opencv pkg-config: opencv4
#include <stdlib.h>
#include "darknet.h"

// darknet passes images by value, keep a heap copy so Go can hold a pointer
static image *dn_image_box(image im) {
	image *p;
	if (!im.data) {
		return NULL;
	}
	p = malloc(sizeof(image));
	*p = im;
	return p;
}

static void dn_image_free(image *p) {
	free_image(*p);
	free(p);
}

static metadata *dn_get_metadata(char *file) {
	metadata *p = malloc(sizeof(metadata));
	*p = get_metadata(file);
	return p;
}

static void dn_free_metadata(metadata *m) {
	if (m->names) {
		free_ptrs((void **)m->names, m->classes);
	}
	free(m);
}

// name arrays are NULL terminated copies of the labels
static char **dn_make_names(int n) {
	return calloc(n + 1, sizeof(char *));
}

static void dn_set_name(char **names, int i, char *name) {
	names[i] = name;
}

static void dn_free_names(char **names) {
	char **p;
	for (p = names; *p; ++p) {
		free(*p);
	}
	free(names);
}

// load_alphabet allocates 8 sizes of 128 glyphs, loading 32 to 126
static void dn_free_alphabet(image **alphabets) {
	int i, j;
	for (j = 0; j < 8; ++j) {
		for (i = 32; i < 127; ++i) {
			free_image(alphabets[j][i]);
		}
		free(alphabets[j]);
	}
	free(alphabets);
}
*/
import "C"
import (
	"runtime"
	"unsafe"

	"github.com/swdee/go-darknet"
)

// Engine makes native calls into libdarknet
type Engine struct{}

var _ darknet.Engine = Engine{}

// NewLibrary returns a darknet Library backed by libdarknet
func NewLibrary(opts ...darknet.Option) (*darknet.Library, error) {
	return darknet.New(Engine{}, opts...)
}

// cstr returns a pointer to the first byte of cs, or NULL for a nil CString.
// The pointer is only valid while cs is alive.
func cstr(cs darknet.CString) *C.char {

	if cs == nil {
		return nil
	}

	return (*C.char)(unsafe.Pointer(&cs[0]))
}

func network(h darknet.NetworkHandle) *C.network {
	return (*C.network)(unsafe.Pointer(h))
}

func img(h darknet.ImageHandle) *C.image {
	return (*C.image)(unsafe.Pointer(h))
}

func boxImage(im C.image) darknet.ImageHandle {

	p := C.dn_image_box(im)

	if p == nil {
		return nil
	}

	return darknet.ImageHandle(unsafe.Pointer(p))
}

// LoadNetwork wraps C.load_network
func (Engine) LoadNetwork(cfg, weights darknet.CString, clear bool) darknet.NetworkHandle {

	cClear := C.int(0)

	if clear {
		cClear = 1
	}

	net := C.load_network(cstr(cfg), cstr(weights), cClear)

	runtime.KeepAlive(cfg)
	runtime.KeepAlive(weights)

	if net == nil {
		return nil
	}

	return darknet.NetworkHandle(unsafe.Pointer(net))
}

// FreeNetwork wraps C.free_network
func (Engine) FreeNetwork(net darknet.NetworkHandle) {
	C.free_network(network(net))
}

// SetBatchNetwork wraps C.set_batch_network
func (Engine) SetBatchNetwork(net darknet.NetworkHandle, batch int) {
	C.set_batch_network(network(net), C.int(batch))
}

// ForwardNetwork wraps C.forward_network
func (Engine) ForwardNetwork(net darknet.NetworkHandle) {
	C.forward_network(network(net))
}

// BackwardNetwork wraps C.backward_network
func (Engine) BackwardNetwork(net darknet.NetworkHandle) {
	C.backward_network(network(net))
}

// UpdateNetwork wraps C.update_network
func (Engine) UpdateNetwork(net darknet.NetworkHandle) {
	C.update_network(network(net))
}

// NetworkPredictImage wraps C.network_predict_image, the returned output
// pointer belongs to the network and is not exposed
func (Engine) NetworkPredictImage(net darknet.NetworkHandle, im darknet.ImageHandle) {
	C.network_predict_image(network(net), *img(im))
}

// NetworkSize returns the network input dimensions
func (Engine) NetworkSize(net darknet.NetworkHandle) (int, int, int) {
	n := network(net)
	return int(n.w), int(n.h), int(n.c)
}

// LoadImageColor wraps C.load_image_color
func (Engine) LoadImageColor(path darknet.CString, width, height int) darknet.ImageHandle {

	im := C.load_image_color(cstr(path), C.int(width), C.int(height))
	runtime.KeepAlive(path)

	return boxImage(im)
}

// MakeImage wraps C.make_image
func (Engine) MakeImage(width, height, channels int) darknet.ImageHandle {
	return boxImage(C.make_image(C.int(width), C.int(height), C.int(channels)))
}

// ResizeImage wraps C.resize_image, which allocates a new image and leaves
// its input untouched
func (Engine) ResizeImage(im darknet.ImageHandle, width, height int) darknet.ImageHandle {
	return boxImage(C.resize_image(*img(im), C.int(width), C.int(height)))
}

// LetterboxImage wraps C.letterbox_image
func (Engine) LetterboxImage(im darknet.ImageHandle, width, height int) darknet.ImageHandle {
	return boxImage(C.letterbox_image(*img(im), C.int(width), C.int(height)))
}

// SaveImage wraps C.save_image
func (Engine) SaveImage(im darknet.ImageHandle, name darknet.CString) {
	C.save_image(*img(im), cstr(name))
	runtime.KeepAlive(name)
}

// ImageSize returns the image dimensions
func (Engine) ImageSize(im darknet.ImageHandle) (int, int, int) {
	p := img(im)
	return int(p.w), int(p.h), int(p.c)
}

// ImageData returns a slice header over the native pixel buffer
func (Engine) ImageData(im darknet.ImageHandle) []float32 {

	p := img(im)
	size := int(p.w) * int(p.h) * int(p.c)

	if p.data == nil || size == 0 {
		return nil
	}

	return unsafe.Slice((*float32)(unsafe.Pointer(p.data)), size)
}

// FreeImage wraps C.free_image and releases the heap copy of the image
func (Engine) FreeImage(im darknet.ImageHandle) {
	C.dn_image_free(img(im))
}

// GetNetworkBoxes wraps C.get_network_boxes
func (Engine) GetNetworkBoxes(net darknet.NetworkHandle, width, height int,
	thresh, hier float32, mapping []int32, relative bool) (darknet.DetectionsHandle, int) {

	var cMap *C.int

	if len(mapping) > 0 {
		cMap = (*C.int)(unsafe.Pointer(&mapping[0]))
	}

	cRelative := C.int(0)

	if relative {
		cRelative = 1
	}

	var num C.int

	dets := C.get_network_boxes(network(net), C.int(width), C.int(height),
		C.float(thresh), C.float(hier), cMap, cRelative, &num)
	runtime.KeepAlive(mapping)

	if dets == nil {
		return nil, int(num)
	}

	return darknet.DetectionsHandle(unsafe.Pointer(dets)), int(num)
}

// DoNMSObj wraps C.do_nms_obj.  darknet zeroes the probabilities of
// suppressed detections rather than removing them, so the logical count is
// unchanged and every entry is still released by free_detections.
func (Engine) DoNMSObj(dets darknet.DetectionsHandle, total, classes int, thresh float32) int {
	C.do_nms_obj((*C.detection)(unsafe.Pointer(dets)), C.int(total), C.int(classes),
		C.float(thresh))
	return total
}

// DrawDetections wraps C.draw_detections
func (Engine) DrawDetections(im darknet.ImageHandle, dets darknet.DetectionsHandle,
	num int, thresh float32, names darknet.NamesHandle, alphabet darknet.AlphabetHandle,
	classes int) {

	C.draw_detections(*img(im), (*C.detection)(unsafe.Pointer(dets)), C.int(num),
		C.float(thresh), (**C.char)(unsafe.Pointer(names)),
		(**C.image)(unsafe.Pointer(alphabet)), C.int(classes))
}

// Detection copies the detection at index out of the native array
func (Engine) Detection(dets darknet.DetectionsHandle, index int) darknet.DetectionRecord {

	d := unsafe.Slice((*C.detection)(unsafe.Pointer(dets)), index+1)[index]

	rec := darknet.DetectionRecord{
		X:          float32(d.bbox.x),
		Y:          float32(d.bbox.y),
		W:          float32(d.bbox.w),
		H:          float32(d.bbox.h),
		Objectness: float32(d.objectness),
	}

	if d.prob != nil && d.classes > 0 {
		prob := unsafe.Slice((*float32)(unsafe.Pointer(d.prob)), int(d.classes))
		rec.Prob = make([]float32, len(prob))
		copy(rec.Prob, prob)
	}

	return rec
}

// FreeDetections wraps C.free_detections
func (Engine) FreeDetections(dets darknet.DetectionsHandle, num int) {
	C.free_detections((*C.detection)(unsafe.Pointer(dets)), C.int(num))
}

// GetMetadata wraps C.get_metadata
func (Engine) GetMetadata(path darknet.CString) darknet.MetadataHandle {

	m := C.dn_get_metadata(cstr(path))
	runtime.KeepAlive(path)

	if m == nil {
		return nil
	}

	return darknet.MetadataHandle(unsafe.Pointer(m))
}

// MetadataClasses returns the metadata class count
func (Engine) MetadataClasses(meta darknet.MetadataHandle) int {
	return int((*C.metadata)(unsafe.Pointer(meta)).classes)
}

// MetadataNames copies the metadata class names into Go strings
func (Engine) MetadataNames(meta darknet.MetadataHandle) []string {

	m := (*C.metadata)(unsafe.Pointer(meta))

	if m.names == nil || m.classes <= 0 {
		return nil
	}

	cNames := unsafe.Slice(m.names, int(m.classes))
	names := make([]string, len(cNames))

	for i, cName := range cNames {
		if cName != nil {
			names[i] = C.GoString(cName)
		}
	}

	return names
}

// FreeMetadata releases the metadata names array
func (Engine) FreeMetadata(meta darknet.MetadataHandle) {
	C.dn_free_metadata((*C.metadata)(unsafe.Pointer(meta)))
}

// LoadAlphabet wraps C.load_alphabet
func (Engine) LoadAlphabet() darknet.AlphabetHandle {
	return darknet.AlphabetHandle(unsafe.Pointer(C.load_alphabet()))
}

// FreeAlphabet releases all glyph images
func (Engine) FreeAlphabet(alphabet darknet.AlphabetHandle) {
	C.dn_free_alphabet((**C.image)(unsafe.Pointer(alphabet)))
}

// NewNameArray copies every label into C memory and builds a NULL
// terminated char** array over the copies
func (Engine) NewNameArray(labels []darknet.CString) darknet.NamesHandle {

	names := C.dn_make_names(C.int(len(labels)))

	if names == nil {
		return nil
	}

	for i, label := range labels {
		C.dn_set_name(names, C.int(i), C.CString(label.String()))
	}

	return darknet.NamesHandle(unsafe.Pointer(names))
}

// FreeNameArray frees the label copies and the array
func (Engine) FreeNameArray(names darknet.NamesHandle) {
	C.dn_free_names((**C.char)(unsafe.Pointer(names)))
}
