package darknet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// stubEngine is an in-memory Engine counting every native call
type stubEngine struct {
	// calls counts native calls by function name
	calls map[string]int
	// freed counts release calls per handle
	freed map[unsafe.Pointer]int

	// failLoads makes every load return the null sentinel
	failLoads bool
	// boxes is the count returned by GetNetworkBoxes
	boxes int
	// nmsCount is the count reported after NMS, negative keeps the total
	nmsCount int

	// lastCfg and lastWeights record the paths given to LoadNetwork
	lastCfg     string
	lastWeights CString
	// lastMap records the class map given to GetNetworkBoxes
	lastMap []int32
	// lastSave records the name given to SaveImage
	lastSave string
	// freeDetectionCounts records the count passed to each FreeDetections
	freeDetectionCounts []int
	// drawnNames records the labels read through the name array by
	// DrawDetections
	drawnNames []string
	// drawnCount records the count passed to DrawDetections
	drawnCount int
}

type stubNetwork struct {
	w, h, c int
	batch   int
}

type stubImage struct {
	w, h, c int
	data    []float32
}

type stubDetections struct {
	recs []DetectionRecord
}

type stubMetadata struct {
	names []string
}

type stubAlphabet struct {
	glyphs int
}

// stubNames holds the label addresses the way C would, as raw addresses
// that do not keep the Go storage alive
type stubNames struct {
	addrs []uintptr
}

func newStubEngine() *stubEngine {
	return &stubEngine{
		calls:    make(map[string]int),
		freed:    make(map[unsafe.Pointer]int),
		boxes:    5,
		nmsCount: -1,
	}
}

// totalCalls returns the number of native calls made
func (s *stubEngine) totalCalls() int {

	total := 0

	for _, n := range s.calls {
		total += n
	}

	return total
}

func (s *stubEngine) release(name string, p unsafe.Pointer) {
	s.calls[name]++
	s.freed[p]++
}

func (s *stubEngine) LoadNetwork(cfg, weights CString, clear bool) NetworkHandle {

	s.calls["LoadNetwork"]++
	s.lastCfg = cfg.String()
	s.lastWeights = weights

	if s.failLoads {
		return nil
	}

	return NetworkHandle(unsafe.Pointer(&stubNetwork{w: 416, h: 416, c: 3, batch: 1}))
}

func (s *stubEngine) FreeNetwork(net NetworkHandle) {
	s.release("FreeNetwork", unsafe.Pointer(net))
}

func (s *stubEngine) SetBatchNetwork(net NetworkHandle, batch int) {
	s.calls["SetBatchNetwork"]++
	(*stubNetwork)(unsafe.Pointer(net)).batch = batch
}

func (s *stubEngine) ForwardNetwork(net NetworkHandle)  { s.calls["ForwardNetwork"]++ }
func (s *stubEngine) BackwardNetwork(net NetworkHandle) { s.calls["BackwardNetwork"]++ }
func (s *stubEngine) UpdateNetwork(net NetworkHandle)   { s.calls["UpdateNetwork"]++ }

func (s *stubEngine) NetworkPredictImage(net NetworkHandle, img ImageHandle) {
	s.calls["NetworkPredictImage"]++
}

func (s *stubEngine) NetworkSize(net NetworkHandle) (int, int, int) {
	n := (*stubNetwork)(unsafe.Pointer(net))
	return n.w, n.h, n.c
}

func (s *stubEngine) newImage(w, h, c int) ImageHandle {
	return ImageHandle(unsafe.Pointer(&stubImage{
		w: w, h: h, c: c,
		data: make([]float32, w*h*c),
	}))
}

func (s *stubEngine) LoadImageColor(path CString, width, height int) ImageHandle {

	s.calls["LoadImageColor"]++

	if s.failLoads {
		return nil
	}

	if width == 0 || height == 0 {
		width, height = 640, 480
	}

	return s.newImage(width, height, 3)
}

func (s *stubEngine) MakeImage(width, height, channels int) ImageHandle {
	s.calls["MakeImage"]++
	return s.newImage(width, height, channels)
}

func (s *stubEngine) ResizeImage(img ImageHandle, width, height int) ImageHandle {
	s.calls["ResizeImage"]++
	return s.newImage(width, height, (*stubImage)(unsafe.Pointer(img)).c)
}

func (s *stubEngine) LetterboxImage(img ImageHandle, width, height int) ImageHandle {
	s.calls["LetterboxImage"]++
	return s.newImage(width, height, (*stubImage)(unsafe.Pointer(img)).c)
}

func (s *stubEngine) SaveImage(img ImageHandle, name CString) {
	s.calls["SaveImage"]++
	s.lastSave = name.String()
}

func (s *stubEngine) ImageSize(img ImageHandle) (int, int, int) {
	im := (*stubImage)(unsafe.Pointer(img))
	return im.w, im.h, im.c
}

func (s *stubEngine) ImageData(img ImageHandle) []float32 {
	return (*stubImage)(unsafe.Pointer(img)).data
}

func (s *stubEngine) FreeImage(img ImageHandle) {
	s.release("FreeImage", unsafe.Pointer(img))
}

func (s *stubEngine) GetNetworkBoxes(net NetworkHandle, width, height int,
	thresh, hier float32, mapping []int32, relative bool) (DetectionsHandle, int) {

	s.calls["GetNetworkBoxes"]++
	s.lastMap = mapping

	dets := &stubDetections{recs: make([]DetectionRecord, s.boxes)}

	for i := range dets.recs {
		dets.recs[i] = DetectionRecord{
			X: 0.5, Y: 0.5, W: 0.2, H: 0.4,
			Objectness: 0.9,
			Prob:       []float32{0, 0.1 * float32(i+1), 0},
		}

		if !relative {
			dets.recs[i].X *= float32(width)
			dets.recs[i].W *= float32(width)
			dets.recs[i].Y *= float32(height)
			dets.recs[i].H *= float32(height)
		}
	}

	return DetectionsHandle(unsafe.Pointer(dets)), s.boxes
}

func (s *stubEngine) DoNMSObj(dets DetectionsHandle, total, classes int, thresh float32) int {

	s.calls["DoNMSObj"]++

	if s.nmsCount >= 0 {
		return s.nmsCount
	}

	return total
}

func (s *stubEngine) DrawDetections(img ImageHandle, dets DetectionsHandle, num int,
	thresh float32, names NamesHandle, alphabet AlphabetHandle, classes int) {

	s.calls["DrawDetections"]++
	s.drawnCount = num
	s.drawnNames = s.readNames(names)
}

// readNames dereferences the stored label addresses like C would
func (s *stubEngine) readNames(names NamesHandle) []string {

	arr := (*stubNames)(unsafe.Pointer(names))
	out := make([]string, len(arr.addrs))

	for i, addr := range arr.addrs {
		var buf []byte

		for p := addr; ; p++ {
			b := *(*byte)(unsafe.Pointer(p))

			if b == 0 {
				break
			}

			buf = append(buf, b)
		}

		out[i] = string(buf)
	}

	return out
}

func (s *stubEngine) Detection(dets DetectionsHandle, index int) DetectionRecord {
	return (*stubDetections)(unsafe.Pointer(dets)).recs[index]
}

func (s *stubEngine) FreeDetections(dets DetectionsHandle, num int) {
	s.release("FreeDetections", unsafe.Pointer(dets))
	s.freeDetectionCounts = append(s.freeDetectionCounts, num)
}

func (s *stubEngine) GetMetadata(path CString) MetadataHandle {

	s.calls["GetMetadata"]++

	if s.failLoads {
		return nil
	}

	return MetadataHandle(unsafe.Pointer(&stubMetadata{
		names: []string{"person", "bicycle", "car"},
	}))
}

func (s *stubEngine) MetadataClasses(meta MetadataHandle) int {
	return len((*stubMetadata)(unsafe.Pointer(meta)).names)
}

func (s *stubEngine) MetadataNames(meta MetadataHandle) []string {
	names := (*stubMetadata)(unsafe.Pointer(meta)).names
	return append([]string(nil), names...)
}

func (s *stubEngine) FreeMetadata(meta MetadataHandle) {
	s.release("FreeMetadata", unsafe.Pointer(meta))
}

func (s *stubEngine) LoadAlphabet() AlphabetHandle {
	s.calls["LoadAlphabet"]++
	return AlphabetHandle(unsafe.Pointer(&stubAlphabet{glyphs: 95}))
}

func (s *stubEngine) FreeAlphabet(alphabet AlphabetHandle) {
	s.release("FreeAlphabet", unsafe.Pointer(alphabet))
}

func (s *stubEngine) NewNameArray(labels []CString) NamesHandle {

	s.calls["NewNameArray"]++

	arr := &stubNames{addrs: make([]uintptr, len(labels))}

	for i, label := range labels {
		arr.addrs[i] = uintptr(unsafe.Pointer(&label[0]))
	}

	return NamesHandle(unsafe.Pointer(arr))
}

func (s *stubEngine) FreeNameArray(names NamesHandle) {
	s.release("FreeNameArray", unsafe.Pointer(names))
}

// newTestLibrary returns a Library backed by a fresh stubEngine
func newTestLibrary(t *testing.T) (*Library, *stubEngine) {
	t.Helper()

	stub := newStubEngine()
	lib, err := New(stub)
	require.NoError(t, err)

	return lib, stub
}

// tempFile creates an empty file in a test directory and returns its path
func tempFile(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte{}, 0o644))

	return path
}

// metadataFile writes a darknet .data file declaring classes together with
// the .names file it points to, holding labels one per line
func metadataFile(t *testing.T, classes int, labels ...string) string {
	t.Helper()

	dir := t.TempDir()
	names := filepath.Join(dir, "coco.names")
	require.NoError(t, os.WriteFile(names, []byte(strings.Join(labels, "\n")+"\n"), 0o644))

	data := fmt.Sprintf("# generated\nclasses= %d\ntrain  = %s\nnames = %s\n",
		classes, filepath.Join(dir, "train.txt"), names)

	path := filepath.Join(dir, "coco.data")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	return path
}
