package darknet

import (
	"runtime"
	"sort"

	"github.com/pkg/errors"
)

const (
	// DefaultThreshold is the default confidence threshold
	DefaultThreshold = 0.5
	// DefaultHierThreshold is the default hierarchical threshold used by
	// YOLO9000 style tree classifiers
	DefaultHierThreshold = 0.5
	// DefaultNMSThreshold is the default NMS (Non-maximum Suppression) threshold
	DefaultNMSThreshold = 0.45
)

// BoxOptions are the parameters of ExtractBoxes
type BoxOptions struct {
	// Width and Height of the image the network was run on, boxes are
	// scaled back to these dimensions
	Width  int
	Height int
	// Threshold is the minimum objectness for a box to be kept
	Threshold float32
	// HierThreshold is the threshold used for hierarchical classifiers
	HierThreshold float32
	// Map optionally remaps class indexes, nil for none.  darknet reads one
	// entry per class of the output layer, so it must be at least that long
	// and every entry must be a valid class index.
	Map []int32
	// Relative returns box coordinates relative to the image size instead
	// of pixels
	Relative bool
}

// Detections wraps a native detection array together with its count
type Detections struct {
	lib *Library
	// handle is the native detection*, nil once closed
	handle DetectionsHandle
	// count is the current logical number of detections, NMS may reduce it
	count int
	// image size and coordinate mode the boxes were extracted with
	width    int
	height   int
	relative bool
}

// ExtractBoxes wraps get_network_boxes and returns the boxes found by the
// last Predict call
func (n *Network) ExtractBoxes(opts BoxOptions) (*Detections, error) {

	const op = "ExtractBoxes"

	if n.handle == nil {
		return nil, closedError(op)
	}

	if opts.Width < 1 || opts.Height < 1 {
		return nil, invalidArgf(op, "image dimensions must be positive, got %dx%d",
			opts.Width, opts.Height)
	}

	if opts.Threshold < 0 || opts.HierThreshold < 0 {
		return nil, invalidArgf(op, "thresholds must not be negative, got %v and %v",
			opts.Threshold, opts.HierThreshold)
	}

	for i, class := range opts.Map {
		if class < 0 {
			return nil, invalidArgf(op, "class map entry %d is negative, got %d", i, class)
		}
	}

	h, count := n.lib.engine.GetNetworkBoxes(n.handle, opts.Width, opts.Height,
		opts.Threshold, opts.HierThreshold, opts.Map, opts.Relative)
	runtime.KeepAlive(opts.Map)

	if h == nil {
		if count != 0 {
			return nil, newError(LoadError, op,
				errors.Errorf("darknet returned no detections array for %d boxes", count))
		}

		// zero boxes, keep a closed wrapper so callers need no special case
		count = 0
	}

	return &Detections{
		lib:      n.lib,
		handle:   h,
		count:    count,
		width:    opts.Width,
		height:   opts.Height,
		relative: opts.Relative,
	}, nil
}

// Len returns the current logical number of detections
func (d *Detections) Len() int {
	return d.count
}

// Closed reports whether the detections have been released
func (d *Detections) Closed() bool {
	return d.handle == nil
}

// SuppressOverlaps wraps do_nms_obj and discards overlapping detections in
// place.  The logical count reported by darknet afterwards is kept and used
// by every later operation, including Close.
func (d *Detections) SuppressOverlaps(numClasses int, threshold float32) error {

	const op = "SuppressOverlaps"

	if numClasses < 1 {
		return invalidArgf(op, "number of classes must be positive, got %d", numClasses)
	}

	if threshold < 0 {
		return invalidArgf(op, "NMS threshold must not be negative, got %v", threshold)
	}

	if d.handle == nil {
		if d.count == 0 {
			return nil
		}

		return closedError(op)
	}

	d.count = d.lib.engine.DoNMSObj(d.handle, d.count, numClasses, threshold)
	return nil
}

// Annotate wraps draw_detections and draws every detection above threshold
// onto img using the class names and glyph alphabet given.  The detections
// are not modified.
func (d *Detections) Annotate(img *Image, threshold float32, names *NameList,
	alphabet *Alphabet, numClasses int) error {

	const op = "Annotate"

	if err := img.check(op); err != nil {
		return err
	}

	// boxes and labels are drawn into the red, green and blue planes
	if c := img.Channels(); c < 3 {
		return invalidArgf(op, "image must have at least 3 channels, got %d", c)
	}

	if threshold < 0 {
		return invalidArgf(op, "threshold must not be negative, got %v", threshold)
	}

	if numClasses < 1 {
		return invalidArgf(op, "number of classes must be positive, got %d", numClasses)
	}

	if names == nil || names.handle == nil {
		return invalidArgf(op, "name list is nil or closed")
	}

	if names.Len() < numClasses {
		return invalidArgf(op, "name list has %d labels for %d classes",
			names.Len(), numClasses)
	}

	if alphabet == nil || alphabet.handle == nil {
		return invalidArgf(op, "alphabet is nil or closed")
	}

	if d.handle == nil {
		if d.count == 0 {
			return nil
		}

		return closedError(op)
	}

	d.lib.engine.DrawDetections(img.handle, d.handle, d.count, threshold,
		names.handle, alphabet.handle, numClasses)

	// the label storage backs the native name array for the whole call
	runtime.KeepAlive(names)

	return nil
}

// Close wraps free_detections using the current logical count.  Only the
// first call releases, subsequent calls do nothing.
func (d *Detections) Close() error {

	if d.handle == nil {
		return nil
	}

	d.lib.engine.FreeDetections(d.handle, d.count)
	d.handle = nil

	return nil
}

// BoxRect are the pixel dimensions of the bounding box of a detected object
type BoxRect struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Result defines the attributes of a single object detected
type Result struct {
	// Class is the index of the class in the names list
	Class int
	// Name of the class, empty when no names were given
	Name string
	// Probability is the confidence score of the class
	Probability float32
	// Objectness is the confidence that the box holds any object
	Objectness float32
	// Box is the bounding box in pixels of the image the boxes were
	// extracted for
	Box BoxRect
	// X, Y, W, H is the box as reported by darknet, centre and size
	X, Y, W, H float32
}

// Results copies every detection with a class probability above threshold
// out of native memory, ordered by descending probability.  A detection
// above threshold for several classes yields one Result per class.
func (d *Detections) Results(threshold float32, names []string) []Result {

	results := make([]Result, 0)

	if d.handle == nil {
		return results
	}

	for i := 0; i < d.count; i++ {
		rec := d.lib.engine.Detection(d.handle, i)

		for class, prob := range rec.Prob {
			if prob <= threshold {
				continue
			}

			res := Result{
				Class:       class,
				Probability: prob,
				Objectness:  rec.Objectness,
				Box:         d.pixelBox(rec),
				X:           rec.X,
				Y:           rec.Y,
				W:           rec.W,
				H:           rec.H,
			}

			if class < len(names) {
				res.Name = names[class]
			}

			results = append(results, res)
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Probability > results[b].Probability
	})

	return results
}

// pixelBox converts a detection centre box into pixel edges clamped to the
// image the same way draw_detections does
func (d *Detections) pixelBox(rec DetectionRecord) BoxRect {

	x, y, w, h := rec.X, rec.Y, rec.W, rec.H

	if d.relative {
		x *= float32(d.width)
		w *= float32(d.width)
		y *= float32(d.height)
		h *= float32(d.height)
	}

	return BoxRect{
		Left:   clampInt(int(x-w/2), 0, d.width-1),
		Right:  clampInt(int(x+w/2), 0, d.width-1),
		Top:    clampInt(int(y-h/2), 0, d.height-1),
		Bottom: clampInt(int(y+h/2), 0, d.height-1),
	}
}

// clampInt restricts val to be within the range min and max
func clampInt(val, min, max int) int {

	if val < min {
		return min
	}

	if val > max {
		return max
	}

	return val
}

// DetectOptions are the parameters of Detect
type DetectOptions struct {
	Threshold     float32
	HierThreshold float32
	// NMSThreshold of 0 skips non-maximum suppression
	NMSThreshold float32
	// Classes is the number of classes the network was trained on
	Classes int
	// Map remaps class indexes as BoxOptions.Map, when Classes is set it
	// must hold Classes entries each below Classes
	Map      []int32
	Relative bool
}

// Detect runs the network on img and returns the boxes found after
// non-maximum suppression.  It is Predict, ExtractBoxes and SuppressOverlaps
// called in that order.
func (n *Network) Detect(img *Image, opts DetectOptions) (*Detections, error) {

	if opts.NMSThreshold < 0 {
		return nil, invalidArgf("Detect",
			"NMS threshold must not be negative, got %v", opts.NMSThreshold)
	}

	if opts.NMSThreshold > 0 && opts.Classes < 1 {
		return nil, invalidArgf("Detect",
			"number of classes must be positive for NMS, got %d", opts.Classes)
	}

	if opts.Map != nil && opts.Classes > 0 {
		if len(opts.Map) < opts.Classes {
			return nil, invalidArgf("Detect",
				"class map has %d entries for %d classes", len(opts.Map), opts.Classes)
		}

		for i, class := range opts.Map {
			if class < 0 || int(class) >= opts.Classes {
				return nil, invalidArgf("Detect",
					"class map entry %d is %d, outside %d classes", i, class, opts.Classes)
			}
		}
	}

	if err := n.Predict(img); err != nil {
		return nil, err
	}

	dets, err := n.ExtractBoxes(BoxOptions{
		Width:         img.Width(),
		Height:        img.Height(),
		Threshold:     opts.Threshold,
		HierThreshold: opts.HierThreshold,
		Map:           opts.Map,
		Relative:      opts.Relative,
	})

	if err != nil {
		return nil, err
	}

	if opts.NMSThreshold > 0 {
		if err := dets.SuppressOverlaps(opts.Classes, opts.NMSThreshold); err != nil {
			dets.Close()
			return nil, err
		}
	}

	return dets, nil
}
