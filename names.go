package darknet

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NameList owns the class labels passed to darknet as a char** array.  The
// converted labels are kept alongside the native array derived from them so
// every pointer in the array stays valid until Close.
type NameList struct {
	lib *Library
	// labels is the storage the native array points into
	labels []CString
	// handle is the native array, nil once closed
	handle NamesHandle
}

// LoadNames converts labels into a native name list.  It fails with a
// MarshalError if any label contains a NUL byte.  Close releases the native
// array, a list dropped without Close leaks it.
func (l *Library) LoadNames(labels []string) (*NameList, error) {

	cLabels, err := NewCStrings(labels)

	if err != nil {
		return nil, err
	}

	n := &NameList{
		lib:    l,
		labels: cLabels,
	}

	n.handle = l.engine.NewNameArray(n.labels)

	if n.handle == nil {
		return nil, newError(LoadError, "LoadNames",
			errors.Errorf("darknet returned no name array for %d labels", len(labels)))
	}

	l.log.Debug("loaded names", zap.Int("count", len(labels)))

	return n, nil
}

// LoadNamesFile reads a darknet .names file and converts it into a native
// name list
func (l *Library) LoadNamesFile(file string) (*NameList, error) {

	labels, err := LoadLabels(file)

	if err != nil {
		return nil, newError(LoadError, "LoadNamesFile", err)
	}

	return l.LoadNames(labels)
}

// Len returns the number of labels
func (n *NameList) Len() int {
	return len(n.labels)
}

// Labels returns a copy of the labels
func (n *NameList) Labels() []string {

	out := make([]string, len(n.labels))

	for i, cs := range n.labels {
		out[i] = cs.String()
	}

	return out
}

// Close releases the native array and then the label storage.  Only the
// first call releases, subsequent calls do nothing.
func (n *NameList) Close() error {

	if n.handle == nil {
		return nil
	}

	n.lib.engine.FreeNameArray(n.handle)
	n.handle = nil
	n.labels = nil

	return nil
}
