package darknet

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// darknet's defaults for settings missing from a .data file
const (
	defaultDataClasses = 2
	defaultDataNames   = "data/names.list"
)

// Metadata wraps the native metadata struct read from a darknet .data file,
// holding the number of classes and their names
type Metadata struct {
	lib    *Library
	handle MetadataHandle
}

// LoadMetadata wraps get_metadata.  darknet reads and later frees "classes"
// entries of the names array, so the names file the .data file points to
// must have a line for every class, otherwise a LoadError is returned
// before darknet is called.  Relative names paths resolve against the
// working directory as they do in darknet.
func (l *Library) LoadMetadata(path string) (*Metadata, error) {

	const op = "LoadMetadata"

	cPath, err := NewCString(path)

	if err != nil {
		return nil, newError(MarshalError, op, errors.Wrap(err, "metadata path"))
	}

	if err := checkFile(op, "metadata", path); err != nil {
		return nil, err
	}

	if err := checkMetadataNames(op, path); err != nil {
		return nil, err
	}

	h := l.engine.GetMetadata(cPath)
	runtime.KeepAlive(cPath)

	if h == nil {
		return nil, newError(LoadError, op,
			errors.Errorf("darknet returned no metadata for %s", path))
	}

	m := &Metadata{lib: l, handle: h}

	l.log.Debug("loaded metadata", zap.String("path", path),
		zap.Int("classes", m.Classes()))

	return m, nil
}

// Classes returns the number of classes, or 0 if closed
func (m *Metadata) Classes() int {

	if m.handle == nil {
		return 0
	}

	return m.lib.engine.MetadataClasses(m.handle)
}

// Names returns a copy of the class names
func (m *Metadata) Names() []string {

	if m.handle == nil {
		return nil
	}

	return m.lib.engine.MetadataNames(m.handle)
}

// Close releases the native metadata.  Only the first call releases,
// subsequent calls do nothing.
func (m *Metadata) Close() error {

	if m.handle == nil {
		return nil
	}

	m.lib.engine.FreeMetadata(m.handle)
	m.handle = nil

	return nil
}

// readDataFile parses the key=value settings of a darknet .data file.
// Whitespace is stripped, lines starting with # or ; are comments and the
// first occurrence of a key wins.
func readDataFile(path string) (map[string]string, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer f.Close()

	opts := make(map[string]string)
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.Join(strings.Fields(scanner.Text()), "")

		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}

		key, val, ok := strings.Cut(line, "=")

		if !ok {
			continue
		}

		if _, seen := opts[key]; !seen {
			opts[key] = val
		}
	}

	return opts, scanner.Err()
}

// countLines counts the lines of path the way darknet's get_paths does,
// blank lines included
func countLines(path string) (int, error) {

	f, err := os.Open(path)

	if err != nil {
		return 0, err
	}

	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		lines++
	}

	return lines, scanner.Err()
}

// checkMetadataNames verifies the names file of the .data file at path
// exists and has at least as many lines as the declared classes
func checkMetadataNames(op, path string) error {

	opts, err := readDataFile(path)

	if err != nil {
		return newError(LoadError, op, errors.Wrapf(err, "error reading metadata file %s", path))
	}

	classes := defaultDataClasses

	if val, ok := opts["classes"]; ok {
		classes, err = strconv.Atoi(val)

		if err != nil {
			return newError(LoadError, op,
				errors.Errorf("metadata file %s has invalid classes %q", path, val))
		}
	}

	if classes < 1 {
		return newError(LoadError, op,
			errors.Errorf("metadata file %s declares %d classes", path, classes))
	}

	names := defaultDataNames

	if val, ok := opts["names"]; ok {
		names = val
	}

	if err := checkFile(op, "names", names); err != nil {
		return err
	}

	lines, err := countLines(names)

	if err != nil {
		return newError(LoadError, op, errors.Wrapf(err, "error reading names file %s", names))
	}

	if lines < classes {
		return newError(LoadError, op,
			errors.Errorf("metadata file %s declares %d classes but names file %s has %d lines",
				path, classes, names, lines))
	}

	return nil
}
