package darknet

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// LoadLabels reads the class labels the network was trained on from a
// darknet .names file
func LoadLabels(file string) ([]string, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, errors.Wrap(err, "error opening labels file")
	}

	defer f.Close()

	labels, err := ReadLabels(f)

	if err != nil {
		return nil, errors.Wrapf(err, "error reading labels file %s", file)
	}

	return labels, nil
}

// ReadLabels reads one class label per line from r.  Surrounding whitespace
// is trimmed and blank lines are skipped, so the label index is the class id
// as long as the file has no blank lines between classes.
func ReadLabels(r io.Reader) ([]string, error) {

	var labels []string

	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			labels = append(labels, line)
		}
	}

	return labels, errors.WithStack(scanner.Err())
}
