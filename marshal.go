package darknet

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
)

// CString is a NUL terminated copy of Go text owned by Go memory.  The native
// engine may only use it while the CString value is alive, so callers bind it
// to a named variable that outlives the engine call.
type CString []byte

// NewCString converts s into a CString.  It fails with a MarshalError when s
// contains a NUL byte as that can not be represented in a C string.
func NewCString(s string) (CString, error) {

	if i := strings.IndexByte(s, 0); i >= 0 {
		return nil, newError(MarshalError, "NewCString",
			errors.Errorf("text %q contains a NUL byte at offset %d", s, i))
	}

	cs := make(CString, len(s)+1)
	copy(cs, s)

	return cs, nil
}

// NewCStrings converts every element of list into a CString
func NewCStrings(list []string) ([]CString, error) {

	out := make([]CString, len(list))

	for i, s := range list {
		cs, err := NewCString(s)

		if err != nil {
			return nil, newError(MarshalError, "NewCStrings",
				errors.Wrapf(err, "element %d", i))
		}

		out[i] = cs
	}

	return out, nil
}

// String returns the text without its NUL terminator
func (c CString) String() string {

	if i := bytes.IndexByte(c, 0); i >= 0 {
		return string(c[:i])
	}

	return string(c)
}

// IsNull reports whether c is the native NULL sentinel
func (c CString) IsNull() bool {
	return c == nil
}
