package darknet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCString(t *testing.T) {

	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"plain path", "cfg/yolov3.cfg", false},
		{"empty", "", false},
		{"utf8", "données/chat.jpg", false},
		{"embedded nul", "cfg/yolo\x00v3.cfg", true},
		{"leading nul", "\x00", true},
		{"trailing nul", "weights\x00", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cs, err := NewCString(tc.in)

			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, IsMarshalError(err))
				assert.Equal(t, MarshalError, KindOf(err))
				assert.Nil(t, cs)
				return
			}

			require.NoError(t, err)
			require.Len(t, cs, len(tc.in)+1)
			assert.Equal(t, byte(0), cs[len(cs)-1])
			assert.Equal(t, tc.in, cs.String())
			assert.False(t, cs.IsNull())
		})
	}
}

func TestNewCStringsReportsElement(t *testing.T) {

	_, err := NewCStrings([]string{"cat", "dog", "b\x00ad"})

	require.Error(t, err)
	assert.True(t, IsMarshalError(err))
	assert.Contains(t, err.Error(), "element 2")
}

func TestNewCStringsCopiesText(t *testing.T) {

	labels := []string{"cat", "dog"}

	cs, err := NewCStrings(labels)
	require.NoError(t, err)

	labels[0] = "cow"

	assert.Equal(t, "cat", cs[0].String())
	assert.Equal(t, "dog", cs[1].String())
}

func TestNullCString(t *testing.T) {

	var cs CString

	assert.True(t, cs.IsNull())
	assert.Equal(t, "", cs.String())
}
