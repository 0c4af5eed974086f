package darknet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCPUCoreMask(t *testing.T) {
	assert.Equal(t, uintptr(0b11110000), CPUCoreMask([]int{4, 5, 6, 7}))
	assert.Equal(t, uintptr(0), CPUCoreMask(nil))
}

func TestParseCoreList(t *testing.T) {

	tests := []struct {
		list string
		mask uintptr
	}{
		{"0", 0b1},
		{"0-3", 0b1111},
		{"0-1, 4,6-7", 0b11010011},
		{"2,2", 0b100},
	}

	for _, tc := range tests {
		mask, err := ParseCoreList(tc.list)
		require.NoError(t, err, tc.list)
		assert.Equal(t, tc.mask, mask, tc.list)
	}

	for _, bad := range []string{"", " , ", "a", "3-1", "1-x", "-1", "4096"} {
		_, err := ParseCoreList(bad)
		assert.True(t, IsInvalidArgument(err), bad)
	}
}

func TestCPUAffinityRoundTrip(t *testing.T) {

	mask, err := GetCPUAffinity()

	if err != nil {
		// the kernel rejects a single word mask on hosts with more cores
		t.Skipf("CPU affinity not readable: %v", err)
	}

	require.NotZero(t, mask)

	// setting the current mask again leaves the process unchanged
	require.NoError(t, SetCPUAffinity(mask))

	assert.True(t, IsInvalidArgument(SetCPUAffinity(0)))
}

func TestSetCPUAffinityAppliesToAllThreads(t *testing.T) {

	orig, err := GetCPUAffinity()

	if err != nil {
		t.Skipf("CPU affinity not readable: %v", err)
	}

	// restrict to the lowest core currently allowed
	single := orig & -orig

	require.NoError(t, SetCPUAffinity(single))
	defer func() { require.NoError(t, SetCPUAffinity(orig)) }()

	tids, err := threadIDs()
	require.NoError(t, err)
	require.NotEmpty(t, tids)

	for _, tid := range tids {
		mask, errno := threadAffinity(tid)

		if errno != 0 {
			// thread exited after being listed
			continue
		}

		assert.Equal(t, single, mask, "thread %d", tid)
	}
}
