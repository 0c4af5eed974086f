package darknet

import (
	"math/bits"
	"os"
	"strconv"
	"strings"
	"syscall"
	"unsafe"

	"github.com/pkg/errors"
)

// SetCPUAffinity restricts every thread of the program to the cores in mask,
// like taskset -a.  Threads created afterwards, including darknet's worker
// threads and new Go runtime threads, inherit the mask from their creator.
func SetCPUAffinity(mask uintptr) error {

	if mask == 0 {
		return invalidArgf("SetCPUAffinity", "core mask is empty")
	}

	done := make(map[int]bool)

	// repeat until a pass finds no thread that was started during the last
	for {
		tids, err := threadIDs()

		if err != nil {
			return err
		}

		changed := false

		for _, tid := range tids {
			if done[tid] {
				continue
			}

			if errno := setThreadAffinity(tid, mask); errno != 0 && errno != syscall.ESRCH {
				return errors.Wrapf(errno, "failed to set CPU affinity of thread %d", tid)
			}

			done[tid] = true
			changed = true
		}

		if !changed {
			return nil
		}
	}
}

// GetCPUAffinity gets the CPU affinity mask of the calling thread
func GetCPUAffinity() (uintptr, error) {

	mask, errno := threadAffinity(0)

	if errno != 0 {
		return 0, errors.Wrap(errno, "failed to get CPU affinity")
	}

	return mask, nil
}

// threadIDs lists the ids of every thread of the process
func threadIDs() ([]int, error) {

	entries, err := os.ReadDir("/proc/self/task")

	if err != nil {
		return nil, errors.Wrap(err, "error listing process threads")
	}

	tids := make([]int, 0, len(entries))

	for _, entry := range entries {
		if tid, err := strconv.Atoi(entry.Name()); err == nil {
			tids = append(tids, tid)
		}
	}

	return tids, nil
}

func setThreadAffinity(tid int, mask uintptr) syscall.Errno {
	_, _, errno := syscall.RawSyscall(syscall.SYS_SCHED_SETAFFINITY, uintptr(tid),
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))
	return errno
}

// threadAffinity returns the mask of thread tid, 0 meaning the caller
func threadAffinity(tid int) (uintptr, syscall.Errno) {

	var mask uintptr

	_, _, errno := syscall.RawSyscall(syscall.SYS_SCHED_GETAFFINITY, uintptr(tid),
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	return mask, errno
}

// CPUCoreMask calculates the core mask by passing in the CPU core numbers as a
// slice, eg: []int{4,5,6,7}
func CPUCoreMask(cores []int) uintptr {

	var mask uintptr

	for _, core := range cores {
		mask |= 1 << core
	}

	return mask
}

// ParseCoreList parses a core list in the format of taskset and /proc,
// eg: "0-3,6", into a core mask
func ParseCoreList(list string) (uintptr, error) {

	var cores []int

	for _, part := range strings.Split(list, ",") {

		part = strings.TrimSpace(part)

		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")

		first, err := strconv.Atoi(lo)

		if err != nil {
			return 0, invalidArgf("ParseCoreList", "invalid core %q", part)
		}

		last := first

		if isRange {
			if last, err = strconv.Atoi(hi); err != nil || last < first {
				return 0, invalidArgf("ParseCoreList", "invalid core range %q", part)
			}
		}

		if first < 0 || last >= bits.UintSize {
			return 0, invalidArgf("ParseCoreList",
				"core numbers must be between 0 and %d, got %q", bits.UintSize-1, part)
		}

		for core := first; core <= last; core++ {
			cores = append(cores, core)
		}
	}

	if len(cores) == 0 {
		return 0, invalidArgf("ParseCoreList", "no cores given")
	}

	return CPUCoreMask(cores), nil
}
