//go:build linux

package dataset

import (
	"time"

	"golang.org/x/sys/unix"
)

func (SystemClock) Now() (time.Duration, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0, clockError(err, "monotonic")
	}
	return time.Duration(ts.Nano()), nil
}

// Uptime uses CLOCK_BOOTTIME so time spent suspended counts, as it does for the
// kernel's counters.
func (SystemClock) Uptime() (time.Duration, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_BOOTTIME, &ts); err != nil {
		return 0, clockError(err, "boot")
	}
	return time.Duration(ts.Nano()), nil
}
