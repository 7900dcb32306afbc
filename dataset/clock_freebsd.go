//go:build freebsd

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

func (SystemClock) Uptime() (time.Duration, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_UPTIME, &ts); err != nil {
		return 0, clockError(err, "uptime")
	}
	return time.Duration(ts.Nano()), nil
}
