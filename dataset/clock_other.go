//go:build !linux && !freebsd

package dataset

import "time"

// processStart stands in for boot time where no uptime clock is available.
var processStart = time.Now()

func (SystemClock) Now() (time.Duration, error) {
	return time.Since(processStart), nil
}

func (SystemClock) Uptime() (time.Duration, error) {
	return time.Since(processStart), nil
}
