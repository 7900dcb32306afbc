package dataset

import (
	"time"

	"github.com/cockroachdb/errors"
)

// ErrClock marks a failure to read the system clocks.
var ErrClock = errors.New("clock unavailable")

// Clock supplies the two time bases rates are computed against.
type Clock interface {
	// Now reads a monotonic clock. Only differences between readings matter.
	Now() (time.Duration, error)
	// Uptime is the time since boot, the interval covered by a first sample.
	Uptime() (time.Duration, error)
}

// SystemClock reads the kernel clocks of the running platform.
type SystemClock struct{}

func clockError(err error, which string) error {
	return errors.Mark(errors.Wrapf(err, "reading %s clock", which), ErrClock)
}
