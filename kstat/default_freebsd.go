//go:build freebsd

package kstat

import "github.com/go-logr/logr"

// NewSource returns the counter source of the running platform.
func NewSource(logger logr.Logger) Source {
	return NewSysctlSource(nil, logger)
}
