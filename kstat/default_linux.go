//go:build linux

package kstat

import "github.com/go-logr/logr"

// NewSource returns the counter source of the running platform.
func NewSource(logger logr.Logger) Source {
	return NewProcfsSource(DefaultProcfsRoot, logger)
}
