//go:build !linux && !freebsd

package kstat

import (
	"context"

	"github.com/go-logr/logr"
)

type unsupportedSource struct{}

func (unsupportedSource) Open(context.Context, string) (Stream, error) {
	return Stream{}, unavailable(nil)
}

// NewSource returns the counter source of the running platform.
func NewSource(logr.Logger) Source {
	return unsupportedSource{}
}
