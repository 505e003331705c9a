package core

import (
	"errors"
)

var (
	ErrInvalidCascadeCount    = errors.New("cascade count out of range")
	ErrInvalidPartition       = errors.New("cascade partition out of range")
	ErrNonMonotonicPartitions = errors.New("cascade partitions must be non-decreasing")
	ErrInvalidBufferSize      = errors.New("shadow buffer size must be positive")
	ErrInvalidBlurSize        = errors.New("pcf blur size must not be negative")
	ErrInvalidCameraRange     = errors.New("camera near/far range is invalid")
	ErrUnknownFit             = errors.New("unknown fit mode")
	ErrInvalidLogLevel        = errors.New("invalid log level")
	ErrWatcherClosed          = errors.New("watcher already closed")
)
