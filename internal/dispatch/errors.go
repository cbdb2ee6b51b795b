package dispatch

import "errors"

var (
	// ErrPipelineDisabled — выключенный pipeline нельзя запускать.
	ErrPipelineDisabled = errors.New("pipeline is disabled")
)
