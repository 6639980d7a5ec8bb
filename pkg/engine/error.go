package engine

import "errors"

var (
	ErrEngineStopped = errors.New("engine stopped")
)
