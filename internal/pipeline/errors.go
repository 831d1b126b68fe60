package pipeline

import (
	"errors"
	"fmt"
)

// ErrEffectTimeout is wrapped by EffectApplyError when an effect exceeds the
// configured per-effect timeout.
var ErrEffectTimeout = errors.New("effect timed out")

// ErrEffectBusy is wrapped by EffectApplyError when an effect is skipped
// because its previous timed-out call has not returned yet.
var ErrEffectBusy = errors.New("effect still running")

// StreamRole tells which end of a run failed to open
type StreamRole string

const (
	RoleSource StreamRole = "source"
	RoleSink   StreamRole = "sink"
)

// StreamOpenError is returned when the input cannot be opened or the output
// cannot be created. It is fatal to the run.
type StreamOpenError struct {
	Role StreamRole
	Path string
	Err  error
}

func (e *StreamOpenError) Error() string {
	return fmt.Sprintf("cannot open %s %s: %v", e.Role, e.Path, e.Err)
}

func (e *StreamOpenError) Unwrap() error {
	return e.Err
}

// EffectApplyError reports a single failed effect application. It never
// leaves the pipeline; it is logged and the chain is reset.
type EffectApplyError struct {
	Effect string
	Err    error
}

func (e *EffectApplyError) Error() string {
	return fmt.Sprintf("effect %s: %v", e.Effect, e.Err)
}

func (e *EffectApplyError) Unwrap() error {
	return e.Err
}
