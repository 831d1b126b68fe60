package pipeline

import (
	"FrameForge/pkg/frame"
	"FrameForge/pkg/plugin"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Resolver looks effects up by name. *plugin.Registry satisfies it.
type Resolver interface {
	Lookup(name string) (plugin.Effect, bool)
}

// Outcome is the result of one effect application: either a frame or the
// reason it failed.
type Outcome struct {
	Frame frame.Frame
	Err   error
}

func success(f frame.Frame) Outcome { return Outcome{Frame: f} }

func failure(err error) Outcome { return Outcome{Err: err} }

// OK reports whether the application succeeded
func (o Outcome) OK() bool { return o.Err == nil }

// Chain applies an ordered list of named effects to single frames
type Chain struct {
	names   []string
	plugins Resolver
	timeout time.Duration
	metrics *Metrics
	logger  *zap.Logger

	// one slot per effect name bounds timed calls to a single goroutine
	slots map[string]chan struct{}
}

// NewChain creates a chain over names. timeout <= 0 disables the per-effect
// deadline.
func NewChain(names []string, plugins Resolver, timeout time.Duration, metrics *Metrics, logger *zap.Logger) *Chain {
	c := &Chain{
		names:   append([]string(nil), names...),
		plugins: plugins,
		timeout: timeout,
		metrics: metrics,
		logger:  logger,
	}
	if timeout > 0 {
		c.slots = make(map[string]chan struct{}, len(names))
		for _, name := range names {
			if _, ok := c.slots[name]; !ok {
				c.slots[name] = make(chan struct{}, 1)
			}
		}
	}
	return c
}

// Apply folds the chain over original and returns the final frame. original
// is never modified. Names without a registered effect are skipped. When an
// effect fails the accumulator goes back to original, discarding every
// earlier effect of this frame, and the chain continues.
func (c *Chain) Apply(original frame.Frame) frame.Frame {
	working := original.Clone()
	for _, name := range c.names {
		effect, ok := c.plugins.Lookup(name)
		if !ok {
			continue
		}

		outcome := c.attempt(name, effect, working)
		if !outcome.OK() {
			c.logger.Warn("Effect failed, reverting to original frame",
				zap.String("effect", name),
				zap.Error(outcome.Err))
			working = original.Clone()
			continue
		}
		working = outcome.Frame
	}
	return working
}

// attempt runs one effect and normalizes its output to three channels
func (c *Chain) attempt(name string, effect plugin.Effect, in frame.Frame) Outcome {
	start := time.Now()
	out, err := c.invoke(name, effect, in)
	if err == nil {
		out, err = normalize(in, out)
	}
	c.metrics.effectDone(name, time.Since(start), err)

	if err != nil {
		return failure(&EffectApplyError{Effect: name, Err: err})
	}
	return success(out)
}

// invoke applies effect, bounded by the chain timeout when one is set. A
// timed-out call keeps its slot until it returns, and the effect is skipped
// in the meantime so it is never entered concurrently.
func (c *Chain) invoke(name string, effect plugin.Effect, in frame.Frame) (frame.Frame, error) {
	if c.timeout <= 0 {
		return safeApply(effect, in)
	}

	slot, ok := c.slots[name]
	if !ok {
		slot = make(chan struct{}, 1)
		c.slots[name] = slot
	}
	select {
	case slot <- struct{}{}:
	default:
		return frame.Frame{}, ErrEffectBusy
	}

	type result struct {
		f   frame.Frame
		err error
	}
	done := make(chan result, 1)
	go func() {
		f, err := safeApply(effect, in)
		// release before reporting so the next call finds the slot free
		<-slot
		done <- result{f, err}
	}()

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	select {
	case r := <-done:
		return r.f, r.err
	case <-timer.C:
		// the call keeps its slot until it returns; its result is discarded
		return frame.Frame{}, fmt.Errorf("%w after %s", ErrEffectTimeout, c.timeout)
	}
}

// safeApply converts a panicking effect into an error
func safeApply(effect plugin.Effect, in frame.Frame) (out frame.Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = frame.Frame{}, fmt.Errorf("panic: %v", r)
		}
	}()
	return effect.ApplyEffect(in)
}

// normalize validates an effect result and re-expands single-channel output.
// The decision is made on the channel count alone.
func normalize(in, out frame.Frame) (frame.Frame, error) {
	if err := out.Validate(); err != nil {
		return frame.Frame{}, err
	}
	if !frame.SameGeometry(in, out) {
		return frame.Frame{}, fmt.Errorf("%w: effect changed geometry from %dx%d to %dx%d",
			frame.ErrInvalidShape, in.Width, in.Height, out.Width, out.Height)
	}
	if out.IsGray() {
		return frame.GrayToBGR(out)
	}
	return out, nil
}
