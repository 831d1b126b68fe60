package pipeline

import (
	"FrameForge/pkg/frame"
	"FrameForge/pkg/plugin"
	"FrameForge/pkg/plugin/blur"
	"FrameForge/pkg/plugin/grayscale"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func addConst(v byte) plugin.Effect {
	return plugin.EffectFunc(func(f frame.Frame) (frame.Frame, error) {
		out := f.Clone()
		for i := range out.Pix {
			out.Pix[i] += v
		}
		return out, nil
	})
}

func failing(msg string) plugin.Effect {
	return plugin.EffectFunc(func(frame.Frame) (frame.Frame, error) {
		return frame.Frame{}, errors.New(msg)
	})
}

func testFrame() frame.Frame {
	f := frame.New(6, 4, frame.BGR)
	for i := range f.Pix {
		f.Pix[i] = byte(i * 3)
	}
	return f
}

func registry(entries map[string]plugin.Effect) *plugin.Registry {
	list := make([]plugin.Entry, 0, len(entries))
	for name, effect := range entries {
		list = append(list, plugin.Entry{Module: name, TypeName: name + "Plugin", Effect: effect})
	}
	return plugin.NewRegistry(list...)
}

func newTestChain(names []string, plugins Resolver) *Chain {
	return NewChain(names, plugins, 0, nil, zap.NewNop())
}

func TestChainAppliesInOrder(t *testing.T) {
	double := plugin.EffectFunc(func(f frame.Frame) (frame.Frame, error) {
		out := f.Clone()
		for i := range out.Pix {
			out.Pix[i] *= 2
		}
		return out, nil
	})
	r := registry(map[string]plugin.Effect{"add": addConst(1), "double": double})
	f := frame.Frame{Width: 1, Height: 1, Channels: frame.BGR, Pix: []byte{1, 2, 3}}

	assert.Equal(t, []byte{4, 6, 8}, newTestChain([]string{"add", "double"}, r).Apply(f).Pix)
	assert.Equal(t, []byte{3, 5, 7}, newTestChain([]string{"double", "add"}, r).Apply(f).Pix)
}

func TestChainUnknownNamesAreInert(t *testing.T) {
	r := registry(map[string]plugin.Effect{"add": addConst(5)})
	f := testFrame()

	want := newTestChain([]string{"add", "add"}, r).Apply(f)
	for _, names := range [][]string{
		{"sepia", "add", "add"},
		{"add", "sepia", "add"},
		{"add", "add", "sepia"},
		{"", "add", "vignette", "add", "sepia"},
	} {
		assert.Equal(t, want, newTestChain(names, r).Apply(f), "chain %v", names)
	}
}

func TestChainGrayscaleThenBlur(t *testing.T) {
	gray, err := grayscale.New(nil)
	require.NoError(t, err)
	bl := blur.NewBlurPlugin(blur.BlurConfig{KernelSize: 5})
	r := registry(map[string]plugin.Effect{"grayscale": gray, "blur": bl})
	f := testFrame()

	got := newTestChain([]string{"grayscale", "blur"}, r).Apply(f)

	// gray, expand, blur each channel == gray, blur single channel, expand
	luma, err := frame.BGRToGray(f)
	require.NoError(t, err)
	blurred, err := bl.ApplyEffect(luma)
	require.NoError(t, err)
	want, err := frame.GrayToBGR(blurred)
	require.NoError(t, err)

	assert.Equal(t, frame.BGR, got.Channels)
	assert.Equal(t, want, got)
}

func TestChainExpandsGrayscaleOutput(t *testing.T) {
	gray, err := grayscale.New(nil)
	require.NoError(t, err)
	r := registry(map[string]plugin.Effect{"grayscale": gray})

	got := newTestChain([]string{"grayscale"}, r).Apply(testFrame())
	require.Equal(t, frame.BGR, got.Channels)
	for i := 0; i < len(got.Pix); i += 3 {
		assert.Equal(t, got.Pix[i], got.Pix[i+1])
		assert.Equal(t, got.Pix[i], got.Pix[i+2])
	}
}

func TestChainLastEffectFailureResetsToOriginal(t *testing.T) {
	r := registry(map[string]plugin.Effect{"add": addConst(10), "broken": failing("bad kernel")})
	f := testFrame()

	got := newTestChain([]string{"add", "add", "broken"}, r).Apply(f)
	assert.Equal(t, f, got)
}

func TestChainContinuesAfterFailure(t *testing.T) {
	r := registry(map[string]plugin.Effect{"add": addConst(10), "broken": failing("bad kernel")})
	f := frame.Frame{Width: 1, Height: 1, Channels: frame.BGR, Pix: []byte{1, 2, 3}}

	got := newTestChain([]string{"add", "broken", "add"}, r).Apply(f)
	assert.Equal(t, []byte{11, 12, 13}, got.Pix)
}

func TestChainNeverMutatesOriginal(t *testing.T) {
	inPlace := plugin.EffectFunc(func(f frame.Frame) (frame.Frame, error) {
		for i := range f.Pix {
			f.Pix[i] = 0
		}
		return f, nil
	})
	r := registry(map[string]plugin.Effect{"zero": inPlace, "broken": failing("x")})
	f := testFrame()
	before := f.Clone()

	got := newTestChain([]string{"zero", "broken"}, r).Apply(f)
	assert.Equal(t, before, f)
	assert.Equal(t, before, got)
}

func TestChainTreatsPanicsAndBadShapesAsFailures(t *testing.T) {
	panicky := plugin.EffectFunc(func(frame.Frame) (frame.Frame, error) { panic("index out of range") })
	shrink := plugin.EffectFunc(func(f frame.Frame) (frame.Frame, error) { return frame.New(1, 1, frame.BGR), nil })
	twoChannel := plugin.EffectFunc(func(f frame.Frame) (frame.Frame, error) {
		return frame.Frame{Width: f.Width, Height: f.Height, Channels: 2, Pix: make([]byte, f.Width*f.Height*2)}, nil
	})
	r := registry(map[string]plugin.Effect{"add": addConst(1), "panic": panicky, "shrink": shrink, "two": twoChannel})
	f := testFrame()

	core, logs := observer.New(zapcore.WarnLevel)
	c := NewChain([]string{"add", "panic", "add", "shrink", "add", "two"}, r, 0, nil, zap.New(core))

	assert.Equal(t, f, c.Apply(f))

	failed := logs.FilterMessage("Effect failed, reverting to original frame").All()
	require.Len(t, failed, 3)
	assert.Equal(t, "panic", failed[0].ContextMap()["effect"])
	assert.Contains(t, failed[0].ContextMap()["error"], "index out of range")
	assert.Equal(t, "shrink", failed[1].ContextMap()["effect"])
	assert.Equal(t, "two", failed[2].ContextMap()["effect"])
}

func TestChainEffectTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	slow := plugin.EffectFunc(func(f frame.Frame) (frame.Frame, error) {
		<-release
		return f, nil
	})
	r := registry(map[string]plugin.Effect{"add": addConst(1), "slow": slow})
	f := frame.Frame{Width: 1, Height: 1, Channels: frame.BGR, Pix: []byte{1, 2, 3}}

	c := NewChain([]string{"add", "slow", "add"}, r, 20*time.Millisecond, nil, zap.NewNop())
	assert.Equal(t, []byte{2, 3, 4}, c.Apply(f).Pix)

	timed := NewChain([]string{"slow"}, r, 20*time.Millisecond, nil, zap.NewNop())
	outcome := timed.attempt("slow", slow, f)
	require.False(t, outcome.OK())
	assert.ErrorIs(t, outcome.Err, ErrEffectTimeout)
	var applyErr *EffectApplyError
	require.ErrorAs(t, outcome.Err, &applyErr)
	assert.Equal(t, "slow", applyErr.Effect)

	outcome = timed.attempt("slow", slow, f)
	require.False(t, outcome.OK())
	assert.ErrorIs(t, outcome.Err, ErrEffectBusy)
}

func TestChainNeverEntersTimedOutEffectConcurrently(t *testing.T) {
	release := make(chan struct{})
	var running, peak, calls atomic.Int32
	hung := plugin.EffectFunc(func(f frame.Frame) (frame.Frame, error) {
		calls.Add(1)
		n := running.Add(1)
		defer running.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		return f, nil
	})
	r := registry(map[string]plugin.Effect{"hung": hung, "add": addConst(1)})
	f := frame.Frame{Width: 1, Height: 1, Channels: frame.BGR, Pix: []byte{1, 2, 3}}

	c := NewChain([]string{"add", "hung"}, r, 5*time.Millisecond, nil, zap.NewNop())
	for i := 0; i < 50; i++ {
		assert.Equal(t, []byte{1, 2, 3}, c.Apply(f).Pix)
	}
	assert.Equal(t, int32(1), peak.Load())
	assert.Equal(t, int32(1), calls.Load())

	close(release)
	require.Eventually(t, func() bool { return running.Load() == 0 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		// the slot is released once the hung call returns
		return c.attempt("hung", hung, f).OK()
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), peak.Load())
}

func TestChainMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	r := registry(map[string]plugin.Effect{"add": addConst(1), "broken": failing("x")})
	c := NewChain([]string{"add", "broken", "add", "missing"}, r, 0, metrics, zap.NewNop())
	c.Apply(testFrame())
	c.Apply(testFrame())

	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.effectApplied.WithLabelValues("add")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.effectFailures.WithLabelValues("broken")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.effectFailures))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.effectDuration))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "registering twice must fail")
}
