package viewport

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu      sync.Mutex
	cam     Camera
	applied int
}

func (s *fakeSink) Camera() Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cam
}

func (s *fakeSink) ApplyCamera(c Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = c
	s.applied++
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("transition did not finish")
	}
}

func TestAnimator_ZeroDurationJumps(t *testing.T) {
	sink := &fakeSink{cam: Camera{Zoom: 1}}
	a := NewAnimator(sink)

	target := Camera{X: 10, Y: 20, Zoom: 0.5}
	wait(t, a.Start(Transition{Camera: target}))
	assert.Equal(t, target, sink.Camera())
	assert.Equal(t, 1, sink.applied)
}

func TestAnimator_EndsOnTarget(t *testing.T) {
	sink := &fakeSink{cam: Camera{Zoom: 1}}
	a := NewAnimator(sink)
	a.interval = time.Millisecond

	target := Camera{X: 300, Y: -100, Zoom: 0.75}
	wait(t, a.Start(Transition{Camera: target, Duration: 40 * time.Millisecond, Easing: EaseOutCubic}))
	assert.Equal(t, target, sink.Camera())
}

func TestAnimator_NewTransitionCancelsPrevious(t *testing.T) {
	sink := &fakeSink{cam: Camera{Zoom: 1}}
	a := NewAnimator(sink)
	a.interval = time.Millisecond

	first := a.Start(Transition{Camera: Camera{X: 5000, Zoom: 1}, Duration: time.Hour})
	second := Camera{X: -50, Y: 50, Zoom: 1}
	wait(t, a.Start(Transition{Camera: second}))
	wait(t, first)

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, second, sink.Camera())
}

func TestAnimator_Stop(t *testing.T) {
	sink := &fakeSink{cam: Camera{Zoom: 1}}
	a := NewAnimator(sink)
	a.interval = time.Millisecond

	done := a.Start(Transition{Camera: Camera{X: 5000, Zoom: 1}, Duration: time.Hour})
	time.Sleep(5 * time.Millisecond)
	a.Stop()
	wait(t, done)

	stopped := sink.Camera()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, stopped, sink.Camera())
	assert.Less(t, stopped.X, 5000.0)
}

func TestEasing_Endpoints(t *testing.T) {
	for _, e := range []Easing{EaseLinear, EaseOutQuad, EaseOutCubic, EaseInOutCubic, Easing("bogus")} {
		fn := e.Func()
		require.InDelta(t, 0, fn(0), 1e-12, string(e))
		require.InDelta(t, 1, fn(1), 1e-12, string(e))
		assert.Greater(t, fn(0.5), 0.0, string(e))
	}
}

func TestLerp_Clamps(t *testing.T) {
	from := Camera{X: 0, Y: 0, Zoom: 1}
	to := Camera{X: 100, Y: 200, Zoom: 0.5}
	assert.Equal(t, to, Lerp(from, to, 2))
	assert.Equal(t, from, Lerp(from, to, -1))
	assert.Equal(t, Camera{X: 50, Y: 100, Zoom: 0.75}, Lerp(from, to, 0.5))
}

func TestTransition_JSONCarriesDuration(t *testing.T) {
	tr := Transition{Camera: Camera{X: 1, Y: 2, Zoom: 0.5}, Duration: DefaultDuration, Easing: EaseOutCubic}
	data, err := json.Marshal(tr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"camera":{"x":1,"y":2,"zoom":0.5},"durationMs":500,"easing":"easeOutCubic"}`, string(data))

	var back Transition
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, tr, back)
}
