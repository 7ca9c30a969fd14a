package viewport

import (
	"sync"
	"time"
)

// CameraSink is a camera the animator can drive.
type CameraSink interface {
	Camera() Camera
	ApplyCamera(Camera)
}

const frameInterval = 16 * time.Millisecond

// Animator plays camera transitions on hosts without native animation.
// Starting a transition cancels the one in flight, so moves never stack.
type Animator struct {
	sink     CameraSink
	interval time.Duration

	mu     sync.Mutex
	gen    uint64
	cancel chan struct{}
}

func NewAnimator(sink CameraSink) *Animator {
	return &Animator{sink: sink, interval: frameInterval}
}

// Start begins animating towards tr.Camera from the sink's current camera.
// The returned channel closes when the transition finishes or is replaced.
func (a *Animator) Start(tr Transition) <-chan struct{} {
	a.mu.Lock()
	if a.cancel != nil {
		close(a.cancel)
	}
	a.gen++
	gen := a.gen
	cancel := make(chan struct{})
	a.cancel = cancel
	a.mu.Unlock()

	done := make(chan struct{})
	from := a.sink.Camera()

	if tr.Duration <= 0 {
		a.apply(gen, tr.Camera)
		a.finish(gen)
		close(done)
		return done
	}

	ease := tr.Easing.Func()
	go func() {
		defer close(done)
		defer a.finish(gen)

		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		start := time.Now()
		for {
			select {
			case <-cancel:
				return
			case now := <-ticker.C:
				t := float64(now.Sub(start)) / float64(tr.Duration)
				if t >= 1 {
					a.apply(gen, tr.Camera)
					return
				}
				if !a.apply(gen, Lerp(from, tr.Camera, ease(t))) {
					return
				}
			}
		}
	}()
	return done
}

// Stop cancels the transition in flight, leaving the camera where it is.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		close(a.cancel)
		a.cancel = nil
	}
	a.gen++
}

// apply writes the camera if gen is still the live transition.
func (a *Animator) apply(gen uint64, c Camera) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		return false
	}
	a.sink.ApplyCamera(c)
	return true
}

func (a *Animator) finish(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen == a.gen && a.cancel != nil {
		a.cancel = nil
	}
}
