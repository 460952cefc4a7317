package hal

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/fxcore/pipeline"
)

// Simulator drives a pipeline like the codec DMA would.
type Simulator struct {
	p      *pipeline.Pipeline
	src    AudioSource
	sink   AudioSink
	period time.Duration

	half  int
	steps atomic.Uint64

	// frameStart is the UnixNano start of the half in progress, 0 when idle.
	frameStart atomic.Int64
	flagged    atomic.Uint64
	overruns   atomic.Uint64
	sinkErrors atomic.Uint64
}

// SimulatorOption configures a Simulator.
type SimulatorOption func(*Simulator)

// WithPeriod overrides the real-time period of one half-buffer.
func WithPeriod(d time.Duration) SimulatorOption {
	return func(s *Simulator) {
		if d > 0 {
			s.period = d
		}
	}
}

// NewSimulator creates a simulator. A nil source is silent and a nil sink
// discards output.
func NewSimulator(p *pipeline.Pipeline, src AudioSource, sink AudioSink, opts ...SimulatorOption) *Simulator {
	if src == nil {
		src = Silence{}
	}
	if sink == nil {
		sink = NullSink{}
	}
	cfg := p.Config()
	s := &Simulator{
		p:      p,
		src:    src,
		sink:   sink,
		period: time.Duration(float64(cfg.HalfFrames) / float64(cfg.SampleRate) * float64(time.Second)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Period returns the real-time duration of one half-buffer.
func (s *Simulator) Period() time.Duration { return s.period }

// Step processes one half-buffer and alternates halves.
func (s *Simulator) Step() {
	half := s.half
	s.src.Fill(s.p.RX(half))

	s.frameStart.Store(time.Now().UnixNano())
	s.p.OnHalfBufferReady(half)
	s.frameStart.Store(0)

	if err := s.sink.Write(s.p.TX(half)); err != nil {
		s.sinkErrors.Add(1)
	}
	s.half ^= 1
	s.steps.Add(1)
}

// Steps runs n half-buffers back to back.
func (s *Simulator) Steps(n int) {
	for range n {
		s.Step()
	}
}

// StepCount returns the number of processed half-buffers.
func (s *Simulator) StepCount() uint64 { return s.steps.Load() }

// Overruns returns the number of deadline misses the watchdog reported.
func (s *Simulator) Overruns() uint64 { return s.overruns.Load() }

// SinkErrors returns the number of failed sink writes.
func (s *Simulator) SinkErrors() uint64 { return s.sinkErrors.Load() }

// Run paces half-buffers in real time until ctx is done.
func (s *Simulator) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(s.period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.Step()
			}
		}
	})

	g.Go(func() error {
		s.watchdog(ctx)
		return nil
	})

	return g.Wait()
}

// watchdog raises OnOverrun at most once per half that outlives its period.
func (s *Simulator) watchdog(ctx context.Context) {
	ticker := time.NewTicker(max(s.period/4, 50*time.Microsecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.check(now)
		}
	}
}

func (s *Simulator) check(now time.Time) {
	if start, step, ok := s.overdue(now); ok {
		s.raise(start, step)
	}
}

// overdue reports the half in progress when it has outlived its period.
func (s *Simulator) overdue(now time.Time) (start int64, step uint64, ok bool) {
	start = s.frameStart.Load()
	if start == 0 || now.UnixNano()-start <= int64(s.period) {
		return 0, 0, false
	}
	step = s.steps.Load()
	if s.flagged.Load() == step+1 {
		return 0, 0, false
	}
	return start, step, true
}

// raise reports the overrun unless the overlong half finished in the meantime.
func (s *Simulator) raise(start int64, step uint64) {
	if s.frameStart.Load() != start {
		return
	}
	s.flagged.Store(step + 1)
	if s.p.OnOverrun() != nil {
		s.overruns.Add(1)
	}
}
