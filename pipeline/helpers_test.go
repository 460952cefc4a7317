package pipeline

import (
	"fmt"
	"testing"

	"github.com/hupe1980/fxcore/arena"
	"github.com/hupe1980/fxcore/input"
	"github.com/hupe1980/fxcore/module"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	pins  []bool
	knobs []uint16
}

func (s *fakeSource) ReadPins(dst []bool)    { copy(dst, s.pins) }
func (s *fakeSource) ReadKnobs(dst []uint16) { copy(dst, s.knobs) }

// probe multiplies by gain and records its lifecycle.
type probe struct {
	name      string
	gain      float32
	size      int
	failAfter int // Allocate fails once it has succeeded this many times; 0 never fails

	log        *[]string
	group      arena.Group
	buf        []float32
	allocated  bool
	allocs     int
	clearSeen  []bool
	misuse     int
	processed  int
	onProcess  func()
	notes      []uint8
	controlled int
}

func (m *probe) Allocate(env *module.Env) error {
	*m.log = append(*m.log, "alloc:"+m.name)
	m.clearSeen = append(m.clearSeen, env.Pools.Default().ClearOnAlloc())
	if m.failAfter > 0 && m.allocs >= m.failAfter {
		return arena.ErrOutOfMemory
	}
	if m.size > 0 {
		buf, err := m.group.AllocFloat32s(env.Pools.Default(), m.size/4)
		if err != nil {
			return err
		}
		m.buf = buf
	}
	m.allocs++
	m.allocated = true
	return nil
}

func (m *probe) AdvanceControlRate(*module.Env) {
	if !m.allocated {
		m.misuse++
	}
	m.controlled++
}

func (m *probe) ProcessSample(in float32) float32 {
	if !m.allocated {
		m.misuse++
	}
	m.processed++
	if m.onProcess != nil {
		m.onProcess()
	}
	return in * m.gain
}

func (m *probe) Release(*module.Env) error {
	*m.log = append(*m.log, "release:"+m.name)
	m.allocated = false
	m.buf = nil
	return m.group.ReleaseAll()
}

func (m *probe) NoteOn(note, _ uint8) { m.notes = append(m.notes, note) }
func (m *probe) NoteOff(uint8)        {}

type rig struct {
	p      *Pipeline
	pools  *arena.Pools
	src    *fakeSource
	probes []*probe
	log    []string
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.HalfFrames = 4
	cfg.Quiescence = 2
	cfg.Debounce = input.DebounceConfig{Hysteresis: 1}
	cfg.Knobs = 2
	cfg.RampSamples = 0
	cfg.KnobDeadband = 0
	return cfg
}

func newRig(t *testing.T, cfg Config, poolSize int, probes ...*probe) *rig {
	t.Helper()

	r := &rig{
		src:    &fakeSource{pins: make([]bool, cfg.Buttons), knobs: make([]uint16, cfg.Knobs)},
		probes: probes,
	}

	descs := make([]module.Descriptor, 0, len(probes))
	for i, pr := range probes {
		if pr.name == "" {
			pr.name = fmt.Sprintf("m%d", i+1)
		}
		pr.log = &r.log
		descs = append(descs, module.Descriptor{Name: pr.name, Module: pr})
	}
	table, err := module.NewTable(descs...)
	require.NoError(t, err)

	r.pools, err = arena.NewPools([]arena.PoolConfig{{Name: "fast", Size: poolSize}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.pools.Close() })

	r.p, err = New(table, r.pools, cfg, WithInputSource(r.src))
	require.NoError(t, err)
	return r
}

// boot loads preset 0 and runs its first frame.
func (r *rig) boot(t *testing.T) {
	t.Helper()
	require.NoError(t, r.p.Boot(0))
	r.p.SetCodecReady()
	r.frame(0, 1)
	r.log = r.log[:0]
	r.drain()
}

// frame fills the half with a constant, processes it and returns the output.
func (r *rig) frame(half int, in float32) []float32 {
	rx := r.p.RX(half)
	for i := range rx {
		rx[i] = in
	}
	r.p.OnHalfBufferReady(half)
	return r.p.TX(half)
}

func (r *rig) drain() []Notification {
	var out []Notification
	for {
		n, ok := r.p.PollNotification()
		if !ok {
			return out
		}
		out = append(out, n)
	}
}

func kinds(ns []Notification) []NotificationKind {
	out := make([]NotificationKind, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Kind)
	}
	return out
}

func constant(n int, v float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}
