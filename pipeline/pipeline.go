package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/hupe1980/fxcore/arena"
	"github.com/hupe1980/fxcore/input"
	"github.com/hupe1980/fxcore/internal/queue"
	"github.com/hupe1980/fxcore/module"
	"github.com/hupe1980/fxcore/ramp"
)

// Phase is the switcher state.
type Phase uint32

const (
	// PhaseIdle runs the active Module.
	PhaseIdle Phase = iota
	// PhaseDraining outputs silence while counting quiescent frames.
	PhaseDraining
	// PhaseCommitting swaps Modules at the start of a frame.
	PhaseCommitting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDraining:
		return "draining"
	case PhaseCommitting:
		return "committing"
	default:
		return fmt.Sprintf("phase(%d)", uint32(p))
	}
}

// switcher is mutated only from the audio context.
type switcher struct {
	phase     Phase
	silent    int
	current   int
	previous  int
	target    int
	firstLoad bool
	booted    bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics sets the metrics observer.
func WithMetrics(m Metrics) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithInputSource sets the raw control source polled once per frame.
func WithInputSource(s InputSource) Option {
	return func(p *Pipeline) {
		p.source = s
	}
}

// Pipeline is the audio-context state of one device. Independent pipelines
// share nothing.
type Pipeline struct {
	cfg     Config
	table   *module.Table
	pools   *arena.Pools
	env     module.Env
	metrics Metrics
	source  InputSource

	rx []float32
	tx []float32

	sw     switcher
	active module.Module
	stereo module.StereoProcessor
	voices module.VoiceTrigger

	ramps     *ramp.Bank
	buttons   *input.Bank
	pins      []bool
	btnEvents []input.Events
	knobs     []input.Knob
	knobRaw   []uint16
	lastKnob  int
	editMode  bool
	editValue float32
	frame     uint64

	events *queue.SPSC[Event]
	notes  *queue.SPSC[Notification]

	codecReady     atomic.Bool
	frameCompleted atomic.Bool
	overruns       atomic.Uint64

	// Published snapshots.
	activeSnap     atomic.Int64
	previousSnap   atomic.Int64
	phaseSnap      atomic.Uint32
	editSnap       atomic.Bool
	framesSnap     atomic.Uint64
	buttonSnap     atomic.Uint64
	knobSnap       []atomic.Uint32
	deadlineMisses atomic.Uint64
	outOfMemory    atomic.Uint64
	releaseErrors  atomic.Uint64
	droppedSwitch  atomic.Uint64
}

// New creates a pipeline. pools back every Module allocation.
func New(table *module.Table, pools *arena.Pools, cfg Config, opts ...Option) (*Pipeline, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil preset table", ErrInvalidConfig)
	}
	if pools == nil {
		return nil, fmt.Errorf("%w: nil arena pools", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	buttons, err := input.NewBank(cfg.Buttons, cfg.Debounce)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:       cfg,
		table:     table,
		pools:     pools,
		metrics:   NoopMetrics{},
		rx:        make([]float32, 4*cfg.HalfFrames),
		tx:        make([]float32, 4*cfg.HalfFrames),
		ramps:     ramp.NewBank(cfg.Knobs, cfg.RampMode, cfg.RampSamples),
		buttons:   buttons,
		pins:      make([]bool, cfg.Buttons),
		btnEvents: make([]input.Events, cfg.Buttons),
		knobs:     make([]input.Knob, cfg.Knobs),
		knobRaw:   make([]uint16, cfg.Knobs),
		knobSnap:  make([]atomic.Uint32, cfg.Knobs),
		events:    queue.NewSPSC[Event](cfg.EventQueue),
		notes:     queue.NewSPSC[Notification](cfg.NotifyQueue),
		sw:        switcher{current: -1, previous: -1, target: -1},
	}
	for i := range p.knobs {
		p.knobs[i] = input.NewKnob(cfg.KnobDeadband)
	}
	p.env = module.Env{
		Pools:      pools,
		Knobs:      p.ramps,
		SampleRate: cfg.SampleRate,
		FrameSize:  cfg.HalfFrames,
	}
	p.activeSnap.Store(-1)
	p.previousSnap.Store(-1)
	p.frameCompleted.Store(true)

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Table returns the preset table.
func (p *Pipeline) Table() *module.Table { return p.table }

// Boot schedules the first preset load. It must be called once, before the
// audio context starts. The load commits on the first frame after the codec
// is ready, with clear-on-allocation enabled for that construction only.
func (p *Pipeline) Boot(preset int) error {
	if p.sw.booted {
		return ErrAlreadyBooted
	}
	if _, ok := p.table.At(preset); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPreset, preset)
	}
	p.sw.booted = true
	p.sw.firstLoad = true
	p.sw.target = preset
	p.sw.phase = PhaseCommitting
	p.phaseSnap.Store(uint32(PhaseCommitting))
	return nil
}

// SetCodecReady marks the codec configured. Until then every frame is silent
// and nothing else runs.
func (p *Pipeline) SetCodecReady() { p.codecReady.Store(true) }

// CodecReady reports whether the codec signalled readiness.
func (p *Pipeline) CodecReady() bool { return p.codecReady.Load() }

// Ready returns ErrCodecNotReady until SetCodecReady was called.
func (p *Pipeline) Ready() error {
	if !p.codecReady.Load() {
		return ErrCodecNotReady
	}
	return nil
}

// HalfLen returns the number of interleaved samples in one half-buffer.
func (p *Pipeline) HalfLen() int { return 2 * p.cfg.HalfFrames }

// RX returns input half 0 or 1 for the hardware layer to fill.
func (p *Pipeline) RX(half int) []float32 {
	n := p.HalfLen()
	off := (half & 1) * n
	return p.rx[off : off+n : off+n]
}

// TX returns output half 0 or 1 for the hardware layer to read.
func (p *Pipeline) TX(half int) []float32 {
	n := p.HalfLen()
	off := (half & 1) * n
	return p.tx[off : off+n : off+n]
}

// OnHalfBufferReady processes RX(half) into TX(half). It is the audio-context
// entry point and must be called from a single goroutine.
func (p *Pipeline) OnHalfBufferReady(half int) {
	p.frameCompleted.Store(false)

	out := p.TX(half)
	if !p.codecReady.Load() {
		clear(out)
		p.frameCompleted.Store(true)
		return
	}
	in := p.RX(half)

	p.frame++
	if n := p.overruns.Swap(0); n > 0 {
		p.notify(Notification{Kind: NotifyDeadlineMissed, Count: n, Preset: p.sw.current})
	}

	for {
		ev, ok := p.events.Pop()
		if !ok {
			break
		}
		p.applyEvent(ev)
	}

	p.scanInputs()

	if p.advanceSwitch() {
		clear(out)
		p.metrics.RecordFrame(true)
	} else {
		p.active.AdvanceControlRate(&p.env)
		p.process(in, out)
		p.metrics.RecordFrame(false)
	}

	p.publish()
	p.frameCompleted.Store(true)
}

// OnOverrun is the hardware error notification. It reports ErrDeadlineMissed
// when the current half-buffer is still being processed. It may be called
// from any goroutine.
func (p *Pipeline) OnOverrun() error {
	if p.frameCompleted.Load() {
		return nil
	}
	p.deadlineMisses.Add(1)
	p.overruns.Add(1)
	p.metrics.RecordDeadlineMiss()
	return ErrDeadlineMissed
}

// Post queues a control event for the next frame. It never blocks and must
// be called from a single goroutine. It returns false when the queue is full.
func (p *Pipeline) Post(ev Event) bool {
	if !p.events.Push(ev) {
		p.metrics.RecordDroppedEvent()
		return false
	}
	return true
}

// PollNotification returns the oldest pending notification. It must be
// called from a single goroutine.
func (p *Pipeline) PollNotification() (Notification, bool) {
	return p.notes.Pop()
}

// Shutdown releases the active Module. The audio context must be stopped.
func (p *Pipeline) Shutdown() error {
	if p.active == nil {
		return nil
	}
	err := p.active.Release(&p.env)
	p.uninstall()
	p.activeSnap.Store(-1)
	return err
}

func (p *Pipeline) process(in, out []float32) {
	frames := len(in) / 2
	if p.stereo != nil {
		for i := 0; i < frames; i++ {
			p.ramps.Tick()
			out[2*i], out[2*i+1] = p.stereo.ProcessStereo(in[2*i], in[2*i+1])
		}
		return
	}
	for i := 0; i < frames; i++ {
		p.ramps.Tick()
		out[2*i] = p.active.ProcessSample(in[2*i])
		out[2*i+1] = p.active.ProcessSample(in[2*i+1])
	}
}

func (p *Pipeline) applyEvent(ev Event) {
	switch ev.Kind {
	case EventKnob:
		if ev.Index < 0 || ev.Index >= len(p.knobs) {
			return
		}
		v := min(max(ev.Value, 0), 1)
		p.ramps.SetDestination(ev.Index, v)
		p.knobs[ev.Index].Disengage()
		p.lastKnob = ev.Index
		p.notify(Notification{Kind: NotifyKnobChanged, Index: ev.Index, Value: v, Preset: p.sw.current})
	case EventNoteOn:
		if p.voices != nil && p.sw.phase == PhaseIdle {
			p.voices.NoteOn(ev.Note, ev.Velocity)
		}
	case EventNoteOff:
		if p.voices != nil && p.sw.phase == PhaseIdle {
			p.voices.NoteOff(ev.Note)
		}
	}
}

func (p *Pipeline) scanInputs() {
	if p.source == nil {
		return
	}
	p.source.ReadPins(p.pins)
	p.source.ReadKnobs(p.knobRaw)

	p.buttons.Tick(p.pins, p.btnEvents)
	for i, ev := range p.btnEvents {
		if ev != 0 {
			p.handleButton(i, ev)
		}
	}

	for i := range p.knobs {
		pos, moved := p.knobs[i].Update(p.knobRaw[i])
		if !moved {
			continue
		}
		p.ramps.SetDestination(i, pos)
		p.lastKnob = i
		p.notify(Notification{Kind: NotifyKnobChanged, Index: i, Value: pos, Preset: p.sw.current})
	}
}

func (p *Pipeline) handleButton(i int, ev input.Events) {
	if ev&^input.HoldContinuous != 0 {
		p.notify(Notification{Kind: NotifyButton, Index: i, Events: ev, Preset: p.sw.current})
	}

	roles := p.cfg.Roles
	switch i {
	case roles.Next:
		if ev.Has(input.Press) {
			p.requestSwitch(p.table.Next(p.sw.current))
		}
	case roles.Previous:
		if ev.Has(input.Press) {
			p.requestSwitch(p.table.Previous(p.sw.current))
		}
	case roles.Edit:
		p.handleEdit(ev)
	}
}

func (p *Pipeline) handleEdit(ev input.Events) {
	switch {
	case ev.Has(input.HoldInstant):
		p.editMode = true
		p.editValue = p.ramps.Value(p.lastKnob)
		p.editSnap.Store(true)
		p.notify(Notification{Kind: NotifyEditMode, Index: p.lastKnob, Value: 1, Preset: p.sw.current})
	case ev.Has(input.HoldContinuous) && p.editMode:
		if v := p.ramps.Value(p.lastKnob); v != p.editValue {
			p.editValue = v
			p.notify(Notification{Kind: NotifyEditValue, Index: p.lastKnob, Value: v, Preset: p.sw.current})
		}
	case ev.Has(input.Release) && p.editMode:
		p.editMode = false
		p.editSnap.Store(false)
		p.notify(Notification{Kind: NotifyEditMode, Index: p.lastKnob, Value: 0, Preset: p.sw.current})
	}
}

// requestSwitch starts draining toward target. Requests while a switch is in
// flight are dropped.
func (p *Pipeline) requestSwitch(target int) bool {
	if p.sw.phase != PhaseIdle {
		p.droppedSwitch.Add(1)
		p.notify(Notification{Kind: NotifySwitchDropped, Target: target, Preset: p.sw.current})
		return false
	}
	if _, ok := p.table.At(target); !ok {
		return false
	}
	p.sw.target = target
	p.sw.silent = 0
	p.sw.phase = PhaseDraining
	p.phaseSnap.Store(uint32(PhaseDraining))
	return true
}

// advanceSwitch moves the switcher one frame and reports whether the frame
// must be silent.
func (p *Pipeline) advanceSwitch() bool {
	switch p.sw.phase {
	case PhaseDraining:
		if p.sw.silent < p.cfg.Quiescence {
			p.sw.silent++
			return true
		}
		p.sw.phase = PhaseCommitting
		p.commit()
	case PhaseCommitting:
		p.commit()
	}
	return p.active == nil
}

func (p *Pipeline) commit() {
	from := p.sw.current
	target := p.sw.target

	if p.active != nil {
		if err := p.active.Release(&p.env); err != nil {
			p.releaseErrors.Add(1)
		}
		p.uninstall()
	}

	if p.sw.firstLoad {
		p.pools.SetClearOnAlloc(true)
	}
	err := p.load(target)
	if p.sw.firstLoad {
		p.pools.SetClearOnAlloc(false)
		p.sw.firstLoad = false
	}

	if err == nil {
		p.install(target)
		p.notify(Notification{Kind: NotifyPresetLoaded, Preset: target, Previous: from, Target: target})
		p.metrics.RecordSwitch(from, target, true)
	} else {
		if errors.Is(err, arena.ErrOutOfMemory) {
			p.outOfMemory.Add(1)
			p.metrics.RecordOutOfMemory()
		}
		now := p.restore(from)
		p.notify(Notification{Kind: NotifyPresetLoadFailed, Preset: now, Previous: from, Target: target, Err: err})
		p.metrics.RecordSwitch(from, target, false)
	}

	p.sw.previous = from
	p.previousSnap.Store(int64(from))
	p.sw.silent = 0
	p.sw.phase = PhaseIdle
	p.phaseSnap.Store(uint32(PhaseIdle))
}

// load allocates preset id. A failed Allocate is rolled back with Release.
func (p *Pipeline) load(id int) error {
	d, ok := p.table.At(id)
	if !ok {
		return ErrUnknownPreset
	}
	if err := d.Module.Allocate(&p.env); err != nil {
		if rerr := d.Module.Release(&p.env); rerr != nil {
			p.releaseErrors.Add(1)
		}
		return err
	}
	return nil
}

// restore rebuilds the outgoing preset after a failed commit. The arena is
// back in the state it had before that preset was released, so rebuilding
// it normally succeeds; otherwise the fallback preset or Bypass is installed.
// It returns the id now active, -1 for Bypass.
func (p *Pipeline) restore(from int) int {
	if from >= 0 && p.load(from) == nil {
		p.install(from)
		return from
	}
	if fb := p.table.Fallback(); fb >= 0 && fb != from && p.load(fb) == nil {
		p.install(fb)
		return fb
	}
	p.installModule(-1, module.Bypass{}, nil)
	return -1
}

func (p *Pipeline) install(id int) {
	d, _ := p.table.At(id)
	p.installModule(id, d.Module, d.Defaults)
}

func (p *Pipeline) installModule(id int, m module.Module, defaults []ramp.Value) {
	p.active = m
	p.stereo, _ = m.(module.StereoProcessor)
	p.voices, _ = m.(module.VoiceTrigger)
	p.sw.current = id
	p.activeSnap.Store(int64(id))

	p.ramps.ResetAll(defaults)
	for i := range p.knobs {
		p.knobs[i].Disengage()
	}
}

func (p *Pipeline) uninstall() {
	p.active = nil
	p.stereo = nil
	p.voices = nil
}

func (p *Pipeline) notify(n Notification) {
	n.Frame = p.frame
	p.notes.Push(n)
}

func (p *Pipeline) publish() {
	p.framesSnap.Store(p.frame)
	p.buttonSnap.Store(p.buttons.Mask())
	for i := range p.knobSnap {
		p.knobSnap[i].Store(math.Float32bits(p.ramps.Value(i)))
	}
}
