package fxcore

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/fxcore/arena"
	"github.com/hupe1980/fxcore/config"
	"github.com/hupe1980/fxcore/control"
	"github.com/hupe1980/fxcore/display"
	"github.com/hupe1980/fxcore/internal/resource"
	"github.com/hupe1980/fxcore/module"
	"github.com/hupe1980/fxcore/persist"
	"github.com/hupe1980/fxcore/pipeline"
)

const minPollInterval = time.Millisecond

// Device is one instrument: the audio pipeline plus the slow-context
// services around it (persistence, logging, MIDI, display).
//
// The audio context drives Pipeline().OnHalfBufferReady directly. Everything
// on Device runs in the slow context.
type Device struct {
	cfg     config.Config
	logger  *Logger
	table   *module.Table
	rc      *resource.Controller
	pools   *arena.Pools
	pipe    *pipeline.Pipeline
	decoder *control.Decoder
	sink    display.Sink
	bringUp BringUp

	state     *persist.Store
	persister *persist.Persister

	pollInterval time.Duration

	// postMu serializes producers of the event queue.
	postMu sync.Mutex

	// pollMu serializes the notification consumer and guards the fields below.
	pollMu  sync.Mutex
	knobs   []float32
	restore []float32
	loaded  bool
	lastErr error

	booted atomic.Bool
	closed atomic.Bool
}

// New creates a device for table.
//
// The persistence backend comes from the configuration unless WithStateStore
// is given. Cloud backends are opened with context.Background; use
// OpenStore and WithStateStore to control that.
func New(table *module.Table, optFns ...Option) (*Device, error) {
	if table == nil {
		return nil, &ErrInvalidConfig{Field: "preset table is nil"}
	}

	o := options{cfg: config.Default()}
	for _, fn := range optFns {
		fn(&o)
	}

	cfg := o.cfg
	if err := cfg.Validate(); err != nil {
		return nil, translateError(err)
	}

	logger := o.logger
	if logger == nil {
		level, _ := cfg.LogLevel()
		if o.logLevel != nil {
			level = *o.logLevel
		}
		logger = newLogger(os.Stderr, cfg.Logging.Format, level)
	}

	rc := resource.NewController(cfg.ResourceConfig())
	pools, err := arena.NewPools(cfg.Pools(), arena.WithMemoryReserver(rc))
	if err != nil {
		return nil, translateError(err)
	}

	var popts []pipeline.Option
	if o.metricsCollector != nil {
		popts = append(popts, pipeline.WithMetrics(o.metricsCollector))
	}
	if o.source != nil {
		popts = append(popts, pipeline.WithInputSource(o.source))
	}

	pipe, err := pipeline.New(table, pools, cfg.Frames(), popts...)
	if err != nil {
		_ = pools.Close()
		return nil, translateError(err)
	}

	d := &Device{
		cfg:          cfg,
		logger:       logger,
		table:        table,
		rc:           rc,
		pools:        pools,
		pipe:         pipe,
		decoder:      control.NewDecoder(cfg.Mapping()),
		sink:         o.sink,
		bringUp:      o.bringUp,
		pollInterval: o.pollInterval,
		knobs:        make([]float32, pipe.Knobs()),
	}
	if d.pollInterval == 0 {
		d.pollInterval = max(cfg.FrameDuration(), minPollInterval)
	}

	blobs := o.store
	if blobs == nil {
		if blobs, err = OpenStore(context.Background(), cfg.Persistence); err != nil {
			_ = pools.Close()
			return nil, err
		}
	}
	if blobs != nil {
		state, err := newStateStore(blobs, cfg.Persistence, o.codec, rc)
		if err != nil {
			_ = pools.Close()
			return nil, err
		}
		d.state = state
		d.persister = persist.NewPersister(state,
			persist.WithMinInterval(cfg.Persistence.MinInterval),
			persist.WithLogger(logger.WithComponent("persist").Logger),
		)
	}

	return d, nil
}

// Config returns the device configuration.
func (d *Device) Config() config.Config { return d.cfg }

// Pipeline returns the audio pipeline. The hardware layer calls its
// OnHalfBufferReady, OnOverrun and SetCodecReady.
func (d *Device) Pipeline() *pipeline.Pipeline { return d.pipe }

// Table returns the preset table.
func (d *Device) Table() *module.Table { return d.table }

// Logger returns the device logger.
func (d *Device) Logger() *Logger { return d.logger }

// Persister returns the background state writer, or nil without persistence.
func (d *Device) Persister() *persist.Persister { return d.persister }

// Resources returns the device-wide budget controller.
func (d *Device) Resources() *resource.Controller { return d.rc }

// Status returns the latest pipeline snapshot.
func (d *Device) Status() pipeline.Status { return d.pipe.Status() }

// Knob returns the last requested value of knob i as seen by the slow context.
func (d *Device) Knob(i int) float32 {
	d.pollMu.Lock()
	defer d.pollMu.Unlock()
	if i < 0 || i >= len(d.knobs) {
		return 0
	}
	return d.knobs[i]
}

// Err returns the last preset load failure, or nil.
func (d *Device) Err() error {
	d.pollMu.Lock()
	defer d.pollMu.Unlock()
	return d.lastErr
}

// Boot selects the first preset. Persisted state wins over the configured
// boot preset; unreadable state is logged and ignored. Persisted knob values
// are restored once the preset is loaded.
func (d *Device) Boot(ctx context.Context) error {
	if d.closed.Load() {
		return ErrClosed
	}

	preset := d.cfg.BootPreset
	restored := false

	if d.state != nil {
		rec, ok, err := d.state.Load(ctx)
		switch {
		case err != nil:
			d.logger.WarnContext(ctx, "persisted state unreadable", "error", err)
		case ok:
			if id, found := d.resolve(rec); found {
				preset = id
				restored = true
				d.pollMu.Lock()
				d.restore = rec.Knobs
				d.pollMu.Unlock()
			}
		}
	}

	if err := d.pipe.Boot(preset); err != nil {
		if errors.Is(err, pipeline.ErrUnknownPreset) {
			return presetError(d.table, preset, err)
		}
		return translateError(err)
	}
	d.booted.Store(true)

	d.logger.LogBoot(ctx, preset, d.table.Name(preset), restored)
	return nil
}

// resolve finds the persisted preset, by name first so a reordered table
// still restores the right one.
func (d *Device) resolve(rec persist.Record) (int, bool) {
	if rec.PresetName != "" {
		if id, ok := d.table.Lookup(rec.PresetName); ok {
			return id, true
		}
	}
	if _, ok := d.table.At(rec.Preset); ok {
		return rec.Preset, true
	}
	return -1, false
}

// Post queues a control event for the next frame. It is safe for concurrent
// use and never blocks on the audio context.
func (d *Device) Post(ev pipeline.Event) bool {
	d.postMu.Lock()
	defer d.postMu.Unlock()
	return d.pipe.Post(ev)
}

// HandleMIDI decodes one raw MIDI message and posts the resulting event.
func (d *Device) HandleMIDI(raw []byte) bool {
	return d.decoder.Forward(d, raw)
}

// ListenMIDI forwards every message from the named input port. A gomidi
// driver must be registered by the caller.
func (d *Device) ListenMIDI(port string) (stop func(), err error) {
	in, err := control.OpenInPort(port)
	if err != nil {
		return nil, err
	}
	return control.Listen(in, d.decoder, d)
}

// Poll drains pending notifications and returns how many were handled.
func (d *Device) Poll(ctx context.Context) int {
	d.pollMu.Lock()
	defer d.pollMu.Unlock()

	n := 0
	for {
		note, ok := d.pipe.PollNotification()
		if !ok {
			return n
		}
		d.handle(ctx, note)
		n++
	}
}

// handle runs with pollMu held.
func (d *Device) handle(ctx context.Context, note pipeline.Notification) {
	switch note.Kind {
	case pipeline.NotifyPresetLoaded:
		d.logger.LogPresetLoaded(ctx, note.Preset, d.table.Name(note.Preset), note.Previous)
		d.resetKnobs(note.Preset)

		first := !d.loaded
		d.loaded = true
		if first && len(d.restore) > 0 {
			d.restoreKnobs()
		} else {
			d.submit(note.Preset)
		}

	case pipeline.NotifyPresetLoadFailed:
		err := presetError(d.table, note.Target, note.Err)
		d.lastErr = err
		d.logger.LogPresetFailed(ctx, note.Preset, err)
		d.resetKnobs(note.Preset)

	case pipeline.NotifyKnobChanged:
		if note.Index >= 0 && note.Index < len(d.knobs) {
			d.knobs[note.Index] = note.Value
		}
		if d.loaded {
			d.submit(note.Preset)
		}

	case pipeline.NotifyDeadlineMissed:
		d.logger.LogDeadlineMissed(ctx, note.Count, d.pipe.Status().DeadlineMisses)

	case pipeline.NotifySwitchDropped:
		d.logger.DebugContext(ctx, "switch dropped", "target", note.Target, "active", note.Preset)
	}

	if d.sink != nil {
		d.sink.Notify(note)
	}
}

// resetKnobs mirrors the ramp reset the pipeline performs on every install.
func (d *Device) resetKnobs(preset int) {
	clear(d.knobs)
	if desc, ok := d.table.At(preset); ok {
		for i, v := range desc.Defaults {
			if i < len(d.knobs) {
				d.knobs[i] = v.Destination
			}
		}
	}
}

func (d *Device) restoreKnobs() {
	for i, v := range d.restore {
		if i >= len(d.knobs) {
			break
		}
		if !d.Post(pipeline.Event{Kind: pipeline.EventKnob, Index: i, Value: v}) {
			d.logger.Warn("knob restore dropped", "knob", i)
		}
	}
	d.restore = nil
}

// submit queues the current state for writing. Bypass after a failed
// recovery is never persisted.
func (d *Device) submit(preset int) {
	if d.persister == nil || preset < 0 {
		return
	}
	d.persister.Submit(persist.Record{
		Preset:     preset,
		PresetName: d.table.Name(preset),
		Knobs:      append([]float32(nil), d.knobs...),
		SavedAt:    time.Now().UTC(),
	})
}

// Run supervises the slow context until ctx is done: codec bring-up,
// notification polling and background persistence. It returns nil on
// cancellation.
func (d *Device) Run(ctx context.Context) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if !d.booted.Load() {
		return ErrNotBooted
	}

	g, gctx := errgroup.WithContext(ctx)

	if d.persister != nil {
		g.Go(func() error {
			return d.persister.Run(gctx)
		})
	}

	if d.bringUp != nil {
		g.Go(func() error {
			if err := d.bringUp.BringUp(gctx, d.pipe); err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return err
			}
			d.logger.InfoContext(gctx, "codec ready")
			return nil
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(d.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				d.Poll(context.WithoutCancel(gctx))
				return nil
			case <-ticker.C:
				d.Poll(gctx)
			}
		}
	})

	return g.Wait()
}

// Close drains notifications, writes pending state and releases the active
// Module and the arenas. The audio context must be stopped.
func (d *Device) Close(ctx context.Context) error {
	if d.closed.Swap(true) {
		return nil
	}

	d.Poll(ctx)

	var errs []error
	if d.persister != nil {
		if err := d.persister.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.pipe.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if err := d.pools.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
