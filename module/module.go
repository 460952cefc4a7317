package module

import (
	"errors"
	"fmt"

	"github.com/hupe1980/fxcore/arena"
	"github.com/hupe1980/fxcore/ramp"
)

var (
	// ErrEmptyTable is returned by NewTable without descriptors.
	ErrEmptyTable = errors.New("module: empty table")
	// ErrNilModule is returned for descriptors without a Module.
	ErrNilModule = errors.New("module: nil module")
	// ErrDuplicateName is returned when two descriptors share a name.
	ErrDuplicateName = errors.New("module: duplicate name")
)

// Env is what a Module may use. It is owned by the pipeline.
type Env struct {
	// Pools are the named arenas available for allocation.
	Pools *arena.Pools
	// Knobs are the per-control ramps, ticked once per sample.
	Knobs *ramp.Bank
	// SampleRate in Hz.
	SampleRate int
	// FrameSize is the number of stereo samples per audio frame.
	FrameSize int
}

// Arena returns the named pool, or the default pool when name is empty.
func (e *Env) Arena(name string) (*arena.Arena, error) {
	if e.Pools == nil {
		return nil, arena.ErrUnknownPool
	}
	if name == "" {
		return e.Pools.Default(), nil
	}
	return e.Pools.Get(name)
}

// Knob returns the ramp of control i, or nil when there is none.
func (e *Env) Knob(i int) *ramp.Ramp {
	if e.Knobs == nil {
		return nil
	}
	return e.Knobs.At(i)
}

// Module is one DSP preset.
type Module interface {
	// Allocate builds the preset state from arena memory.
	Allocate(env *Env) error
	// AdvanceControlRate runs once per audio frame before any sample.
	AdvanceControlRate(env *Env)
	// ProcessSample processes one sample. It must not allocate or block.
	ProcessSample(in float32) float32
	// Release returns every allocation made by Allocate.
	Release(env *Env) error
}

// StereoProcessor is implemented by Modules that process both channels of a
// frame together. The pipeline prefers it over ProcessSample.
type StereoProcessor interface {
	ProcessStereo(left, right float32) (float32, float32)
}

// VoiceTrigger is implemented by Modules that respond to notes.
type VoiceTrigger interface {
	NoteOn(note, velocity uint8)
	NoteOff(note uint8)
}

// Namer is implemented by Modules with a display name.
type Namer interface {
	Name() string
}

// Descriptor registers one preset.
type Descriptor struct {
	Name   string
	Module Module
	// Defaults are the ramp value/destination pairs applied after a load,
	// indexed by knob.
	Defaults []ramp.Value
	// Fallback marks a preset whose Allocate cannot fail.
	Fallback bool
}

// Table is the fixed preset table indexed 0..N-1.
type Table struct {
	entries  []Descriptor
	fallback int
}

// NewTable builds a table. Names default to the Module's Namer, then to
// "preset-<id>".
func NewTable(descs ...Descriptor) (*Table, error) {
	if len(descs) == 0 {
		return nil, ErrEmptyTable
	}

	t := &Table{entries: make([]Descriptor, len(descs)), fallback: -1}
	seen := make(map[string]int, len(descs))

	for i, d := range descs {
		if d.Module == nil {
			return nil, fmt.Errorf("%w: id %d", ErrNilModule, i)
		}
		if d.Name == "" {
			if n, ok := d.Module.(Namer); ok {
				d.Name = n.Name()
			} else {
				d.Name = fmt.Sprintf("preset-%d", i)
			}
		}
		if j, ok := seen[d.Name]; ok {
			return nil, fmt.Errorf("%w: %q (ids %d and %d)", ErrDuplicateName, d.Name, j, i)
		}
		seen[d.Name] = i

		if d.Fallback && t.fallback < 0 {
			t.fallback = i
		}
		t.entries[i] = d
	}

	return t, nil
}

// Len returns the number of presets.
func (t *Table) Len() int { return len(t.entries) }

// At returns the descriptor of id.
func (t *Table) At(id int) (*Descriptor, bool) {
	if id < 0 || id >= len(t.entries) {
		return nil, false
	}
	return &t.entries[id], true
}

// Lookup returns the id registered under name.
func (t *Table) Lookup(name string) (int, bool) {
	for i := range t.entries {
		if t.entries[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// Name returns the name of id, or "" when out of range.
func (t *Table) Name(id int) string {
	if d, ok := t.At(id); ok {
		return d.Name
	}
	return ""
}

// Fallback returns the id of the first fallback preset, or -1.
func (t *Table) Fallback() int { return t.fallback }

// Next returns the id after id, wrapping around.
func (t *Table) Next(id int) int {
	if id < 0 {
		return 0
	}
	return (id + 1) % len(t.entries)
}

// Previous returns the id before id, wrapping around.
func (t *Table) Previous(id int) int {
	if id <= 0 {
		return len(t.entries) - 1
	}
	return id - 1
}
