package control

import (
	"errors"
	"fmt"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/hupe1980/fxcore/pipeline"
)

// ErrInvalidChannel is returned for channels outside 0..16.
var ErrInvalidChannel = errors.New("control: midi channel must be 0 (omni) or 1..16")

// Omni accepts messages on every channel.
const Omni = 0

// Mapping assigns MIDI controller numbers to knobs.
type Mapping struct {
	// Channel is the 1-based MIDI channel, or Omni.
	Channel int
	// CC maps controller number to knob index.
	CC map[uint8]int
}

// NewMapping builds a Mapping where ccs[i] drives knob i.
func NewMapping(channel int, ccs []uint8) (Mapping, error) {
	if channel < 0 || channel > 16 {
		return Mapping{}, fmt.Errorf("%w: %d", ErrInvalidChannel, channel)
	}
	m := Mapping{Channel: channel, CC: make(map[uint8]int, len(ccs))}
	for i, cc := range ccs {
		if cc > 127 {
			return Mapping{}, fmt.Errorf("control: controller number %d out of range", cc)
		}
		if prev, dup := m.CC[cc]; dup {
			return Mapping{}, fmt.Errorf("control: controller %d mapped to knobs %d and %d", cc, prev, i)
		}
		m.CC[cc] = i
	}
	return m, nil
}

// DefaultCC maps knobs to the general purpose controllers 20..27.
func DefaultCC(knobs int) []uint8 {
	ccs := make([]uint8, knobs)
	for i := range ccs {
		ccs[i] = uint8(20 + i)
	}
	return ccs
}

// Decoder converts MIDI messages into pipeline events.
type Decoder struct {
	mapping Mapping

	decoded atomic.Uint64
	ignored atomic.Uint64
}

// NewDecoder creates a decoder for mapping.
func NewDecoder(mapping Mapping) *Decoder {
	return &Decoder{mapping: mapping}
}

func (d *Decoder) accept(channel uint8) bool {
	return d.mapping.Channel == Omni || int(channel)+1 == d.mapping.Channel
}

// Decode converts one raw MIDI message. ok is false for messages that map
// to no event.
func (d *Decoder) Decode(raw []byte) (ev pipeline.Event, ok bool) {
	ev, ok = d.decode(gomidi.Message(raw))
	if ok {
		d.decoded.Add(1)
	} else {
		d.ignored.Add(1)
	}
	return ev, ok
}

func (d *Decoder) decode(msg gomidi.Message) (pipeline.Event, bool) {
	var channel, key, velocity, cc, value uint8

	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		if !d.accept(channel) {
			return pipeline.Event{}, false
		}
		return pipeline.Event{Kind: pipeline.EventNoteOn, Note: key, Velocity: velocity}, true

	case msg.GetNoteEnd(&channel, &key):
		if !d.accept(channel) {
			return pipeline.Event{}, false
		}
		return pipeline.Event{Kind: pipeline.EventNoteOff, Note: key}, true

	case msg.GetControlChange(&channel, &cc, &value):
		if !d.accept(channel) {
			return pipeline.Event{}, false
		}
		knob, mapped := d.mapping.CC[cc]
		if !mapped {
			return pipeline.Event{}, false
		}
		return pipeline.Event{Kind: pipeline.EventKnob, Index: knob, Value: float32(value) / 127}, true
	}

	return pipeline.Event{}, false
}

// Stats returns the number of decoded and ignored messages.
func (d *Decoder) Stats() (decoded, ignored uint64) {
	return d.decoded.Load(), d.ignored.Load()
}

// Poster accepts decoded events. *pipeline.Pipeline implements it.
type Poster interface {
	Post(ev pipeline.Event) bool
}

// Forward decodes raw and posts the result. It reports whether an event was
// accepted by p.
func (d *Decoder) Forward(p Poster, raw []byte) bool {
	ev, ok := d.Decode(raw)
	if !ok {
		return false
	}
	return p.Post(ev)
}

// Listen decodes every message arriving on in and posts it to p.
// The returned function stops listening.
func Listen(in drivers.In, d *Decoder, p Poster) (stop func(), err error) {
	stop, err = gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		d.Forward(p, msg.Bytes())
	})
	if err != nil {
		return nil, fmt.Errorf("control: listen on %s: %w", in, err)
	}
	return stop, nil
}

// OpenInPort finds an input port by name. A MIDI driver must be registered
// by the caller.
func OpenInPort(name string) (drivers.In, error) {
	in, err := gomidi.FindInPort(name)
	if err != nil {
		return nil, fmt.Errorf("control: find input port %q: %w", name, err)
	}
	return in, nil
}
