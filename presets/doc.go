// Package presets provides small reference Modules.
//
// They exist to exercise the module contract end to end: Bypass never
// allocates and serves as the fallback, Gain is stateless, Tremolo keeps its
// oscillator in arena memory, Delay keeps its lines in a large pool, and Gate
// responds to notes. Knob values arrive normalized in [0,1].
package presets
