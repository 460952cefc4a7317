// Package input turns raw, noisy control reads into clean events.
//
// A Debouncer accepts a button level only after it has persisted for a
// hysteresis window and derives hold events from a capped counter. A Knob
// converts raw ADC readings to a normalized value and ignores the physical
// position after a preset load until the user moves past a deadband.
//
// Everything here is ticked at control rate from the audio context. Nothing
// allocates after construction.
package input
