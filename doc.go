// Package fxcore is the real-time control core of an embedded multi-effects
// instrument.
//
// A Device owns one audio pipeline: a fixed preset table, the arenas every
// preset allocates from, the button and knob scanner, and the quiescence
// switcher that swaps presets only while the output is silent. Around it the
// Device runs the slow context: notification polling, logging, MIDI input and
// rate-limited persistence of the selected preset.
//
// # Quick Start
//
//	table, _ := presets.Default("sdram")
//	dev, _ := fxcore.New(table,
//	    fxcore.WithConfig(cfg),
//	    fxcore.WithInputSource(controls),
//	    fxcore.WithBringUp(hal.Codec{Delay: 50 * time.Millisecond}),
//	)
//	defer dev.Close(ctx)
//
//	_ = dev.Boot(ctx)          // restores the persisted preset
//	go sim.Run(ctx)            // audio context: OnHalfBufferReady per half
//	_ = dev.Run(ctx)           // slow context until ctx is done
//
// # Contexts
//
// The audio context is whatever calls Pipeline().OnHalfBufferReady: the DMA
// interrupt on hardware, hal.Simulator on a host. It never allocates, blocks
// or logs. Everything else, including every method on Device, belongs to the
// slow context and talks to the audio context through the pipeline's
// lock-free event and notification queues.
//
// # Preset switching
//
// A switch request drains the output for K silent frames, releases the old
// Module and constructs the new one in the same frame. If construction fails
// the previous preset is rebuilt; if that fails too the table's fallback
// preset, and finally Bypass, is installed. The outcome is reported as a
// notification and, through Device.Err, as an *ErrPresetLoad.
//
// # Persistence
//
// The selected preset and knob positions are written to a blobstore.Store
// (memory, local flash, S3, DynamoDB or MinIO) in a CRC-protected record.
// Writes are coalesced and limited to one per configured interval.
package fxcore
