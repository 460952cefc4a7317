// Package config loads the device configuration from YAML.
//
// Timing thresholds are written as durations and converted to frame and
// sample counts for the pipeline:
//
//	audio:
//	  sample_rate: 48000
//	  half_frames: 64
//	timing:
//	  quiescence: 2500us
//	  hysteresis: 6ms
//	  hold: 1s
//	  hold_cap: 2s
//	  ramp: 10ms
//	  ramp_mode: exponential
//	arenas:
//	  - name: fast
//	    size: 64KiB
//	  - name: sdram
//	    size: 8MiB
//	persistence:
//	  backend: local
//	  path: /var/lib/fxcore
package config
