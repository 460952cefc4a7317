package fxcore

import (
	"context"
	"log/slog"
	"time"

	"github.com/hupe1980/fxcore/blobstore"
	"github.com/hupe1980/fxcore/codec"
	"github.com/hupe1980/fxcore/config"
	"github.com/hupe1980/fxcore/display"
	"github.com/hupe1980/fxcore/hal"
	"github.com/hupe1980/fxcore/pipeline"
)

// BringUp configures the codec and marks the pipeline ready when done.
// hal.Codec implements it.
type BringUp interface {
	BringUp(ctx context.Context, p hal.ReadySetter) error
}

type options struct {
	cfg              config.Config
	logger           *Logger
	logLevel         *slog.Level
	metricsCollector MetricsCollector
	store            blobstore.Store
	sink             display.Sink
	source           pipeline.InputSource
	codec            codec.Codec
	bringUp          BringUp
	pollInterval     time.Duration
}

// Option configures Device constructor behavior.
type Option func(*options)

// WithConfig sets the device configuration. Without it config.Default is used.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithLogger configures structured logging.
// If nil is passed, a logger is built from the configuration.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLogLevel overrides the configured log level. It has no effect when
// WithLogger is used.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logLevel = &level
	}
}

// WithMetricsCollector configures metrics collection.
// The collector is called from the audio context and must not block.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithStateStore overrides the configured persistence backend.
func WithStateStore(s blobstore.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithDisplay receives every notification after the device handled it.
func WithDisplay(s display.Sink) Option {
	return func(o *options) {
		o.sink = s
	}
}

// WithInputSource sets the raw button and knob source scanned once per frame.
func WithInputSource(s pipeline.InputSource) Option {
	return func(o *options) {
		o.source = s
	}
}

// WithCodec configures the codec used to encode persisted state.
//
// If nil is passed, the configured codec (or codec.Default) is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithBringUp runs b from Run to configure the codec. Without it the caller
// must call SetCodecReady on the pipeline.
func WithBringUp(b BringUp) Option {
	return func(o *options) {
		o.bringUp = b
	}
}

// WithPollInterval sets how often Run drains notifications. The default is
// one frame duration.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}
