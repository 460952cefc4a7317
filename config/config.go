package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/fxcore/arena"
	"github.com/hupe1980/fxcore/control"
	"github.com/hupe1980/fxcore/input"
	"github.com/hupe1980/fxcore/internal/resource"
	"github.com/hupe1980/fxcore/pipeline"
	"github.com/hupe1980/fxcore/ramp"
)

// ErrInvalid is returned for configurations that fail validation.
var ErrInvalid = errors.New("config: invalid")

// Config is the device configuration.
type Config struct {
	Audio       Audio       `yaml:"audio"`
	Timing      Timing      `yaml:"timing"`
	Arenas      []Arena     `yaml:"arenas"`
	Buttons     Buttons     `yaml:"buttons"`
	Knobs       Knobs       `yaml:"knobs"`
	BootPreset  int         `yaml:"boot_preset"`
	Persistence Persistence `yaml:"persistence"`
	Resources   Resources   `yaml:"resources"`
	Logging     Logging     `yaml:"logging"`
	Queues      Queues      `yaml:"queues"`
	Simulator   Simulator   `yaml:"simulator"`
}

// Audio holds the codec stream format.
type Audio struct {
	SampleRate int `yaml:"sample_rate"`
	HalfFrames int `yaml:"half_frames"`
}

// Timing holds the control thresholds as durations.
type Timing struct {
	Quiescence time.Duration `yaml:"quiescence"`
	Hysteresis time.Duration `yaml:"hysteresis"`
	Hold       time.Duration `yaml:"hold"`
	HoldCap    time.Duration `yaml:"hold_cap"`
	Ramp       time.Duration `yaml:"ramp"`
	RampMode   string        `yaml:"ramp_mode"`
}

// Arena describes one memory pool. The first arena is the default pool.
type Arena struct {
	Name string   `yaml:"name"`
	Size ByteSize `yaml:"size"`
}

// Buttons holds the button count and role assignment. -1 disables a role.
type Buttons struct {
	Count    int `yaml:"count"`
	Next     int `yaml:"next"`
	Previous int `yaml:"previous"`
	Edit     int `yaml:"edit"`
}

// Knobs holds the knob count, MIDI mapping and takeover deadband.
type Knobs struct {
	Count       int     `yaml:"count"`
	Deadband    float32 `yaml:"deadband"`
	MIDIChannel int     `yaml:"midi_channel"`
	CC          []int   `yaml:"cc"`
}

// Persistence selects where device state is stored.
type Persistence struct {
	// Backend is one of none, memory, local, s3, dynamodb, minio.
	Backend     string        `yaml:"backend"`
	Path        string        `yaml:"path"`
	Bucket      string        `yaml:"bucket"`
	Prefix      string        `yaml:"prefix"`
	Table       string        `yaml:"table"`
	Keep        int           `yaml:"keep"`
	Endpoint    string        `yaml:"endpoint"`
	AccessKey   string        `yaml:"access_key"`
	SecretKey   string        `yaml:"secret_key"`
	Secure      bool          `yaml:"secure"`
	MinInterval time.Duration `yaml:"min_interval"`
	Codec       string        `yaml:"codec"`
	Compression string        `yaml:"compression"`
}

// Resources holds device-wide budgets.
type Resources struct {
	ArenaBudget    ByteSize `yaml:"arena_budget"`
	FlashPerSecond ByteSize `yaml:"flash_per_second"`
	SlowWorkers    int64    `yaml:"slow_workers"`
}

// Logging configures the slow-context logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Queues sizes the cross-context queues.
type Queues struct {
	Events        int `yaml:"events"`
	Notifications int `yaml:"notifications"`
}

// Simulator configures the host simulator.
type Simulator struct {
	CodecDelay time.Duration `yaml:"codec_delay"`
	Source     string        `yaml:"source"`
	ToneHz     float64       `yaml:"tone_hz"`
	Headless   bool          `yaml:"headless"`
}

// Backends.
const (
	BackendNone     = "none"
	BackendMemory   = "memory"
	BackendLocal    = "local"
	BackendS3       = "s3"
	BackendDynamoDB = "dynamodb"
	BackendMinIO    = "minio"
)

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Audio: Audio{SampleRate: 48000, HalfFrames: 64},
		Timing: Timing{
			Quiescence: 2500 * time.Microsecond,
			Hysteresis: 6 * time.Millisecond,
			Hold:       time.Second,
			HoldCap:    2 * time.Second,
			Ramp:       10 * time.Millisecond,
			RampMode:   "exponential",
		},
		Arenas: []Arena{
			{Name: "fast", Size: 64 << 10},
			{Name: "sdram", Size: 8 << 20},
		},
		Buttons: Buttons{Count: 3, Next: 0, Previous: 1, Edit: 2},
		Knobs:   Knobs{Count: 4, Deadband: 0.02, CC: []int{20, 21, 22, 23}},
		Persistence: Persistence{
			Backend:     BackendMemory,
			Keep:        4,
			MinInterval: time.Second,
			Compression: "none",
		},
		Resources: Resources{SlowWorkers: 2},
		Logging:   Logging{Level: "info", Format: "text"},
		Queues:    Queues{Events: 256, Notifications: 256},
		Simulator: Simulator{CodecDelay: 50 * time.Millisecond, Source: "sine", ToneHz: 220},
	}
}

// Load reads and validates a configuration file. Unset fields keep their
// defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Parse decodes and validates YAML data.
func Parse(data []byte) (Config, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes and validates YAML from r. Unknown fields are rejected.
func Read(r io.Reader) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.Audio.SampleRate <= 0:
		return invalid("audio.sample_rate %d", c.Audio.SampleRate)
	case c.Audio.HalfFrames <= 0:
		return invalid("audio.half_frames %d", c.Audio.HalfFrames)
	case c.Timing.Quiescence < 0 || c.Timing.Hysteresis < 0 || c.Timing.Hold < 0 || c.Timing.Ramp < 0:
		return invalid("timing durations must not be negative")
	case c.Timing.HoldCap != 0 && c.Timing.HoldCap < c.Timing.Hold:
		return invalid("timing.hold_cap %v below hold %v", c.Timing.HoldCap, c.Timing.Hold)
	case len(c.Arenas) == 0:
		return invalid("at least one arena is required")
	case c.Buttons.Count < 0 || c.Buttons.Count > input.MaxButtons:
		return invalid("buttons.count %d", c.Buttons.Count)
	case c.Knobs.Count < 0:
		return invalid("knobs.count %d", c.Knobs.Count)
	case c.Knobs.Deadband < 0 || c.Knobs.Deadband >= 1:
		return invalid("knobs.deadband %v", c.Knobs.Deadband)
	case len(c.Knobs.CC) > c.Knobs.Count:
		return invalid("knobs.cc maps %d knobs, have %d", len(c.Knobs.CC), c.Knobs.Count)
	case c.BootPreset < 0:
		return invalid("boot_preset %d", c.BootPreset)
	}

	if _, ok := ramp.ParseMode(c.Timing.RampMode); !ok {
		return invalid("timing.ramp_mode %q", c.Timing.RampMode)
	}

	seen := make(map[string]bool, len(c.Arenas))
	for i, a := range c.Arenas {
		if a.Name == "" {
			return invalid("arenas[%d] has no name", i)
		}
		if seen[a.Name] {
			return invalid("arena %q defined twice", a.Name)
		}
		seen[a.Name] = true
		if a.Size <= 0 {
			return invalid("arena %q size %d", a.Name, a.Size)
		}
	}

	roles := []struct {
		name string
		idx  int
	}{{"next", c.Buttons.Next}, {"previous", c.Buttons.Previous}, {"edit", c.Buttons.Edit}}
	for _, r := range roles {
		if r.idx < -1 || r.idx >= c.Buttons.Count {
			return invalid("buttons.%s %d out of range", r.name, r.idx)
		}
	}

	for i, cc := range c.Knobs.CC {
		if cc < 0 || cc > 127 {
			return invalid("knobs.cc[%d] %d out of range", i, cc)
		}
	}
	if _, err := control.NewMapping(c.Knobs.MIDIChannel, c.ccs()); err != nil {
		return invalid("knobs: %v", err)
	}
	if _, err := c.LogLevel(); err != nil {
		return invalid("%v", err)
	}

	switch c.Persistence.Backend {
	case "", BackendNone, BackendMemory:
	case BackendLocal:
		if c.Persistence.Path == "" {
			return invalid("persistence.path required for local backend")
		}
	case BackendS3, BackendMinIO:
		if c.Persistence.Bucket == "" {
			return invalid("persistence.bucket required for %s backend", c.Persistence.Backend)
		}
		if c.Persistence.Backend == BackendMinIO && c.Persistence.Endpoint == "" {
			return invalid("persistence.endpoint required for minio backend")
		}
	case BackendDynamoDB:
		if c.Persistence.Table == "" {
			return invalid("persistence.table required for dynamodb backend")
		}
	default:
		return invalid("persistence.backend %q", c.Persistence.Backend)
	}
	if c.Persistence.MinInterval < 0 {
		return invalid("persistence.min_interval %v", c.Persistence.MinInterval)
	}
	return nil
}

// FrameDuration is the time covered by one half-buffer.
func (c Config) FrameDuration() time.Duration {
	return time.Duration(float64(c.Audio.HalfFrames) / float64(c.Audio.SampleRate) * float64(time.Second))
}

// frames converts d to whole frames, rounding up so a threshold is never
// shorter than configured.
func (c Config) frames(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	per := float64(c.Audio.HalfFrames) / float64(c.Audio.SampleRate)
	return int(math.Ceil(d.Seconds()/per - 1e-9))
}

// Frames converts the configuration into pipeline parameters.
func (c Config) Frames() pipeline.Config {
	mode, _ := ramp.ParseMode(c.Timing.RampMode)

	return pipeline.Config{
		SampleRate: c.Audio.SampleRate,
		HalfFrames: c.Audio.HalfFrames,
		Quiescence: max(2, c.frames(c.Timing.Quiescence)),
		Debounce: input.DebounceConfig{
			Hysteresis: max(1, c.frames(c.Timing.Hysteresis)),
			Hold:       c.frames(c.Timing.Hold),
			HoldCap:    c.frames(c.Timing.HoldCap),
		},
		Buttons:      c.Buttons.Count,
		Knobs:        c.Knobs.Count,
		RampMode:     mode,
		RampSamples:  ramp.Samples(c.Timing.Ramp, c.Audio.SampleRate),
		KnobDeadband: c.Knobs.Deadband,
		Roles: pipeline.ButtonRoles{
			Next:     c.Buttons.Next,
			Previous: c.Buttons.Previous,
			Edit:     c.Buttons.Edit,
		},
		EventQueue:  c.Queues.Events,
		NotifyQueue: c.Queues.Notifications,
	}
}

// Pools returns the arena pool layout.
func (c Config) Pools() []arena.PoolConfig {
	out := make([]arena.PoolConfig, len(c.Arenas))
	for i, a := range c.Arenas {
		out[i] = arena.PoolConfig{Name: a.Name, Size: int(a.Size)}
	}
	return out
}

// ResourceConfig returns the device-wide budgets.
func (c Config) ResourceConfig() resource.Config {
	return resource.Config{
		ArenaBudgetBytes: int64(c.Resources.ArenaBudget),
		MaxSlowWorkers:   c.Resources.SlowWorkers,
		FlashBytesPerSec: int64(c.Resources.FlashPerSecond),
	}
}

// Mapping returns the MIDI controller mapping.
func (c Config) Mapping() control.Mapping {
	m, err := control.NewMapping(c.Knobs.MIDIChannel, c.ccs())
	if err != nil {
		return control.Mapping{CC: map[uint8]int{}}
	}
	return m
}

func (c Config) ccs() []uint8 {
	out := make([]uint8, len(c.Knobs.CC))
	for i, cc := range c.Knobs.CC {
		out[i] = uint8(cc)
	}
	return out
}

// LogLevel parses the logging level.
func (c Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if c.Logging.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging.level %q", c.Logging.Level)
	}
	return lvl, nil
}
