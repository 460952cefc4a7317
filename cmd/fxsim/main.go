// Command fxsim runs the effects core against the host simulator.
//
// Buttons and knobs are driven from the keyboard, audio goes to the sound
// card (or nowhere with -headless) and the display panel is redrawn in the
// terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/hupe1980/fxcore"
	"github.com/hupe1980/fxcore/config"
	"github.com/hupe1980/fxcore/display"
	"github.com/hupe1980/fxcore/hal"
	"github.com/hupe1980/fxcore/presets"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fxsim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		headless   = flag.Bool("headless", false, "discard audio instead of playing it")
		midiPort   = flag.String("midi", "", "MIDI input port to listen on")
		logPath    = flag.String("log", "", "write logs to this file instead of stderr")
		duration   = flag.Duration("duration", 0, "stop after this long (0 runs until q or Ctrl-C)")
		dump       = flag.Bool("dump-config", false, "print the effective configuration and exit")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *headless {
		cfg.Simulator.Headless = true
	}

	if *dump {
		out, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	logger, closeLog, err := openLogger(cfg, *logPath, interactive)
	if err != nil {
		return err
	}
	defer closeLog()

	table, err := presets.Default(delayPool(cfg))
	if err != nil {
		return err
	}

	controls := hal.NewControls(cfg.Buttons.Count, cfg.Knobs.Count)
	panel := display.NewPanel(cfg.Knobs.Count, table.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	store, err := fxcore.OpenStore(ctx, cfg.Persistence)
	if err != nil {
		return err
	}

	mc := &fxcore.BasicMetricsCollector{}
	dev, err := fxcore.New(table,
		fxcore.WithConfig(cfg),
		fxcore.WithLogger(logger),
		fxcore.WithInputSource(controls),
		fxcore.WithStateStore(store),
		fxcore.WithDisplay(panel),
		fxcore.WithMetricsCollector(mc),
		fxcore.WithBringUp(hal.Codec{Delay: cfg.Simulator.CodecDelay}),
	)
	if err != nil {
		return err
	}

	sink, closeSink, err := openSink(cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	sim := hal.NewSimulator(dev.Pipeline(), openSource(cfg), sink)

	if err := dev.Boot(ctx); err != nil {
		return err
	}
	panel.Loading()

	if *midiPort != "" {
		stopMIDI, err := dev.ListenMIDI(*midiPort)
		if err != nil {
			return err
		}
		defer stopMIDI()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sim.Run(gctx) })
	g.Go(func() error { return dev.Run(gctx) })

	if interactive {
		kb, err := startKeyboard(controls, cfg, cancel)
		if err != nil {
			return err
		}
		defer kb.Stop()
		g.Go(func() error { return render(gctx, panel, kb) })
	}

	err = g.Wait()
	if closeErr := dev.Close(context.Background()); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	stats := mc.GetStats()
	logger.Info("stopped",
		"frames", stats.Frames,
		"switches", stats.Switches,
		"failed_switches", stats.FailedSwitches,
		"deadline_misses", stats.DeadlineMisses,
		"sink_errors", sim.SinkErrors(),
	)
	return err
}

func delayPool(cfg config.Config) string {
	for _, a := range cfg.Arenas {
		if a.Name == "sdram" {
			return a.Name
		}
	}
	return ""
}

func openLogger(cfg config.Config, path string, interactive bool) (*fxcore.Logger, func(), error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case path != "":
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case interactive:
		// The panel owns the terminal.
		return fxcore.NoopLogger(), closeFn, nil
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.Format == "json" {
		return fxcore.NewLogger(slog.NewJSONHandler(w, opts)), closeFn, nil
	}
	return fxcore.NewLogger(slog.NewTextHandler(w, opts)), closeFn, nil
}

func openSource(cfg config.Config) hal.AudioSource {
	switch cfg.Simulator.Source {
	case "silence":
		return hal.Silence{}
	case "noise":
		return hal.NewNoise(uint64(time.Now().UnixNano()), 0.25)
	default:
		return hal.NewSine(cfg.Simulator.ToneHz, cfg.Audio.SampleRate, 0.5)
	}
}

func openSink(cfg config.Config) (hal.AudioSink, func(), error) {
	if cfg.Simulator.Headless {
		return hal.NullSink{}, func() {}, nil
	}
	latency := max(4*cfg.FrameDuration(), 20*time.Millisecond)
	s, err := hal.NewOtoSink(cfg.Audio.SampleRate, latency)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}

func render(ctx context.Context, panel *display.Panel, kb *keyboard) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	var seen uint64 = ^uint64(0)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		n := panel.Updates() + kb.Changes()
		if n == seen {
			continue
		}
		seen = n

		// Raw mode needs explicit carriage returns.
		out := "\x1b[H\x1b[2J" + crlf(panel.Render()) + "\r\n\r\n" + crlf(kb.Help()) + "\r\n"
		_, _ = os.Stdout.WriteString(out)
	}
}

func crlf(s string) string {
	out := make([]byte, 0, len(s)+16)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, '\r')
		}
		out = append(out, s[i])
	}
	return string(out)
}
