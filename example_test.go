package fxcore_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/fxcore"
	"github.com/hupe1980/fxcore/blobstore"
	"github.com/hupe1980/fxcore/config"
	"github.com/hupe1980/fxcore/hal"
	"github.com/hupe1980/fxcore/presets"
)

// Example demonstrates booting a device and switching presets with a button.
func Example() {
	ctx := context.Background()

	table, err := presets.Default("sdram")
	if err != nil {
		log.Fatal(err)
	}

	cfg := config.Default()
	cfg.Timing.Hysteresis = 0

	controls := hal.NewControls(cfg.Buttons.Count, cfg.Knobs.Count)
	dev, err := fxcore.New(table,
		fxcore.WithConfig(cfg),
		fxcore.WithLogger(fxcore.NoopLogger()),
		fxcore.WithInputSource(controls),
		fxcore.WithStateStore(blobstore.NewMemoryStore()),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer dev.Close(ctx)

	if err := dev.Boot(ctx); err != nil {
		log.Fatal(err)
	}
	dev.Pipeline().SetCodecReady()

	sim := hal.NewSimulator(dev.Pipeline(), hal.Silence{}, hal.NullSink{})
	sim.Step()
	dev.Poll(ctx)
	fmt.Println(table.Name(dev.Status().Active))

	controls.SetPin(cfg.Buttons.Next, true)
	sim.Steps(8)
	controls.SetPin(cfg.Buttons.Next, false)
	sim.Steps(8)
	dev.Poll(ctx)
	fmt.Println(table.Name(dev.Status().Active))

	// Output:
	// bypass
	// gain
}
