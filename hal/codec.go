package hal

import (
	"context"
	"time"
)

// ReadySetter is notified once the codec is configured.
// *pipeline.Pipeline implements it.
type ReadySetter interface {
	SetCodecReady()
}

// Codec simulates codec register bring-up taking Delay.
type Codec struct {
	Delay time.Duration
}

// BringUp waits for the configured delay and marks p ready.
func (c Codec) BringUp(ctx context.Context, p ReadySetter) error {
	if c.Delay > 0 {
		t := time.NewTimer(c.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	p.SetCodecReady()
	return nil
}
