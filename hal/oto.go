//go:build !headless

package hal

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoSink plays output through the host sound card. oto pulls from a ring
// buffer that Write fills; on underrun it plays silence and on overflow the
// oldest samples are dropped.
type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player

	mu      sync.Mutex
	ring    []byte
	r, n    int
	dropped uint64
}

// NewOtoSink opens the default output device.
func NewOtoSink(sampleRate int, latency time.Duration) (*OtoSink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   latency,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}
	<-ready

	// Four latencies of stereo float32.
	size := int(4*latency.Seconds()*float64(sampleRate)) * 8
	s := &OtoSink{ctx: ctx, ring: make([]byte, max(size, 4096))}
	s.player = ctx.NewPlayer(s)
	s.player.Play()
	return s, nil
}

// Write implements AudioSink.
func (s *OtoSink) Write(samples []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b [4]byte
	for _, v := range samples {
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
		for _, c := range b {
			if s.n == len(s.ring) {
				s.r = (s.r + 1) % len(s.ring)
				s.n--
				s.dropped++
			}
			s.ring[(s.r+s.n)%len(s.ring)] = c
			s.n++
		}
	}
	return nil
}

// Read is called by oto.
func (s *OtoSink) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := min(len(p), s.n)
	for i := 0; i < k; i++ {
		p[i] = s.ring[(s.r+i)%len(s.ring)]
	}
	s.r = (s.r + k) % len(s.ring)
	s.n -= k
	clear(p[k:])
	return len(p), nil
}

// Dropped returns the number of bytes dropped on overflow.
func (s *OtoSink) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close stops playback.
func (s *OtoSink) Close() error {
	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	return err
}
