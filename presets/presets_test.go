package presets

import (
	"testing"

	"github.com/hupe1980/fxcore/arena"
	"github.com/hupe1980/fxcore/module"
	"github.com/hupe1980/fxcore/ramp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnv(t *testing.T, sdram int) *module.Env {
	t.Helper()
	pools, err := arena.NewPools([]arena.PoolConfig{
		{Name: "fast", Size: 4096},
		{Name: "sdram", Size: sdram},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pools.Close() })

	return &module.Env{
		Pools:      pools,
		Knobs:      ramp.NewBank(4, ramp.Linear, 0),
		SampleRate: 1000,
		FrameSize:  16,
	}
}

func TestDefault(t *testing.T) {
	tbl, err := Default("sdram")
	require.NoError(t, err)

	assert.Equal(t, 5, tbl.Len())
	assert.Equal(t, 0, tbl.Fallback())
	for _, name := range []string{"bypass", "gain", "tremolo", "delay", "gate"} {
		_, ok := tbl.Lookup(name)
		assert.True(t, ok, name)
	}
}

func TestPresets_Lifecycle(t *testing.T) {
	tbl, err := Default("sdram")
	require.NoError(t, err)
	env := newEnv(t, 16*1024)

	for id := 0; id < tbl.Len(); id++ {
		d, _ := tbl.At(id)
		t.Run(d.Name, func(t *testing.T) {
			env.Knobs.ResetAll(d.Defaults)
			require.NoError(t, d.Module.Allocate(env))

			d.Module.AdvanceControlRate(env)
			for i := 0; i < 100; i++ {
				env.Knobs.Tick()
				if sp, ok := d.Module.(module.StereoProcessor); ok {
					sp.ProcessStereo(0.5, -0.5)
				} else {
					d.Module.ProcessSample(0.5)
				}
			}

			require.NoError(t, d.Module.Release(env))
			for _, a := range env.Pools.All() {
				assert.Equal(t, 0, a.Live(), "%s leaks in %s", d.Name, a.Name())
				require.NoError(t, a.Audit())
			}
		})
	}
}

func TestGain(t *testing.T) {
	env := newEnv(t, 1024)
	env.Knobs.ResetAll([]ramp.Value{{Value: 0.25, Destination: 0.25}})

	g := &Gain{}
	require.NoError(t, g.Allocate(env))
	assert.Equal(t, float32(0.5), g.ProcessSample(1))
	require.NoError(t, g.Release(env))
	assert.Equal(t, float32(1), g.ProcessSample(1), "released gain uses the default level")
}

func TestTremolo(t *testing.T) {
	env := newEnv(t, 1024)
	env.Knobs.ResetAll([]ramp.Value{{Value: 0, Destination: 0}, {Value: 1, Destination: 1}})

	tr := &Tremolo{}
	require.NoError(t, tr.Allocate(env))
	assert.Equal(t, 1, env.Pools.Default().Live(), "oscillator state lives in the arena")

	tr.AdvanceControlRate(env)
	minV, maxV := float32(2), float32(-1)
	for i := 0; i < 2*env.SampleRate; i++ {
		l, r := tr.ProcessStereo(1, 1)
		require.Equal(t, l, r)
		minV = min(minV, l)
		maxV = max(maxV, l)
	}
	assert.InDelta(t, 0, minV, 0.01)
	assert.InDelta(t, 1, maxV, 0.01)
	require.NoError(t, tr.Release(env))
}

func TestDelay(t *testing.T) {
	env := newEnv(t, 16*1024)
	// time 0 gives a one-sample delay, no feedback, fully wet.
	env.Knobs.ResetAll([]ramp.Value{{}, {}, {Value: 1, Destination: 1}})

	d := &Delay{Pool: "sdram", MaxSeconds: 1}
	require.NoError(t, d.Allocate(env))

	sdram, err := env.Pools.Get("sdram")
	require.NoError(t, err)
	assert.Equal(t, 2, sdram.Live())

	l, r := d.ProcessStereo(1, -1)
	assert.Equal(t, float32(0), l)
	assert.Equal(t, float32(0), r)

	l, r = d.ProcessStereo(0, 0)
	assert.Equal(t, float32(1), l)
	assert.Equal(t, float32(-1), r)

	require.NoError(t, d.Release(env))
	assert.Equal(t, 0, sdram.Live())
}

func TestDelay_OutOfMemory(t *testing.T) {
	env := newEnv(t, 1024)
	d := &Delay{Pool: "sdram", MaxSeconds: 1}

	err := d.Allocate(env)
	assert.ErrorIs(t, err, arena.ErrOutOfMemory)
	require.NoError(t, d.Release(env))

	sdram, _ := env.Pools.Get("sdram")
	assert.Equal(t, 0, sdram.Live())
}

func TestGate(t *testing.T) {
	env := newEnv(t, 1024)
	env.Knobs.ResetAll([]ramp.Value{{Value: 1, Destination: 1}})

	g := &Gate{}
	require.NoError(t, g.Allocate(env))

	settle := func() float32 {
		g.AdvanceControlRate(env)
		var v float32
		for i := 0; i < 10; i++ {
			v = g.ProcessSample(1)
		}
		return v
	}

	assert.Equal(t, float32(0), settle(), "closed gate with full attenuation")

	g.NoteOn(60, 127)
	assert.Equal(t, float32(1), settle())

	g.NoteOn(64, 0)
	g.NoteOff(60)
	assert.Equal(t, float32(0), settle())

	g.NoteOff(200)
	require.NoError(t, g.Release(env))
}
