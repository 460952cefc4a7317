package module

import (
	"testing"

	"github.com/hupe1980/fxcore/arena"
	"github.com/hupe1980/fxcore/ramp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type named struct{ Bypass }

func (named) Name() string { return "named" }

func TestNewTable(t *testing.T) {
	tbl, err := NewTable(
		Descriptor{Module: Bypass{}, Fallback: true},
		Descriptor{Module: named{}},
		Descriptor{Name: "gain", Module: Bypass{}},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, "bypass", tbl.Name(0))
	assert.Equal(t, "named", tbl.Name(1))
	assert.Equal(t, 0, tbl.Fallback())

	id, ok := tbl.Lookup("gain")
	assert.True(t, ok)
	assert.Equal(t, 2, id)

	_, ok = tbl.At(3)
	assert.False(t, ok)
	assert.Equal(t, "", tbl.Name(-1))
}

func TestNewTable_Errors(t *testing.T) {
	_, err := NewTable()
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, err = NewTable(Descriptor{Name: "x"})
	assert.ErrorIs(t, err, ErrNilModule)

	_, err = NewTable(Descriptor{Name: "x", Module: Bypass{}}, Descriptor{Name: "x", Module: Bypass{}})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestTable_NextPrevious(t *testing.T) {
	tbl, err := NewTable(
		Descriptor{Name: "a", Module: Bypass{}},
		Descriptor{Name: "b", Module: Bypass{}},
		Descriptor{Name: "c", Module: Bypass{}},
	)
	require.NoError(t, err)

	assert.Equal(t, 1, tbl.Next(0))
	assert.Equal(t, 0, tbl.Next(2))
	assert.Equal(t, 0, tbl.Next(-1))
	assert.Equal(t, 2, tbl.Previous(0))
	assert.Equal(t, 0, tbl.Previous(1))
	assert.Equal(t, -1, tbl.Fallback())
}

func TestEnv(t *testing.T) {
	pools, err := arena.NewPools([]arena.PoolConfig{{Name: "fast", Size: 1024}, {Name: "sdram", Size: 4096}})
	require.NoError(t, err)
	defer pools.Close()

	env := &Env{Pools: pools, Knobs: ramp.NewBank(2, ramp.Linear, 0)}

	a, err := env.Arena("")
	require.NoError(t, err)
	assert.Equal(t, "fast", a.Name())

	a, err = env.Arena("sdram")
	require.NoError(t, err)
	assert.Equal(t, "sdram", a.Name())

	_, err = env.Arena("missing")
	assert.ErrorIs(t, err, arena.ErrUnknownPool)

	assert.NotNil(t, env.Knob(1))
	assert.Nil(t, env.Knob(2))

	_, err = (&Env{}).Arena("")
	assert.ErrorIs(t, err, arena.ErrUnknownPool)
}

func TestBypass(t *testing.T) {
	var m Module = Bypass{}
	require.NoError(t, m.Allocate(nil))
	m.AdvanceControlRate(nil)
	assert.Equal(t, float32(0.25), m.ProcessSample(0.25))
	assert.NoError(t, m.Release(nil))
}
