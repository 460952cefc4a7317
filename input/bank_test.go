package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBank(t *testing.T) {
	b, err := NewBank(3, DebounceConfig{Hysteresis: 2})
	require.NoError(t, err)
	require.Equal(t, 3, b.Len())

	raw := []bool{true, false, true}
	out := make([]Events, 3)

	b.Tick(raw, out)
	assert.Equal(t, []Events{0, 0, 0}, out)

	b.Tick(raw, out)
	assert.Equal(t, []Events{Press, 0, Press}, out)
	assert.True(t, b.Pressed(0))
	assert.False(t, b.Pressed(1))
	assert.Equal(t, 2, b.PressedCount())
	assert.Equal(t, uint64(0b101), b.Mask())

	b.Reset()
	assert.Equal(t, uint64(0), b.Mask())
	assert.False(t, b.Button(0).Pressed())
	assert.Nil(t, b.Button(3))
}

func TestBank_ShortInput(t *testing.T) {
	b, err := NewBank(2, DebounceConfig{})
	require.NoError(t, err)

	out := make([]Events, 2)
	b.Tick([]bool{true}, out)
	assert.Equal(t, Press, out[0])
	assert.Equal(t, Events(0), out[1])
}

func TestNewBank_TooMany(t *testing.T) {
	_, err := NewBank(MaxButtons+1, DebounceConfig{})
	assert.ErrorIs(t, err, ErrTooManyButtons)
}

func BenchmarkBankTick(b *testing.B) {
	bank, _ := NewBank(8, DebounceConfig{Hysteresis: 5, Hold: 100, HoldCap: 200})
	raw := make([]bool, 8)
	out := make([]Events, 8)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		raw[i%8] = !raw[i%8]
		bank.Tick(raw, out)
	}
}
