package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, float32(0), Normalize(0))
	assert.Equal(t, float32(1), Normalize(MaxRaw))
}

func TestKnob_Takeover(t *testing.T) {
	k := NewKnob(0.1)
	_, moved := k.Update(MaxRaw / 2)
	assert.True(t, moved)

	k.Disengage()
	assert.False(t, k.Engaged())

	// Jitter inside the deadband is ignored.
	_, moved = k.Update(MaxRaw/2 + MaxRaw/20)
	assert.False(t, moved)

	pos, moved := k.Update(MaxRaw)
	assert.True(t, moved)
	assert.True(t, k.Engaged())
	assert.Equal(t, float32(1), pos)
	assert.Equal(t, float32(1), k.Position())
}

func TestKnob_NoDeadband(t *testing.T) {
	k := NewKnob(0)
	k.Disengage()
	assert.True(t, k.Engaged())

	_, moved := k.Update(100)
	assert.True(t, moved)
	_, moved = k.Update(100)
	assert.False(t, moved)
}
