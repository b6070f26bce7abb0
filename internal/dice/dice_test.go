package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollStaysInRange(t *testing.T) {
	r := New(42)
	for i := 0; i < 500; i++ {
		v := r.Roll(20)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 20)
	}
}

func TestRollIsDeterministicForSeed(t *testing.T) {
	a, b := New(7), New(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Roll(20), b.Roll(20))
	}
}

func TestRollNonPositiveSides(t *testing.T) {
	r := New(1)
	assert.Equal(t, 0, r.Roll(0))
	assert.Equal(t, 0, r.Roll(-4))
}

func TestNewRandom(t *testing.T) {
	r, err := NewRandom()
	require.NoError(t, err)
	v := r.Roll(6)
	assert.True(t, v >= 1 && v <= 6)
}
