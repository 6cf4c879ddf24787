package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateForwardsInsideRecoverableRange(t *testing.T) {
	for _, angle := range []float64{-29.9, 0, 29.9} {
		cmd, driving := Gate(angle, 123.45)
		assert.True(t, driving, "angle %v must drive", angle)
		assert.Equal(t, 123.45, cmd, "angle %v must forward the command unchanged", angle)
	}
}

func TestGateStopsOutsideRecoverableRange(t *testing.T) {
	// The comparison is a strict <: exactly 30.0 already stops.
	for _, angle := range []float64{30.0, 30.1, -30.0, 90, -90} {
		cmd, driving := Gate(angle, 123.45)
		assert.False(t, driving, "angle %v must stop", angle)
		assert.Equal(t, 0.0, cmd, "angle %v must zero the command", angle)
	}
}

func TestGateIsPure(t *testing.T) {
	c1, d1 := Gate(12.3, -400)
	c2, d2 := Gate(12.3, -400)
	assert.Equal(t, c1, c2)
	assert.Equal(t, d1, d2)
}
