package imu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrectedSubtractsEveryAxis(t *testing.T) {
	s := RawSample{Ax: 100, Ay: -50, Az: 16384, Gx: 7, Gy: -7, Gz: 1}
	o := Offsets{Ax: 10, Ay: -10, Az: 4, Gx: 7, Gy: -7, Gz: 1}

	got := s.Corrected(o)
	assert.Equal(t, RawSample{Ax: 90, Ay: -40, Az: 16380}, got)
}

func TestScaleConversions(t *testing.T) {
	assert.InDelta(t, 1.0, AccelG(16384), 1e-12)
	assert.InDelta(t, GravityMS2, AccelMS2(16384), 1e-9)
	assert.InDelta(t, 1.0, GyroDPS(131), 1e-12)
	assert.InDelta(t, -250.0, GyroDPS(-32750), 0.1)
}
