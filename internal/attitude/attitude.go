// Copyright (c) 2026 Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package attitude

import (
	"math"
)

// AccelAngle computes the instantaneous tilt angle, in degrees from
// vertical, from two linear-acceleration components. It is the
// four-quadrant inverse tangent of (accX, −accZ): 0° when gravity sits
// on −Z (robot upright), ±90° lying on its side, ±180° upside down.
//
// The result is noisy and unqualified on its own; it is one input to
// the fusion filter, never a drive-ready angle. Defined for all finite
// inputs, including accX == 0 or accZ == 0.
func AccelAngle(accX, accZ float64) float64 {
	return math.Atan2(accX, -accZ) * 180.0 / math.Pi
}

// Complementary fuses the accelerometer tilt angle with the gyroscopic
// rate: the gyro integral dominates over short horizons, the
// accelerometer mean pulls out the drift over long ones.
//
//	angle = a*(angle + rate*dt) + (1-a)*accelAngle
type Complementary struct {
	coeff float64
	angle float64
}

// DefaultCoeff weights ~0.5s of gyro trust at a 15ms cycle.
const DefaultCoeff = 0.98

// NewComplementary returns a filter with the given gyro weight in
// (0,1). The state is zero until Reset seeds it.
func NewComplementary(coeff float64) *Complementary {
	return &Complementary{coeff: coeff}
}

// Reset seeds the filter state, in degrees. Called once with the
// calibration orientation (±90°) before the control loop starts.
func (c *Complementary) Reset(seedDeg float64) {
	c.angle = seedDeg
}

// Update advances the filter by dt seconds and returns the fused angle.
// accAngle is in degrees, gyroRate in °/s.
func (c *Complementary) Update(accAngle, gyroRate, dt float64) float64 {
	c.angle = c.coeff*(c.angle+gyroRate*dt) + (1-c.coeff)*accAngle
	return c.angle
}

// Angle returns the current fused angle without advancing the filter.
func (c *Complementary) Angle() float64 {
	return c.angle
}
