// Copyright (c) 2026 Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

// Sensor scale constants for the MPU6050 at the ranges this robot uses
// (±2g accelerometer, ±250°/s gyroscope).
const (
	// AccelLSBPerG is the accelerometer sensitivity: raw counts per 1g.
	AccelLSBPerG = 16384.0

	// GyroLSBPerDPS is the gyroscope sensitivity: raw counts per °/s.
	GyroLSBPerDPS = 131.0

	// GravityMS2 is standard gravity in m/s².
	GravityMS2 = 9.80665

	// FullScaleGravity is the expected raw reading of an accelerometer
	// axis aligned with gravity, used by calibration to split the 1g
	// constant from the axis bias.
	FullScaleGravity = 16384
)

// RawSample is one six-axis reading in the sensor's native counts.
// Produced every cycle, never retained.
type RawSample struct {
	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`
}

// Offsets holds the per-axis bias computed once by calibration.
// Immutable after calibration completes.
type Offsets struct {
	Ax int16 `json:"ax"`
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`
	Gx int16 `json:"gx"`
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`
}

// Corrected returns the sample with the calibration offsets subtracted
// component-wise. Every sample goes through this before any angle math.
func (s RawSample) Corrected(o Offsets) RawSample {
	return RawSample{
		Ax: s.Ax - o.Ax,
		Ay: s.Ay - o.Ay,
		Az: s.Az - o.Az,
		Gx: s.Gx - o.Gx,
		Gy: s.Gy - o.Gy,
		Gz: s.Gz - o.Gz,
	}
}

// AccelG converts a raw accelerometer count to g.
func AccelG(raw int16) float64 {
	return float64(raw) / AccelLSBPerG
}

// AccelMS2 converts a raw accelerometer count to m/s².
func AccelMS2(raw int16) float64 {
	return AccelG(raw) * GravityMS2
}

// GyroDPS converts a raw gyroscope count to °/s.
func GyroDPS(raw int16) float64 {
	return float64(raw) / GyroLSBPerDPS
}
