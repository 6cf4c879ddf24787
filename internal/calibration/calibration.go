// Copyright (c) 2026 Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package calibration

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/balance_robot/internal/imu"
)

// Samples is the number of raw readings averaged per axis. A power of
// two, so the integer mean divides exactly.
const Samples = 512

// SampleInterval is the fixed delay between consecutive readings.
const SampleInterval = 5 * time.Millisecond

// Reader is the raw sample source. Satisfied by sensors.MPU6050 and
// the sensors.Mock.
type Reader interface {
	ReadRaw() (imu.RawSample, error)
}

// Sleeper paces the sampling. Injectable so tests run without real
// delays.
type Sleeper interface {
	Sleep(d time.Duration)
}

// Blinker signals "calibration in progress". Advisory only.
type Blinker interface {
	StartBlink()
	StopBlink()
}

// Result is what calibration produces: the per-axis offsets and the
// resting orientation of the gravity axis.
type Result struct {
	Offsets imu.Offsets `json:"offsets"`
	// Up records whether the accelerometer X axis initially points
	// toward gravity. It seeds the fusion filter at +90° (up) or
	// −90° (down).
	Up bool `json:"up"`
}

// SeedAngle is the fusion filter seed implied by the orientation, in
// degrees from vertical.
func (r Result) SeedAngle() float64 {
	if r.Up {
		return 90
	}
	return -90
}

// Calibrator computes the steady-state bias of all six sensor axes.
// The robot must be held stationary in one of its two rest positions
// (gravity axis up or down) for the whole run.
type Calibrator struct {
	reader  Reader
	sleeper Sleeper
	blinker Blinker
}

// New assembles a calibrator. blinker may be status.Nop{}.
func New(reader Reader, sleeper Sleeper, blinker Blinker) *Calibrator {
	return &Calibrator{reader: reader, sleeper: sleeper, blinker: blinker}
}

// Run acquires the fixed sample budget, one reading every
// SampleInterval, and averages each axis. Invoked exactly once, before
// the control loop starts.
//
// The gravity axis (accelerometer X) gets special treatment: its mean
// carries the 1g constant on top of the bias, so the offset is the
// mean minus the full-scale gravity reading when the axis points up,
// or plus it when pointing down. Once subtracted, a resting reading
// shows zero bias plus the true 1g term. A mean of exactly zero
// resolves to "down"; that boundary is ambiguous in principle (the
// robot would have to be perfectly horizontal) and is logged when hit.
func (c *Calibrator) Run(ctx context.Context) (Result, error) {
	c.blinker.StartBlink()
	defer c.blinker.StopBlink()

	log.Printf("calibration: averaging %d samples, hold the robot still", Samples)

	var sumAx, sumAy, sumAz, sumGx, sumGy, sumGz int64
	for i := 0; i < Samples; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("calibration aborted: %w", err)
		}

		s, err := c.reader.ReadRaw()
		if err != nil {
			return Result{}, fmt.Errorf("calibration sample %d: %w", i, err)
		}
		sumAx += int64(s.Ax)
		sumAy += int64(s.Ay)
		sumAz += int64(s.Az)
		sumGx += int64(s.Gx)
		sumGy += int64(s.Gy)
		sumGz += int64(s.Gz)

		c.sleeper.Sleep(SampleInterval)
	}

	meanAx := sumAx / Samples

	res := Result{
		Offsets: imu.Offsets{
			Ay: int16(sumAy / Samples),
			Az: int16(sumAz / Samples),
			Gx: int16(sumGx / Samples),
			Gy: int16(sumGy / Samples),
			Gz: int16(sumGz / Samples),
		},
	}

	if meanAx > 0 {
		res.Up = true
		res.Offsets.Ax = int16(meanAx - imu.FullScaleGravity)
	} else {
		if meanAx == 0 {
			log.Printf("calibration: gravity-axis mean is exactly zero, defaulting orientation to down")
		}
		res.Offsets.Ax = int16(meanAx + imu.FullScaleGravity)
	}

	log.Printf("calibration: done, offsets=%+v orientation up=%v", res.Offsets, res.Up)
	return res, nil
}
