// Copyright (c) 2026 Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package control holds the real-time stabilization loop: timed
// sampling, bias correction, angle estimation orchestration,
// closed-loop correction and the actuation safety gate.
package control

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/relabs-tech/balance_robot/internal/attitude"
	"github.com/relabs-tech/balance_robot/internal/calibration"
	"github.com/relabs-tech/balance_robot/internal/imu"
)

// State of the cycle driver. STABILIZING is terminal: the loop runs
// until the context is cancelled or power is lost.
type State int

const (
	Uninitialized State = iota
	Calibrating
	Stabilizing
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Calibrating:
		return "calibrating"
	case Stabilizing:
		return "stabilizing"
	default:
		return "unknown"
	}
}

// Sensor is the six-axis inertial source.
type Sensor interface {
	Connect() error
	ReadRaw() (imu.RawSample, error)
}

// Fusion is the external angle estimator: seeded once, then fed the
// accelerometer angle, gyro rate and measured elapsed time each cycle.
type Fusion interface {
	Reset(seedDeg float64)
	Update(accAngle, gyroRate, dt float64) float64
}

// Corrector turns the fused angle into a drive command. Gains and
// setpoint are its own configuration, not the driver's.
type Corrector interface {
	Update(angle, dt float64) float64
}

// Motor is the actuator driver. Stop is an explicit zero-power
// command, not an omission.
type Motor interface {
	Init() error
	Drive(cmd float64) error
	Stop() error
}

// Indicator is the advisory status signal.
type Indicator interface {
	StartBlink()
	StopBlink()
	Set(on bool)
}

// CycleRecord is one cycle's diagnostic snapshot.
type CycleRecord struct {
	Time       time.Time `json:"t"`
	AccelAngle float64   `json:"accel_angle"`
	FusedAngle float64   `json:"fused_angle"`
	Command    float64   `json:"command"`
	Driving    bool      `json:"driving"`
}

// Options configures a Driver. Zero values get defaults from
// NewDriver; feature toggles are runtime flags, never build tags.
type Options struct {
	// LoopInterval is the cadence sleep added after each cycle's
	// processing. The elapsed time fed to fusion and corrector is
	// measured, never assumed equal to this.
	LoopInterval time.Duration

	// Trace, when non-nil, receives one tab-separated line per
	// cycle: accel angle, fused angle, command. Diagnostic only.
	Trace io.Writer

	// OnCycle, when non-nil, is called with each cycle's record
	// (telemetry publishing). Must not block.
	OnCycle func(CycleRecord)

	Clock Clock
}

// Driver owns the control cycle: it is the timing authority and the
// exclusive owner of the calibration offsets and the previous-cycle
// timestamp.
type Driver struct {
	sensor    Sensor
	fusion    Fusion
	corrector Corrector
	motor     Motor
	indicator Indicator
	opts      Options

	state   State
	offsets imu.Offsets // write-once in Calibrate, read-only after
	prev    time.Time
}

// DefaultLoopInterval is the target cadence between cycles, on top of
// processing time.
const DefaultLoopInterval = 15 * time.Millisecond

// NewDriver wires the collaborators. The motor is initialized first
// (side-effect-free with respect to the sensor), then sensor
// connectivity is verified; a failure there is fatal and no control
// state is ever entered.
func NewDriver(sensor Sensor, fusion Fusion, corrector Corrector, motor Motor, indicator Indicator, opts Options) (*Driver, error) {
	if opts.LoopInterval <= 0 {
		opts.LoopInterval = DefaultLoopInterval
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}

	if err := motor.Init(); err != nil {
		return nil, fmt.Errorf("control: motor init: %w", err)
	}
	if err := sensor.Connect(); err != nil {
		return nil, fmt.Errorf("control: sensor connect: %w", err)
	}

	return &Driver{
		sensor:    sensor,
		fusion:    fusion,
		corrector: corrector,
		motor:     motor,
		indicator: indicator,
		opts:      opts,
		state:     Uninitialized,
	}, nil
}

// State returns the driver's current state.
func (d *Driver) State() State { return d.state }

// Offsets returns the calibration offsets. Zero until Calibrate runs.
func (d *Driver) Offsets() imu.Offsets { return d.offsets }

// Calibrate runs the offset calibration and seeds the fusion filter
// from the measured rest orientation. Must be called exactly once,
// before Run, with the robot held still.
func (d *Driver) Calibrate(ctx context.Context) error {
	if d.state != Uninitialized {
		return fmt.Errorf("control: calibrate in state %s", d.state)
	}
	d.state = Calibrating

	cal := calibration.New(d.sensor, d.opts.Clock, d.indicator)
	res, err := cal.Run(ctx)
	if err != nil {
		d.state = Uninitialized
		return err
	}

	d.offsets = res.Offsets
	d.fusion.Reset(res.SeedAngle())
	return nil
}

// Run enters STABILIZING and loops until ctx is cancelled. Each cycle:
// measure elapsed time, acquire a bias-corrected sample, estimate the
// angle, compute the correction, gate it, actuate. Cancellation is
// checked between cycles; the cadence sleep itself is not preemptible.
func (d *Driver) Run(ctx context.Context) error {
	if d.state != Calibrating {
		return fmt.Errorf("control: run in state %s (calibrate first)", d.state)
	}
	d.state = Stabilizing
	d.indicator.Set(true)
	log.Printf("control: stabilizing, loop interval %s, safety limit ±%.0f°", d.opts.LoopInterval, SafetyLimitDeg)

	d.prev = d.opts.Clock.Now()
	for {
		if err := ctx.Err(); err != nil {
			d.indicator.Set(false)
			if stopErr := d.motor.Stop(); stopErr != nil {
				log.Printf("control: stop on shutdown: %v", stopErr)
			}
			return err
		}
		d.cycle()
		d.opts.Clock.Sleep(d.opts.LoopInterval)
	}
}

// cycle runs one control iteration. The elapsed time handed to the
// fusion filter and corrector is measured from the timestamp captured
// at the top of the previous cycle to the one captured here, so this
// cycle's own processing latency lands in the next delta, not silently
// in this one. dt can be zero or, after a stall, very large; both pass
// through unclamped (the time-integrating collaborators absorb the
// consequences, a known risk of this design).
func (d *Driver) cycle() {
	now := d.opts.Clock.Now()
	dt := now.Sub(d.prev).Seconds()
	d.prev = now

	raw, err := d.sensor.ReadRaw()
	if err != nil {
		// Fail-safe posture: no sample, no actuation this cycle.
		log.Printf("control: sensor read: %v", err)
		if stopErr := d.motor.Stop(); stopErr != nil {
			log.Printf("control: stop: %v", stopErr)
		}
		return
	}
	sample := raw.Corrected(d.offsets)

	ax := imu.AccelMS2(sample.Ax)
	az := imu.AccelMS2(sample.Az)
	gyroRate := imu.GyroDPS(sample.Gy) // pitch axis

	accAngle := attitude.AccelAngle(ax, az)
	fused := d.fusion.Update(accAngle, gyroRate, dt)
	command := d.corrector.Update(fused, dt)

	gated, driving := Gate(fused, command)
	if driving {
		err = d.motor.Drive(gated)
	} else {
		err = d.motor.Stop()
	}
	if err != nil {
		log.Printf("control: actuator: %v", err)
	}

	if d.opts.Trace != nil {
		fmt.Fprintf(d.opts.Trace, "%.4f\t%.4f\t%.4f\n", accAngle, fused, gated)
	}
	if d.opts.OnCycle != nil {
		d.opts.OnCycle(CycleRecord{
			Time:       now,
			AccelAngle: accAngle,
			FusedAngle: fused,
			Command:    gated,
			Driving:    driving,
		})
	}
}
