// Copyright (c) 2026 Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pid

// Controller is a PID corrector with an explicit time step. The three
// gains and the setpoint are externally owned configuration; the
// controller never mutates them.
type Controller struct {
	kp, ki, kd float64
	setpoint   float64

	outMin, outMax float64

	integral  float64
	lastError float64
	primed    bool
}

// New returns a controller targeting setpoint (degrees, nominally 0°
// vertical) with output clamped to [-limit, limit].
func New(kp, ki, kd, setpoint, limit float64) *Controller {
	return &Controller{
		kp:       kp,
		ki:       ki,
		kd:       kd,
		setpoint: setpoint,
		outMin:   -limit,
		outMax:   limit,
	}
}

// Update advances the loop by dt seconds given the measured angle and
// returns the drive command. A non-positive dt skips the integral and
// derivative terms rather than dividing by zero.
func (c *Controller) Update(angle, dt float64) float64 {
	err := c.setpoint - angle

	out := c.kp * err

	if dt > 0 {
		// Anti-windup: freeze the integral when it alone saturates
		// the output.
		integral := c.integral + err*dt
		if v := c.ki * integral; v <= c.outMax && v >= c.outMin {
			c.integral = integral
		}
		out += c.ki * c.integral

		if c.primed {
			out += c.kd * (err - c.lastError) / dt
		}
	}

	c.lastError = err
	c.primed = true

	if out > c.outMax {
		out = c.outMax
	} else if out < c.outMin {
		out = c.outMin
	}
	return out
}

// Reset clears the integral and derivative history.
func (c *Controller) Reset() {
	c.integral = 0
	c.lastError = 0
	c.primed = false
}
