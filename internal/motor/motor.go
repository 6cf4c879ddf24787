// Copyright (c) 2026 Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motor

import (
	"fmt"
	"log"
	"math"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// CommandMax is the magnitude the drive command saturates at; the PWM
// duty scales linearly from 0 at command 0 to 100% at ±CommandMax.
const CommandMax = 1000.0

const pwmFrequency = 2 * physic.KiloHertz

// HBridge drives both wheel motors through a dual H-bridge: one PWM
// enable pin for intensity, two direction pins for polarity. The sign
// of the command picks the direction, its magnitude the duty.
type HBridge struct {
	pwm gpio.PinIO
	fwd gpio.PinIO
	rev gpio.PinIO
}

// NewHBridge resolves the three pins by name ("GPIO12", "18", ...).
func NewHBridge(pwmPin, fwdPin, revPin string) (*HBridge, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("motor: periph host init: %w", err)
	}

	pins := make([]gpio.PinIO, 3)
	for i, name := range []string{pwmPin, fwdPin, revPin} {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("motor: pin %q not found", name)
		}
		pins[i] = p
	}

	return &HBridge{pwm: pins[0], fwd: pins[1], rev: pins[2]}, nil
}

// Init puts the bridge in a known safe state: both direction pins low,
// zero duty. Called once at startup, before any sensor activity.
func (h *HBridge) Init() error {
	if err := h.Stop(); err != nil {
		return fmt.Errorf("motor: init: %w", err)
	}
	log.Printf("motor: H-bridge initialized on pwm=%s fwd=%s rev=%s", h.pwm, h.fwd, h.rev)
	return nil
}

// Drive applies a signed command. Magnitude beyond CommandMax saturates.
func (h *HBridge) Drive(cmd float64) error {
	if cmd >= 0 {
		if err := h.rev.Out(gpio.Low); err != nil {
			return fmt.Errorf("motor: rev pin: %w", err)
		}
		if err := h.fwd.Out(gpio.High); err != nil {
			return fmt.Errorf("motor: fwd pin: %w", err)
		}
	} else {
		if err := h.fwd.Out(gpio.Low); err != nil {
			return fmt.Errorf("motor: fwd pin: %w", err)
		}
		if err := h.rev.Out(gpio.High); err != nil {
			return fmt.Errorf("motor: rev pin: %w", err)
		}
	}

	mag := math.Min(math.Abs(cmd), CommandMax)
	duty := gpio.Duty(mag / CommandMax * float64(gpio.DutyMax))
	if err := h.pwm.PWM(duty, pwmFrequency); err != nil {
		return fmt.Errorf("motor: pwm: %w", err)
	}
	return nil
}

// Stop cuts power explicitly: zero duty and both direction pins low.
// This is the safety-gate action, not a no-op.
func (h *HBridge) Stop() error {
	if err := h.pwm.PWM(0, pwmFrequency); err != nil {
		return fmt.Errorf("motor: pwm off: %w", err)
	}
	if err := h.fwd.Out(gpio.Low); err != nil {
		return fmt.Errorf("motor: fwd pin: %w", err)
	}
	if err := h.rev.Out(gpio.Low); err != nil {
		return fmt.Errorf("motor: rev pin: %w", err)
	}
	return nil
}
