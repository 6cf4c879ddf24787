// Copyright (c) 2026 Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package status

import (
	"fmt"
	"log"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// LED is the status indicator: a single GPIO LED that blinks during
// calibration and is turned solid on when the robot enters steady
// state. Purely advisory, its failure never affects control.
type LED struct {
	pin gpio.PinIO

	mu   sync.Mutex
	stop chan struct{}
}

// NewLED resolves the LED pin by name.
func NewLED(pinName string) (*LED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("status: periph host init: %w", err)
	}
	p := gpioreg.ByName(pinName)
	if p == nil {
		return nil, fmt.Errorf("status: pin %q not found", pinName)
	}
	return &LED{pin: p}, nil
}

// StartBlink begins a 200ms periodic blink. Calling it while a blink
// is already running is a no-op.
func (l *LED) StartBlink() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stop != nil {
		return
	}
	stop := make(chan struct{})
	l.stop = stop

	go func() {
		tick := time.NewTicker(200 * time.Millisecond)
		defer tick.Stop()
		on := false
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				on = !on
				l.mu.Lock()
				// A tick may race StopBlink; once the blink is
				// cancelled the goroutine must not undo the final
				// off write.
				if l.stop == stop {
					l.set(on)
				}
				l.mu.Unlock()
			}
		}
	}()
}

// StopBlink ends the periodic blink and leaves the LED off.
func (l *LED) StopBlink() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stop == nil {
		return
	}
	close(l.stop)
	l.stop = nil
	l.set(false)
}

// Set drives the LED level directly.
func (l *LED) Set(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.set(on)
}

func (l *LED) set(on bool) {
	lvl := gpio.Low
	if on {
		lvl = gpio.High
	}
	if err := l.pin.Out(lvl); err != nil {
		log.Printf("status: LED write error: %v", err)
	}
}

// Nop is an indicator that does nothing, for tests and headless runs.
type Nop struct{}

func (Nop) StartBlink() {}
func (Nop) StopBlink()  {}
func (Nop) Set(on bool) {}
