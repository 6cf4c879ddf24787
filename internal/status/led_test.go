// Copyright (c) 2026 Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package status

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// fakePin records every level written to it.
type fakePin struct {
	mu     sync.Mutex
	levels []gpio.Level
}

func (p *fakePin) String() string                        { return "fake" }
func (p *fakePin) Halt() error                           { return nil }
func (p *fakePin) Name() string                          { return "fake" }
func (p *fakePin) Number() int                           { return 0 }
func (p *fakePin) Function() string                      { return "Out" }
func (p *fakePin) In(gpio.Pull, gpio.Edge) error         { return nil }
func (p *fakePin) Read() gpio.Level                      { return gpio.Low }
func (p *fakePin) WaitForEdge(time.Duration) bool        { return false }
func (p *fakePin) Pull() gpio.Pull                       { return gpio.Float }
func (p *fakePin) DefaultPull() gpio.Pull                { return gpio.Float }
func (p *fakePin) PWM(gpio.Duty, physic.Frequency) error { return nil }

func (p *fakePin) Out(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.levels = append(p.levels, l)
	return nil
}

func (p *fakePin) writes() []gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]gpio.Level, len(p.levels))
	copy(out, p.levels)
	return out
}

func TestStopBlinkLeavesPinLow(t *testing.T) {
	pin := &fakePin{}
	led := &LED{pin: pin}

	led.StartBlink()
	time.Sleep(500 * time.Millisecond)
	led.StopBlink()
	time.Sleep(250 * time.Millisecond)

	writes := pin.writes()
	require.NotEmpty(t, writes, "blink must toggle the pin")
	assert.Equal(t, gpio.Low, writes[len(writes)-1])
}

func TestSetRacesBlinkGoroutine(t *testing.T) {
	pin := &fakePin{}
	led := &LED{pin: pin}

	led.StartBlink()
	led.StartBlink() // second call is a no-op

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(on bool) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				led.Set(on)
				time.Sleep(5 * time.Millisecond)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	led.StopBlink()
	led.StopBlink() // idempotent

	writes := pin.writes()
	require.NotEmpty(t, writes)
	assert.Equal(t, gpio.Low, writes[len(writes)-1])
}
