// Copyright (c) 2026 Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/binary"
	"fmt"
	"log"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/balance_robot/internal/imu"
)

// MPU6050 register map (the subset this driver touches).
const (
	regSMPLRTDiv   = 0x19
	regConfig      = 0x1A
	regGyroConfig  = 0x1B
	regAccelConfig = 0x1C
	regAccelXOutH  = 0x3B
	regPwrMgmt1    = 0x6B
	regWhoAmI      = 0x75

	whoAmIValue = 0x68
)

// MPU6050 reads six-axis samples from an InvenSense MPU6050 over I2C.
// It is configured for ±2g and ±250°/s, matching the scale constants
// in the imu package.
type MPU6050 struct {
	dev  i2c.Dev
	bus  i2c.BusCloser
	name string
}

// NewMPU6050 opens the named I2C bus ("" for the first available) and
// prepares a driver for the sensor at the given address (0x68 with AD0
// low, 0x69 with AD0 high). No bus traffic happens until Connect.
func NewMPU6050(busName string, addr uint16) (*MPU6050, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("IMU: periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("IMU: open I2C bus %q: %w", busName, err)
	}

	return &MPU6050{
		dev:  i2c.Dev{Bus: bus, Addr: addr},
		bus:  bus,
		name: fmt.Sprintf("mpu6050@0x%02X", addr),
	}, nil
}

// Connect verifies the sensor answers with the expected WHO_AM_I value,
// wakes it from sleep, and programs the fixed ranges. A failure here is
// fatal to the caller: the control loop must not start on unverified
// hardware.
func (m *MPU6050) Connect() error {
	var who [1]byte
	if err := m.dev.Tx([]byte{regWhoAmI}, who[:]); err != nil {
		return fmt.Errorf("%s: WHO_AM_I read: %w", m.name, err)
	}
	if who[0] != whoAmIValue {
		return fmt.Errorf("%s: WHO_AM_I = 0x%02X, want 0x%02X", m.name, who[0], whoAmIValue)
	}

	// Wake from sleep, internal 8MHz oscillator.
	if err := m.write(regPwrMgmt1, 0x00); err != nil {
		return fmt.Errorf("%s: wake: %w", m.name, err)
	}
	// DLPF at 44Hz accel / 42Hz gyro, sample rate 1kHz.
	if err := m.write(regConfig, 0x03); err != nil {
		return fmt.Errorf("%s: set DLPF: %w", m.name, err)
	}
	if err := m.write(regSMPLRTDiv, 0x00); err != nil {
		return fmt.Errorf("%s: set sample rate divider: %w", m.name, err)
	}
	// FS_SEL = 0 on both: ±250°/s and ±2g.
	if err := m.write(regGyroConfig, 0x00); err != nil {
		return fmt.Errorf("%s: set gyro range: %w", m.name, err)
	}
	if err := m.write(regAccelConfig, 0x00); err != nil {
		return fmt.Errorf("%s: set accel range: %w", m.name, err)
	}

	log.Printf("%s: connected, ranges set to ±2g / ±250°/s", m.name)
	return nil
}

// ReadRaw burst-reads the 14-byte output block (accel, temperature,
// gyro) and unpacks the six motion axes. The temperature word is read
// so a single transaction covers the whole block, then discarded.
func (m *MPU6050) ReadRaw() (imu.RawSample, error) {
	var block [14]byte
	if err := m.dev.Tx([]byte{regAccelXOutH}, block[:]); err != nil {
		return imu.RawSample{}, fmt.Errorf("%s: sample read: %w", m.name, err)
	}

	return imu.RawSample{
		Ax: int16(binary.BigEndian.Uint16(block[0:2])),
		Ay: int16(binary.BigEndian.Uint16(block[2:4])),
		Az: int16(binary.BigEndian.Uint16(block[4:6])),
		Gx: int16(binary.BigEndian.Uint16(block[8:10])),
		Gy: int16(binary.BigEndian.Uint16(block[10:12])),
		Gz: int16(binary.BigEndian.Uint16(block[12:14])),
	}, nil
}

// Close releases the I2C bus.
func (m *MPU6050) Close() error {
	return m.bus.Close()
}

func (m *MPU6050) write(reg, val byte) error {
	return m.dev.Tx([]byte{reg, val}, nil)
}
