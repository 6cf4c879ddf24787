package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "balance_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
# Hardware
IMU_I2C_BUS = /dev/i2c-1
IMU_I2C_ADDR = 0x69
MOTOR_PWM_PIN = GPIO13
MOTOR_FWD_PIN = GPIO5
MOTOR_REV_PIN = GPIO6
STATUS_LED_PIN = GPIO27

# Control
LOOP_INTERVAL_MS = 10
PID_KP = 25.5
PID_KI = 120
PID_KD = 0.8
PID_SETPOINT_DEG = -1.25
PRINT_DATA = true

# Telemetry
MQTT_BROKER = tcp://localhost:1883
TOPIC_CYCLE = robot/cycle
TELEMETRY_EVERY_N_CYCLES = 5
WEB_SERVER_PORT = 9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/i2c-1", cfg.IMUI2CBus)
	assert.Equal(t, uint16(0x69), cfg.IMUI2CAddr)
	assert.Equal(t, "GPIO13", cfg.MotorPWMPin)
	assert.Equal(t, "GPIO5", cfg.MotorFwdPin)
	assert.Equal(t, "GPIO6", cfg.MotorRevPin)
	assert.Equal(t, "GPIO27", cfg.StatusLEDPin)
	assert.Equal(t, 10, cfg.LoopIntervalMS)
	assert.Equal(t, 25.5, cfg.PIDKp)
	assert.Equal(t, 120.0, cfg.PIDKi)
	assert.Equal(t, 0.8, cfg.PIDKd)
	assert.Equal(t, -1.25, cfg.PIDSetpointDeg)
	assert.True(t, cfg.PrintData)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "robot/cycle", cfg.TopicCycle)
	assert.Equal(t, 5, cfg.TelemetryEveryNCycles)
	assert.Equal(t, 9090, cfg.WebServerPort)
}

func TestDefaultsSurviveEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, "# nothing overridden\n"))
	require.NoError(t, err)

	assert.Equal(t, uint16(0x68), cfg.IMUI2CAddr)
	assert.Equal(t, 15, cfg.LoopIntervalMS)
	assert.False(t, cfg.PrintData)
	assert.Equal(t, "balance/cycle", cfg.TopicCycle)
}

func TestUnknownKeyRejected(t *testing.T) {
	_, err := Load(writeConfig(t, "NOT_A_KEY = 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestMalformedLineRejected(t *testing.T) {
	_, err := Load(writeConfig(t, "LOOP_INTERVAL_MS\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config line 1")
}

func TestNonPositiveLoopIntervalRejected(t *testing.T) {
	_, err := Load(writeConfig(t, "LOOP_INTERVAL_MS = 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")
}

func TestBadGainRejected(t *testing.T) {
	_, err := Load(writeConfig(t, "PID_KP = not-a-number\n"))
	require.Error(t, err)
}

func TestMissingMotorPinRejected(t *testing.T) {
	_, err := Load(writeConfig(t, "MOTOR_PWM_PIN =\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MOTOR_PWM_PIN")
}
