package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values. Feature toggles
// (data tracing, telemetry) are runtime flags here, never build tags.
type Config struct {
	// IMU Hardware
	IMUI2CBus  string // "" picks the first available bus
	IMUI2CAddr uint16 // 0x68 with AD0 low, 0x69 with AD0 high

	// Motor Hardware
	MotorPWMPin string
	MotorFwdPin string
	MotorRevPin string

	// Status LED
	StatusLEDPin string

	// Control Loop
	LoopIntervalMS int     // cadence sleep between cycles, milliseconds
	PIDKp          float64 // proportional gain
	PIDKi          float64 // integral gain
	PIDKd          float64 // derivative gain
	PIDSetpointDeg float64 // target angle, nominally 0° (vertical)

	// Diagnostics
	PrintData bool // per-cycle tab-separated trace on stdout

	// MQTT (optional; telemetry disabled when broker is empty)
	MQTTBroker            string
	MQTTClientIDBalancer  string
	MQTTClientIDWeb       string
	MQTTClientIDDisplay   string
	TopicCycle            string
	TelemetryEveryNCycles int

	// Web Server
	WebServerPort int
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported (lowercase) so other packages cannot access it directly.
//     This enforces encapsulation and prevents external code from modifying config without proper locking.
//     Has package-level scope (visible to all functions in this package, persists for program lifetime).
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock (Lock) for initialization,
//     read lock (RLock) for Get() allows multiple concurrent readers without blocking each other.
//
// External code must use InitGlobal() to set and Get() to read, ensuring thread safety.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// defaults returns a Config prefilled with the values a bare Raspberry
// Pi build of the robot uses.
func defaults() *Config {
	return &Config{
		IMUI2CAddr:            0x68,
		MotorPWMPin:           "GPIO12",
		MotorFwdPin:           "GPIO20",
		MotorRevPin:           "GPIO21",
		StatusLEDPin:          "GPIO17",
		LoopIntervalMS:        15,
		PIDKp:                 30,
		PIDKi:                 150,
		PIDKd:                 1.2,
		MQTTClientIDBalancer:  "balance-robot-balancer",
		MQTTClientIDWeb:       "balance-robot-web",
		MQTTClientIDDisplay:   "balance-robot-display",
		TopicCycle:            "balance/cycle",
		TelemetryEveryNCycles: 10,
		WebServerPort:         8080,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// IMU Hardware
	case "IMU_I2C_BUS":
		c.IMUI2CBus = value
	case "IMU_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid IMU_I2C_ADDR %q: %w", value, err)
		}
		c.IMUI2CAddr = uint16(addr)

	// Motor Hardware
	case "MOTOR_PWM_PIN":
		c.MotorPWMPin = value
	case "MOTOR_FWD_PIN":
		c.MotorFwdPin = value
	case "MOTOR_REV_PIN":
		c.MotorRevPin = value

	// Status LED
	case "STATUS_LED_PIN":
		c.StatusLEDPin = value

	// Control Loop
	case "LOOP_INTERVAL_MS":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid LOOP_INTERVAL_MS %q: %w", value, err)
		}
		if interval <= 0 {
			return fmt.Errorf("LOOP_INTERVAL_MS must be positive, got %d", interval)
		}
		c.LoopIntervalMS = interval
	case "PID_KP":
		gain, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid PID_KP %q: %w", value, err)
		}
		c.PIDKp = gain
	case "PID_KI":
		gain, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid PID_KI %q: %w", value, err)
		}
		c.PIDKi = gain
	case "PID_KD":
		gain, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid PID_KD %q: %w", value, err)
		}
		c.PIDKd = gain
	case "PID_SETPOINT_DEG":
		sp, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid PID_SETPOINT_DEG %q: %w", value, err)
		}
		c.PIDSetpointDeg = sp

	// Diagnostics
	case "PRINT_DATA":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid PRINT_DATA %q: %w", value, err)
		}
		c.PrintData = b

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_BALANCER":
		c.MQTTClientIDBalancer = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "TOPIC_CYCLE":
		c.TopicCycle = value
	case "TELEMETRY_EVERY_N_CYCLES":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid TELEMETRY_EVERY_N_CYCLES %q: %w", value, err)
		}
		if n <= 0 {
			return fmt.Errorf("TELEMETRY_EVERY_N_CYCLES must be positive, got %d", n)
		}
		c.TelemetryEveryNCycles = n

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MotorPWMPin == "" || c.MotorFwdPin == "" || c.MotorRevPin == "" {
		return fmt.Errorf("MOTOR_PWM_PIN, MOTOR_FWD_PIN and MOTOR_REV_PIN are required")
	}
	if c.StatusLEDPin == "" {
		return fmt.Errorf("STATUS_LED_PIN is required")
	}
	if c.TopicCycle == "" {
		return fmt.Errorf("TOPIC_CYCLE is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
// Acquires write lock (configMu.Lock) during initialization to prevent concurrent access.
// This is the only function that can set globalConfig.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
// Uses read lock (configMu.RLock) to allow multiple concurrent readers without blocking.
// This is thread-safe and efficient for concurrent access across goroutines.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
