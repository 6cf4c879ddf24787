// Copyright (c) 2026 Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/relabs-tech/balance_robot/internal/calibration"
	"github.com/relabs-tech/balance_robot/internal/config"
	"github.com/relabs-tech/balance_robot/internal/control"
	"github.com/relabs-tech/balance_robot/internal/sensors"
	"github.com/relabs-tech/balance_robot/internal/status"
)

// Bench tool: runs the offset calibration once and prints the result
// as JSON, for checking sensor bias without driving the motors.
func main() {
	configPath := flag.String("config", "./balance_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting balance-robot calibration check")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	imuSensor, err := sensors.NewMPU6050(cfg.IMUI2CBus, cfg.IMUI2CAddr)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	defer imuSensor.Close()

	if err := imuSensor.Connect(); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	led, err := status.NewLED(cfg.StatusLEDPin)
	if err != nil {
		log.Printf("no status LED, continuing without: %v", err)
	}

	var blinker calibration.Blinker = status.Nop{}
	if led != nil {
		blinker = led
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cal := calibration.New(imuSensor, control.SystemClock{}, blinker)
	res, err := cal.Run(ctx)
	if err != nil {
		log.Fatalf("calibration failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Fatalf("json encode error: %v", err)
	}
	log.Printf("seed angle: %.0f°", res.SeedAngle())
}
