// Copyright (c) 2026 Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/balance_robot/internal/attitude"
	"github.com/relabs-tech/balance_robot/internal/config"
	"github.com/relabs-tech/balance_robot/internal/control"
	"github.com/relabs-tech/balance_robot/internal/motor"
	"github.com/relabs-tech/balance_robot/internal/pid"
	"github.com/relabs-tech/balance_robot/internal/sensors"
	"github.com/relabs-tech/balance_robot/internal/status"
	"github.com/relabs-tech/balance_robot/internal/telemetry"
)

// RunBalancer wires the hardware and runs the robot: verify the
// sensor, calibrate once, then stabilize until SIGINT/SIGTERM.
func RunBalancer() error {
	log.Println("starting balance-robot stabilizer")

	cfg := config.Get()

	imuSensor, err := sensors.NewMPU6050(cfg.IMUI2CBus, cfg.IMUI2CAddr)
	if err != nil {
		return err
	}
	defer imuSensor.Close()

	bridge, err := motor.NewHBridge(cfg.MotorPWMPin, cfg.MotorFwdPin, cfg.MotorRevPin)
	if err != nil {
		return err
	}

	led, err := status.NewLED(cfg.StatusLEDPin)
	if err != nil {
		return err
	}

	fusion := attitude.NewComplementary(attitude.DefaultCoeff)
	corrector := pid.New(cfg.PIDKp, cfg.PIDKi, cfg.PIDKd, cfg.PIDSetpointDeg, motor.CommandMax)

	opts := control.Options{
		LoopInterval: time.Duration(cfg.LoopIntervalMS) * time.Millisecond,
	}
	if cfg.PrintData {
		opts.Trace = os.Stdout
	}
	if cfg.MQTTBroker != "" {
		pub, err := telemetry.NewPublisher(cfg.MQTTBroker, cfg.MQTTClientIDBalancer, cfg.TopicCycle, cfg.TelemetryEveryNCycles)
		if err != nil {
			// Telemetry is advisory: run without it rather than
			// keeping the robot off its wheels.
			log.Printf("balancer: telemetry disabled: %v", err)
		} else {
			defer pub.Close()
			opts.OnCycle = pub.OnCycle
		}
	}

	driver, err := control.NewDriver(imuSensor, fusion, corrector, bridge, led, opts)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Println("balancer: calibrating, hold the robot in a rest position")
	if err := driver.Calibrate(ctx); err != nil {
		return err
	}

	if err := driver.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Println("balancer: shut down")
	return nil
}
