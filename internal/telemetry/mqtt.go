// Copyright (c) 2026 Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/balance_robot/internal/control"
)

// Publisher forwards cycle records to an MQTT topic for external
// viewers. It runs beside the control loop, never in it: Publish is
// fire-and-forget and drops records when the broker lags, so a slow
// network can never stretch a control cycle.
type Publisher struct {
	client mqtt.Client
	topic  string
	everyN int

	records chan control.CycleRecord
	cycles  int
}

// NewPublisher connects to the broker and starts the forwarding
// goroutine. everyN thins the stream: only every Nth cycle is sent.
func NewPublisher(broker, clientID, topic string, everyN int) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("telemetry: MQTT connect: %w", token.Error())
	}
	log.Printf("telemetry: connected to MQTT broker %s, publishing %s every %d cycles", broker, topic, everyN)

	p := &Publisher{
		client:  client,
		topic:   topic,
		everyN:  everyN,
		records: make(chan control.CycleRecord, 64),
	}
	go p.forward()
	return p, nil
}

// OnCycle is the control.Options.OnCycle hook. Non-blocking: records
// are dropped when the channel is full.
func (p *Publisher) OnCycle(rec control.CycleRecord) {
	p.cycles++
	if p.cycles%p.everyN != 0 {
		return
	}
	select {
	case p.records <- rec:
	default:
	}
}

func (p *Publisher) forward() {
	for rec := range p.records {
		payload, err := json.Marshal(rec)
		if err != nil {
			log.Printf("telemetry: json marshal error: %v", err)
			continue
		}
		if token := p.client.Publish(p.topic, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("telemetry: MQTT publish error: %v", token.Error())
		}
	}
}

// Close stops the forwarder and disconnects from the broker.
func (p *Publisher) Close() {
	close(p.records)
	p.client.Disconnect(250)
}
