package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/balance_robot/internal/config"
	"github.com/relabs-tech/balance_robot/internal/control"
)

// RunConsole prints the live cycle telemetry to stdout, one line per
// record, until Ctrl+C.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID("balance-robot-console")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicCycle, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var rec control.CycleRecord
		if err := json.Unmarshal(msg.Payload(), &rec); err != nil {
			log.Printf("console: cycle unmarshal error: %v", err)
			return
		}

		drive := "STOP "
		if rec.Driving {
			drive = "DRIVE"
		}
		fmt.Printf(
			"[CYCLE] acc=%7.2f° fused=%7.2f° cmd=%8.2f %s\n",
			rec.AccelAngle, rec.FusedAngle, rec.Command, drive,
		)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicCycle)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
