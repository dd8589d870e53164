// Command simulate publishes synthetic water-volume telemetry to an MQTT
// broker, for exercising the service end to end without hardware.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Default simulation constants.
const (
	defaultInterval   = 5 * time.Second
	defaultVolume     = 5000.0 // ml, a full trough
	defaultDrinkMin   = 100.0
	defaultDrinkMax   = 600.0
	defaultDrinkP     = 0.4
	connectTimeout    = 10 * time.Second
	disconnectQuiesce = 250
)

func main() {
	var (
		brokerURL = flag.String("broker", "tcp://localhost:1883", "MQTT broker URL")
		topic     = flag.String("topic", "farm/cattle/water1", "Topic to publish readings on")
		clientID  = flag.String("client-id", "waterline-simulate", "MQTT client identifier")
		username  = flag.String("username", "", "Broker username")
		password  = flag.String("password", "", "Broker password")
		interval  = flag.Duration("interval", defaultInterval, "Delay between readings")
		volume    = flag.Float64("volume", defaultVolume, "Initial container volume in ml")
		drinkP    = flag.Float64("drink-probability", defaultDrinkP, "Chance a tick produces a drinking event")
		count     = flag.Int("count", 0, "Number of readings to publish (0 = until interrupted)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := paho.NewClientOptions().
		AddBroker(*brokerURL).
		SetClientID(*clientID).
		SetUsername(*username).
		SetPassword(*password).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) || token.Error() != nil {
		os.Stderr.WriteString("failed to connect to broker\n")
		return
	}
	defer client.Disconnect(disconnectQuiesce)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	current := *volume
	published := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current = nextVolume(current, *volume, *drinkP)
			payload, _ := json.Marshal(map[string]float64{"volume": current})
			client.Publish(*topic, 0, false, payload)
			published++
			if *count > 0 && published >= *count {
				return
			}
		}
	}
}

// nextVolume drinks with probability p, refills when nearly empty, and
// otherwise jitters around the current level like a real float sensor.
func nextVolume(current, full, p float64) float64 {
	if current < full*0.1 {
		return full
	}
	if rand.Float64() < p {
		drink := defaultDrinkMin + rand.Float64()*(defaultDrinkMax-defaultDrinkMin)
		if drink > current {
			drink = current
		}
		return current - drink
	}
	// sensor noise, +-5 ml
	return current + (rand.Float64()-0.5)*10
}
