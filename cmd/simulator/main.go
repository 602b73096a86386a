// Simulator publishes synthetic ambulance GPS traces to the MQTT location
// feed. Each simulated vehicle drives facility-to-facility routes from the
// county register in fixed interpolation steps.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/kisumu-dev/referral-dispatch/internal/config"
	"github.com/kisumu-dev/referral-dispatch/internal/directory"
	"github.com/kisumu-dev/referral-dispatch/internal/geo"
	"github.com/kisumu-dev/referral-dispatch/internal/models"
	"github.com/kisumu-dev/referral-dispatch/internal/track"
)

const tripSteps = 20

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment")
	}

	plates := flag.String("ambulances", "KDA 001A,KDA 002B,KDA 003C", "comma-separated registration plates to simulate")
	flag.Parse()

	cfg := config.Load()
	facilities := directory.Kisumu().All()
	if len(facilities) < 2 {
		log.Fatal("Facility register too small to route between")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBrokerURL).
		SetClientID(cfg.MQTTClientID + "-simulator").
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).Fatal("Failed to connect to MQTT broker")
	}
	defer client.Disconnect(250)
	log.WithField("broker", cfg.MQTTBrokerURL).Info("Connected to MQTT broker")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		<-stop
		close(done)
	}()

	for _, plate := range strings.Split(*plates, ",") {
		plate = strings.TrimSpace(plate)
		if plate == "" {
			continue
		}
		go drive(client, plate, facilities, cfg.UpdateInterval, done)
	}

	<-done
	log.Info("Simulator stopping")
	// let the final publishes flush
	time.Sleep(500 * time.Millisecond)
}

// drive loops over random facility-to-facility trips, publishing one position
// per interval until done is closed.
func drive(client mqtt.Client, plate string, facilities []models.Hospital, interval time.Duration, done <-chan struct{}) {
	topic := track.PublishTopic(plate)
	from := facilities[rand.Intn(len(facilities))]

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		to := facilities[rand.Intn(len(facilities))]
		if to.Name == from.Name {
			continue
		}
		log.WithFields(log.Fields{
			"ambulance_id": plate,
			"from":         from.Name,
			"to":           to.Name,
		}).Info("Starting trip")

		prev := from.Position
		for step := 1; step <= tripSteps; step++ {
			select {
			case <-done:
				return
			case <-ticker.C:
			}

			t := float64(step) / tripSteps
			pos := geo.Lerp(from.Position, to.Position, t)
			update := models.LocationUpdate{
				AmbulanceID:  plate,
				Position:     pos,
				LocationName: fmt.Sprintf("En route to %s", to.Name),
				Timestamp:    time.Now(),
				DistanceKm:   geo.DistanceKm(prev, pos),
			}
			prev = pos

			payload, err := json.Marshal(update)
			if err != nil {
				log.WithError(err).Error("Failed to encode position")
				continue
			}
			if token := client.Publish(topic, 1, false, payload); token.Wait() && token.Error() != nil {
				log.WithError(token.Error()).WithField("ambulance_id", plate).Warn("Publish failed")
			}
		}

		log.WithFields(log.Fields{
			"ambulance_id": plate,
			"at":           to.Name,
		}).Info("Trip complete")
		from = to
	}
}
