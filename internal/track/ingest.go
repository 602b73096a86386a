// Package track receives ambulance GPS updates off the MQTT location feed
// and writes them through the fleet ledger.
package track

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/kisumu-dev/referral-dispatch/internal/config"
	"github.com/kisumu-dev/referral-dispatch/internal/db"
	"github.com/kisumu-dev/referral-dispatch/internal/fleet"
	"github.com/kisumu-dev/referral-dispatch/internal/models"
)

// Recorder is the subset of the fleet ledger the ingestor writes through.
type Recorder interface {
	RecordLocation(ctx context.Context, update models.LocationUpdate) error
}

// Ingestor subscribes to the ambulance location topic and records every
// position report. One update per message; stale reports are dropped.
type Ingestor struct {
	client mqtt.Client
	ledger Recorder
	topic  string
}

// NewIngestor builds an ingestor over an already-configured MQTT client.
func NewIngestor(client mqtt.Client, ledger Recorder, topic string) *Ingestor {
	return &Ingestor{client: client, ledger: ledger, topic: topic}
}

// Connect dials the broker and subscribes. Blocks until the subscription is
// acknowledged or fails.
func (i *Ingestor) Connect() error {
	if token := i.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect mqtt broker: %w", token.Error())
	}
	if token := i.client.Subscribe(i.topic, 1, i.handle); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", i.topic, token.Error())
	}
	log.WithField("topic", i.topic).Info("Subscribed to location feed")
	return nil
}

// Close unsubscribes and disconnects, allowing in-flight work to finish.
func (i *Ingestor) Close() {
	if token := i.client.Unsubscribe(i.topic); token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).Warn("Unsubscribe failed")
	}
	i.client.Disconnect(250)
}

func (i *Ingestor) handle(_ mqtt.Client, msg mqtt.Message) {
	update, err := DecodeUpdate(msg.Topic(), msg.Payload())
	if err != nil {
		log.WithError(err).WithField("topic", msg.Topic()).Warn("Dropped malformed location message")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := i.ledger.RecordLocation(ctx, update); err != nil {
		if errors.Is(err, db.ErrStaleLocation) {
			log.WithField("ambulance_id", update.AmbulanceID).Debug("Dropped stale location report")
			return
		}
		log.WithError(err).WithField("ambulance_id", update.AmbulanceID).Error("Failed to record location")
	}
}

// DecodeUpdate parses a location message. The ambulance id comes from the
// topic; a payload id, when present, must agree with it.
func DecodeUpdate(topic string, payload []byte) (models.LocationUpdate, error) {
	ambulanceID, err := AmbulanceIDFromTopic(topic)
	if err != nil {
		return models.LocationUpdate{}, err
	}

	var update models.LocationUpdate
	if err := json.Unmarshal(payload, &update); err != nil {
		return models.LocationUpdate{}, fmt.Errorf("decode location payload: %w", err)
	}
	if update.AmbulanceID != "" && update.AmbulanceID != ambulanceID {
		return models.LocationUpdate{}, fmt.Errorf("payload ambulance %q does not match topic %q", update.AmbulanceID, topic)
	}
	update.AmbulanceID = ambulanceID
	return update, nil
}

// AmbulanceIDFromTopic extracts the vehicle id from a
// fleet/ambulances/{id}/location topic.
func AmbulanceIDFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "fleet" || parts[1] != "ambulances" || parts[3] != "location" || parts[2] == "" {
		return "", fmt.Errorf("unexpected location topic %q", topic)
	}
	return parts[2], nil
}

// PublishTopic returns the topic an ambulance publishes its positions on.
func PublishTopic(ambulanceID string) string {
	return fmt.Sprintf("fleet/ambulances/%s/location", ambulanceID)
}

// NewClient builds an MQTT client from the service config with automatic
// reconnection enabled.
func NewClient(cfg config.Config, clientID string) mqtt.Client {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBrokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)
	return mqtt.NewClient(opts)
}

var _ Recorder = (*fleet.Ledger)(nil)
