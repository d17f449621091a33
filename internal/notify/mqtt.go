package notify

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/minaret-app/minaret/internal/model"
)

// Publisher pushes reminder payloads to per-user MQTT topics. Devices
// subscribe to their user's topic; delivery past the broker is out of scope.
type Publisher struct {
	client mqtt.Client
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Error().Err(err).Msg("MQTT connection lost")
}

func NewPublisher(brokerURL, clientID string) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &Publisher{client: client}, nil
}

// ReminderPayload is the JSON body pushed ahead of a prayer.
type ReminderPayload struct {
	Kind          string `json:"kind"`
	PrayerName    string `json:"prayer_name,omitempty"`
	ScheduledTime string `json:"scheduled_time,omitempty"`
	Date          string `json:"date,omitempty"`
	BadgeID       string `json:"badge_id,omitempty"`
	Message       string `json:"message"`
}

// PublishPrayerReminder notifies a user that a prayer is coming up.
func (p *Publisher) PublishPrayerReminder(userID int, r model.PrayerRecord) error {
	payload := ReminderPayload{
		Kind:          "prayer_reminder",
		PrayerName:    string(r.PrayerName),
		ScheduledTime: r.ScheduledTime,
		Date:          r.Date,
		Message:       fmt.Sprintf("%s is at %s", r.PrayerName, r.ScheduledTime),
	}
	return p.publish(userID, payload)
}

// PublishBadgeEarned notifies a user of a newly awarded badge.
func (p *Publisher) PublishBadgeEarned(userID int, b model.Badge) error {
	payload := ReminderPayload{
		Kind:    "badge_earned",
		BadgeID: b.ID,
		Message: fmt.Sprintf("Badge earned: %s", b.Name),
	}
	return p.publish(userID, payload)
}

func (p *Publisher) publish(userID int, payload ReminderPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	topic := fmt.Sprintf("users/%d/reminders", userID)
	token := p.client.Publish(topic, 1, false, body)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.client != nil {
		p.client.Disconnect(250)
	}
}
