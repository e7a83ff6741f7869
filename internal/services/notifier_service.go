package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/netmon-agent/internal/models"
	"github.com/benmeehan/netmon-agent/pkg/mqtt"
)

// NotifierService consumes device status-change events from the monitor and
// publishes them over MQTT so dashboards and alerting hooks see transitions
// without polling the backend.
type NotifierService struct {
	pubTopic   string
	qos        int
	mqttClient mqtt.MQTTClient
	events     <-chan models.StatusChange
	logger     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewNotifierService initializes and returns a new instance of NotifierService.
func NewNotifierService(pubTopic string, qos int, mqttClient mqtt.MQTTClient,
	events <-chan models.StatusChange, logger zerolog.Logger) *NotifierService {

	return &NotifierService{
		pubTopic:   pubTopic,
		qos:        qos,
		mqttClient: mqttClient,
		events:     events,
		logger:     logger,
	}
}

// Start launches the event consumer loop.
func (n *NotifierService) Start() error {
	if n.ctx != nil {
		n.logger.Warn().Msg("NotifierService is already running")
		return errors.New("notifier service is already running")
	}

	n.ctx, n.cancel = context.WithCancel(context.Background())

	n.wg.Add(1)
	go n.runEventLoop()

	n.logger.Info().Str("topic", n.pubTopic).Msg("NotifierService started successfully")
	return nil
}

// runEventLoop publishes queued events until the service is stopped, then
// drains whatever is still buffered before returning.
func (n *NotifierService) runEventLoop() {
	defer n.wg.Done()

	for {
		select {
		case event := <-n.events:
			n.handleEvent(event)
		case <-n.ctx.Done():
			n.drainQueue()
			n.logger.Info().Msg("Stopping status change notifier")
			return
		}
	}
}

// drainQueue flushes events buffered at shutdown. Producers are stopped
// before the notifier, so this terminates.
func (n *NotifierService) drainQueue() {
	for {
		select {
		case event := <-n.events:
			n.handleEvent(event)
		default:
			return
		}
	}
}

// handleEvent publishes one status change and logs a failure without ever
// stopping the loop.
func (n *NotifierService) handleEvent(event models.StatusChange) {
	if err := n.publishEvent(event); err != nil {
		n.logger.Error().Err(err).Str("device_id", event.DeviceID).
			Msg("Failed to publish status change event")
	}
}

// publishEvent sends one event via MQTT with a few growing-delay retries.
func (n *NotifierService) publishEvent(event models.StatusChange) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize status change event: %w", err)
	}

	retries := 3
	for i := 0; i < retries; i++ {
		token := n.mqttClient.Publish(n.pubTopic, byte(n.qos), false, payload)
		if token.Wait() && token.Error() == nil {
			n.logger.Debug().Str("device_id", event.DeviceID).
				Str("current", string(event.Current)).Msg("Status change event published")
			return nil
		}
		n.logger.Warn().Err(token.Error()).Int("retry", i+1).Msg("Retrying to publish status change event...")
		time.Sleep(time.Duration(i+1) * time.Second)
	}

	return fmt.Errorf("failed to publish status change event after %d retries", retries)
}

// Stop gracefully stops the notifier service.
func (n *NotifierService) Stop() error {
	if n.ctx == nil {
		n.logger.Warn().Msg("NotifierService is not running")
		return errors.New("notifier service is not running")
	}

	n.logger.Info().Msg("Stopping NotifierService...")
	n.cancel()
	n.wg.Wait()
	n.logger.Info().Msg("NotifierService stopped successfully")
	return nil
}
