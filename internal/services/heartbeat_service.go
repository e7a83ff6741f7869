package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/benmeehan/netmon-agent/internal/constants"
	"github.com/benmeehan/netmon-agent/internal/models"
	"github.com/benmeehan/netmon-agent/internal/utils"
	"github.com/benmeehan/netmon-agent/pkg/mqtt"
)

// HeartbeatService periodically reports the agent's own liveness over MQTT,
// together with a device fleet summary and host resource usage.
type HeartbeatService struct {
	PubTopic    string
	Interval    time.Duration
	AgentID     string
	QOS         int
	MqttClient  mqtt.MQTTClient
	StatusBoard cmap.ConcurrentMap[string, models.Status]
	Logger      zerolog.Logger

	workerPool *utils.WorkerPool
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewHeartbeatService initializes a new HeartbeatService.
func NewHeartbeatService(pubTopic string, interval time.Duration, agentID string,
	qos int, mqttClient mqtt.MQTTClient, statusBoard cmap.ConcurrentMap[string, models.Status],
	logger zerolog.Logger) *HeartbeatService {

	return &HeartbeatService{
		PubTopic:    pubTopic,
		Interval:    interval,
		AgentID:     agentID,
		QOS:         qos,
		MqttClient:  mqttClient,
		StatusBoard: statusBoard,
		Logger:      logger,
	}
}

// Start launches the heartbeat loop in a separate goroutine.
func (h *HeartbeatService) Start() error {
	if h.ctx != nil {
		h.Logger.Warn().Msg("HeartbeatService is already running")
		return errors.New("heartbeat service is already running")
	}

	h.ctx, h.cancel = context.WithCancel(context.Background())
	h.workerPool = utils.NewWorkerPool(2)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.runHeartbeatLoop()
	}()

	h.Logger.Info().Str("topic", h.PubTopic).Msg("HeartbeatService started successfully")
	return nil
}

// Stop gracefully stops the heartbeat service.
func (h *HeartbeatService) Stop() error {
	if h.ctx == nil {
		h.Logger.Warn().Msg("HeartbeatService is not running")
		return errors.New("heartbeat service is not running")
	}

	h.cancel()
	h.wg.Wait()
	h.workerPool.Shutdown()

	h.ctx = nil
	h.cancel = nil
	h.workerPool = nil

	h.Logger.Info().Msg("HeartbeatService stopped successfully")
	return nil
}

// runHeartbeatLoop continuously sends heartbeat messages at the specified interval.
func (h *HeartbeatService) runHeartbeatLoop() {
	ticker := time.NewTicker(h.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			heartbeat := h.buildHeartbeat()

			payload, err := json.Marshal(heartbeat)
			if err != nil {
				h.Logger.Error().Err(err).Msg("Failed to serialize heartbeat message")
				continue
			}

			token := h.MqttClient.Publish(h.PubTopic, byte(h.QOS), false, payload)
			token.Wait()

			if err := token.Error(); err != nil {
				h.Logger.Error().Err(err).Msg("Failed to publish heartbeat message")
			} else {
				h.Logger.Debug().Msg("Heartbeat published successfully")
			}

		case <-h.ctx.Done():
			h.Logger.Info().Msg("HeartbeatService stopping gracefully")
			return
		}
	}
}

// buildHeartbeat assembles one heartbeat message from the status board and
// the host gauges.
func (h *HeartbeatService) buildHeartbeat() models.AgentHeartbeat {
	heartbeat := models.AgentHeartbeat{
		AgentID:        h.AgentID,
		Timestamp:      time.Now().UTC(),
		Status:         constants.StatusAlive,
		DeviceStatuses: h.deviceStatusCounts(),
	}
	h.collectHostMetrics(&heartbeat)
	return heartbeat
}

// deviceStatusCounts summarizes the fleet as status -> device count.
func (h *HeartbeatService) deviceStatusCounts() map[models.Status]int {
	counts := make(map[models.Status]int)
	for _, status := range h.StatusBoard.Items() {
		counts[status]++
	}
	return counts
}

// collectHostMetrics gathers the agent host's CPU and memory usage
// concurrently. A failed gauge is logged and left unset, never fatal.
func (h *HeartbeatService) collectHostMetrics(heartbeat *models.AgentHeartbeat) {
	var wg sync.WaitGroup
	wg.Add(2)

	h.workerPool.Submit(func() {
		defer wg.Done()
		percentages, err := cpu.Percent(0, false)
		if err != nil {
			h.Logger.Error().Err(err).Msg("Failed to get host CPU usage")
			return
		}
		if len(percentages) == 0 {
			h.Logger.Warn().Msg("Host CPU usage data is empty")
			return
		}
		heartbeat.HostCPUPercent = &percentages[0]
	})

	h.workerPool.Submit(func() {
		defer wg.Done()
		vm, err := mem.VirtualMemory()
		if err != nil {
			h.Logger.Error().Err(err).Msg("Failed to get host memory usage")
			return
		}
		heartbeat.HostMemoryPercent = &vm.UsedPercent
	})

	wg.Wait()
}
