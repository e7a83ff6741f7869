package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"

	"github.com/benmeehan/netmon-agent/internal/constants"
	"github.com/benmeehan/netmon-agent/internal/health"
	"github.com/benmeehan/netmon-agent/internal/models"
	"github.com/benmeehan/netmon-agent/internal/probes"
	"github.com/benmeehan/netmon-agent/pkg/api"
)

// MonitorService runs one perpetual polling loop per configured device:
// probe, aggregate, push to the backend, sleep, repeat. Each device gets its
// own API client so one backend session cannot serialize the whole fleet.
type MonitorService struct {
	devices     []models.DeviceConfig
	apiFactory  func() api.APIClientInterface
	statusBoard cmap.ConcurrentMap[string, models.Status]
	events      chan<- models.StatusChange
	logger      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitorService initializes and returns a new instance of MonitorService.
// events may be nil when no status-change consumer is configured.
func NewMonitorService(
	devices []models.DeviceConfig,
	apiFactory func() api.APIClientInterface,
	statusBoard cmap.ConcurrentMap[string, models.Status],
	events chan<- models.StatusChange,
	logger zerolog.Logger,
) *MonitorService {
	return &MonitorService{
		devices:     devices,
		apiFactory:  apiFactory,
		statusBoard: statusBoard,
		events:      events,
		logger:      logger,
	}
}

// Start launches one monitoring goroutine per device.
func (m *MonitorService) Start() error {
	if m.ctx != nil {
		m.logger.Warn().Msg("MonitorService is already running")
		return errors.New("monitor service is already running")
	}

	m.logger.Info().Msg("Starting MonitorService...")

	if len(m.devices) == 0 {
		m.logger.Warn().Msg("No devices configured, nothing to monitor")
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())

	started := 0
	for _, device := range m.devices {
		probers := probes.New(device, m.logger)
		if len(probers) == 0 {
			m.logger.Error().Str("device_id", device.ID).Str("device_name", device.Name).
				Msg("No usable probes configured for device")
			continue
		}

		m.wg.Add(1)
		go m.runDeviceLoop(device, probers)
		started++
	}

	m.logger.Info().Int("devices", started).Msg("MonitorService started successfully")
	return nil
}

// runDeviceLoop owns the full lifecycle of one device: its API session, its
// backend reconciliation, and its polling cycle until shutdown.
func (m *MonitorService) runDeviceLoop(device models.DeviceConfig, probers []probes.Prober) {
	defer m.wg.Done()

	client := m.apiFactory()
	defer client.Close()

	if err := client.Authenticate(m.ctx); err != nil {
		// Not fatal, every backend call re-checks the session.
		m.logger.Error().Err(err).Str("device_id", device.ID).Msg("Initial backend authentication failed")
	}

	m.ensureDeviceExists(device, client)

	m.logger.Info().Str("device_id", device.ID).Str("device_name", device.Name).
		Dur("poll_interval", device.PollInterval).Msg("Starting device monitoring")

	lastStatus := models.StatusUnknown
	for {
		status, faulted := m.runDeviceCycle(device, probers, client, lastStatus)

		delay := device.PollInterval
		if faulted {
			// A faulted cycle never stops the loop, it only backs off.
			delay = constants.ErrorCooldown
		} else {
			lastStatus = status
		}

		select {
		case <-time.After(delay):
		case <-m.ctx.Done():
			m.logger.Info().Str("device_id", device.ID).Msg("Stopping device monitoring")
			return
		}
	}
}

// runDeviceCycle executes one probe-aggregate-push cycle and returns the
// status to carry into the next cycle. faulted reports a panic inside the
// cycle, which makes the caller apply the error cool-down instead of the
// regular poll delay.
func (m *MonitorService) runDeviceCycle(
	device models.DeviceConfig,
	probers []probes.Prober,
	client api.APIClientInterface,
	lastStatus models.Status,
) (status models.Status, faulted bool) {
	status = lastStatus
	defer func() {
		if r := recover(); r != nil {
			faulted = true
			m.logger.Error().Str("device_id", device.ID).Interface("panic", r).
				Msg("Device monitoring cycle faulted, backing off")
		}
	}()

	samples := make([]models.MetricSample, 0, len(probers))
	for _, prober := range probers {
		sample := prober.Check(m.ctx)
		samples = append(samples, sample)
		m.logger.Debug().Str("device_name", device.Name).Str("probe", string(sample.Probe)).
			Str("status", string(sample.Status)).Msg("Probe check completed")
	}

	aggregated, ok := health.Aggregate(device.ID, samples)
	if !ok {
		m.logger.Debug().Str("device_id", device.ID).Msg("No samples produced this cycle, skipping push")
		return lastStatus, false
	}

	m.statusBoard.Set(device.ID, aggregated.Status)

	err := client.UpdateDevice(m.ctx, device.ID, api.UpdateDeviceRequest{
		Status:  string(aggregated.Status),
		Metrics: aggregated.Metrics,
	})

	if aggregated.Status != lastStatus {
		m.logger.Info().Str("device_name", device.Name).
			Str("previous", string(lastStatus)).Str("current", string(aggregated.Status)).
			Msg("Device status changed")
		m.publishStatusChange(device, lastStatus, aggregated.Status)
	}

	if err != nil {
		m.logger.Warn().Err(err).Str("device_name", device.Name).Msg("Failed to push device status")
	}

	return aggregated.Status, false
}

// ensureDeviceExists reconciles the device against the backend, creating it
// when its ID is absent. Failures are logged and swallowed so a backend
// outage at startup never keeps the polling loop from running.
func (m *MonitorService) ensureDeviceExists(device models.DeviceConfig, client api.APIClientInterface) {
	existing, err := client.ListDevices(m.ctx)
	if err != nil {
		m.logger.Error().Err(err).Str("device_id", device.ID).Msg("Failed to check device existence")
		return
	}

	for _, d := range existing {
		if d.ID == device.ID {
			return
		}
	}

	created, err := client.CreateDevice(m.ctx, api.CreateDeviceRequest{
		Name:     device.Name,
		Type:     string(device.Type),
		Location: device.Location,
		Status:   string(models.StatusOnline),
		Metrics:  map[string]float64{},
	})
	if err != nil {
		m.logger.Error().Err(err).Str("device_name", device.Name).Msg("Failed to create device in backend")
		return
	}

	m.logger.Info().Str("device_name", device.Name).Str("backend_id", created.ID).
		Msg("Created device in backend")
}

// publishStatusChange hands a transition to the notifier queue without ever
// blocking the polling loop. A full queue drops the event with a warning.
func (m *MonitorService) publishStatusChange(device models.DeviceConfig, previous, current models.Status) {
	if m.events == nil {
		return
	}

	event := models.StatusChange{
		EventID:    uuid.New().String(),
		DeviceID:   device.ID,
		DeviceName: device.Name,
		Previous:   previous,
		Current:    current,
		Timestamp:  time.Now().UTC(),
	}

	select {
	case m.events <- event:
	default:
		m.logger.Warn().Str("device_id", device.ID).Msg("Status change queue is full, dropping event")
	}
}

// Stop gracefully stops every device loop and waits for them to finish.
func (m *MonitorService) Stop() error {
	if m.ctx == nil {
		m.logger.Warn().Msg("MonitorService is not running")
		return errors.New("monitor service is not running")
	}

	m.logger.Info().Msg("Stopping MonitorService...")
	m.cancel()
	m.wg.Wait()
	m.logger.Info().Msg("MonitorService stopped successfully")
	return nil
}
