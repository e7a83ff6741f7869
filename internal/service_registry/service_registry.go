package service_registry

import (
	"errors"
	"fmt"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"

	"github.com/benmeehan/netmon-agent/internal/constants"
	"github.com/benmeehan/netmon-agent/internal/models"
	"github.com/benmeehan/netmon-agent/internal/services"
	"github.com/benmeehan/netmon-agent/internal/utils"
	"github.com/benmeehan/netmon-agent/pkg/api"
	"github.com/benmeehan/netmon-agent/pkg/mqtt"
)

// ServiceRegistry manages the lifecycle of various services in the system.
type ServiceRegistry struct {
	services    map[string]Service // Stores registered services
	serviceKeys []string           // Maintains order of service registration
	mqttClient  mqtt.MQTTClient
	logger      zerolog.Logger
}

// NewServiceRegistry initializes a new service registry with dependencies.
// mqttClient may be nil when no broker is configured; registering an
// MQTT-backed service then fails.
func NewServiceRegistry(mqttClient mqtt.MQTTClient, logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services:   make(map[string]Service),
		mqttClient: mqttClient,
		logger:     logger,
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc Service) {
	if _, exists := sr.services[name]; exists {
		sr.logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.logger.Info().Msgf("Registered service: %s", name)
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			// Stop already started services before returning
			sr.logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = sr.services[startedServices[i]].Stop()
			}
			return err
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// RegisterServices initializes and registers enabled services based on
// configuration. The notifier is registered before the monitor so its queue
// has a consumer before the first event, and stopped after it so the queue
// drains once all producers are gone.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config, devices []models.DeviceConfig, agentID string) error {
	if (config.Services.Notifier.Enabled || config.Services.Heartbeat.Enabled) && sr.mqttClient == nil {
		return errors.New("mqtt services are enabled but no broker is configured")
	}

	statusBoard := cmap.New[models.Status]()

	var events chan models.StatusChange
	if config.Services.Notifier.Enabled {
		queueSize := config.Services.Notifier.QueueSize
		if queueSize <= 0 {
			queueSize = constants.DefaultEventQueueSize
		}
		events = make(chan models.StatusChange, queueSize)
	}

	// Ordered service definitions with inline constructors
	servicesInOrder := []struct {
		name        string
		enabled     bool
		constructor func() (Service, error)
	}{
		{
			name:    "notifier",
			enabled: config.Services.Notifier.Enabled,
			constructor: func() (Service, error) {
				if config.Services.Notifier.Topic == "" {
					return nil, errors.New("notifier service is enabled without a topic")
				}
				return services.NewNotifierService(
					config.Services.Notifier.Topic,
					config.Services.Notifier.QOS,
					sr.mqttClient,
					events,
					sr.logger,
				), nil
			},
		},
		{
			name:    "heartbeat",
			enabled: config.Services.Heartbeat.Enabled,
			constructor: func() (Service, error) {
				if config.Services.Heartbeat.Topic == "" {
					return nil, errors.New("heartbeat service is enabled without a topic")
				}
				interval := config.Services.Heartbeat.Interval
				if interval <= 0 {
					interval = constants.DefaultHeartbeatInterval
				}
				return services.NewHeartbeatService(
					config.Services.Heartbeat.Topic,
					interval,
					agentID,
					config.Services.Heartbeat.QOS,
					sr.mqttClient,
					statusBoard,
					sr.logger,
				), nil
			},
		},
		{
			name:    "monitor",
			enabled: config.API.BaseURL != "",
			constructor: func() (Service, error) {
				return services.NewMonitorService(
					devices,
					sr.newAPIClientFactory(config),
					statusBoard,
					events,
					sr.logger,
				), nil
			},
		},
	}

	// Register services in the predefined order
	registeredServices := []string{}
	for _, svc := range servicesInOrder {
		if svc.enabled {
			serviceInstance, err := svc.constructor()
			if err != nil {
				sr.logger.Error().Err(err).Msgf("Failed to create %s service", svc.name)
				return err
			}
			sr.RegisterService(svc.name, serviceInstance)
			registeredServices = append(registeredServices, svc.name)
		}
	}

	if config.API.BaseURL == "" {
		sr.logger.Error().Msg("No backend API configured, device monitoring is disabled")
	}

	sr.logger.Info().Msgf("Registered services in order: %v", registeredServices)
	return nil
}

// newAPIClientFactory builds the per-device backend client factory with the
// configured timeouts and retry policy.
func (sr *ServiceRegistry) newAPIClientFactory(config *utils.Config) func() api.APIClientInterface {
	timeout := config.API.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultAPITimeout
	}
	retryAttempts := config.API.RetryAttempts
	if retryAttempts <= 0 {
		retryAttempts = constants.DefaultAPIRetryAttempts
	}
	retryDelay := config.API.RetryDelay
	if retryDelay <= 0 {
		retryDelay = constants.DefaultAPIRetryDelay
	}

	baseURL := config.API.BaseURL
	username := config.API.Username
	password := config.API.Password

	return func() api.APIClientInterface {
		return api.NewAPIClient(baseURL, username, password, timeout, retryAttempts, retryDelay)
	}
}
