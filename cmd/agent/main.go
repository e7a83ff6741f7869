package main

import (
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/benmeehan/netmon-agent/internal/service_registry"
	"github.com/benmeehan/netmon-agent/internal/utils"
	"github.com/benmeehan/netmon-agent/pkg/file"
	"github.com/benmeehan/netmon-agent/pkg/identity"
	"github.com/benmeehan/netmon-agent/pkg/mqtt"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the agent configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	// Set up structured logging with JSON output
	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	// Initialize file operations handler
	fileClient := file.NewFileService()

	// A missing configuration file is replaced by the default template so a
	// fresh install comes up with something editable.
	if exists, err := fileClient.IsFileExists(*configPath); err == nil && !exists {
		logger.Info().Str("path", *configPath).Msg("No configuration file found, writing default template")
		if err := os.MkdirAll(filepath.Dir(*configPath), 0o755); err != nil {
			logger.Fatal().Err(err).Msg("Failed to create configuration directory")
		}
	}

	// Load configuration from file
	config, err := utils.LoadConfig(*configPath, fileClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Validate device descriptors and fill in defaults
	devices := utils.BuildDeviceConfigs(config.Devices, logger)
	logger.Info().Int("devices", len(devices)).Msg("Loaded device configurations")
	for _, device := range devices {
		logger.Info().
			Str("device_id", device.ID).
			Str("device_name", device.Name).
			Str("type", string(device.Type)).
			Str("address", device.Address).
			Interface("probes", device.Probes).
			Msg("Configured device")
	}

	mqttNeeded := config.Services.Notifier.Enabled || config.Services.Heartbeat.Enabled
	if len(devices) == 0 && !mqttNeeded {
		logger.Error().Str("path", *configPath).
			Msg("No devices configured and no services enabled, edit the configuration and restart")
		return
	}

	// Generate a unique agent ID by appending a UUID. With an identity file
	// configured the generated ID is persisted, so heartbeats keep the same
	// agent ID across restarts.
	clientID := config.MQTT.ClientID
	if clientID == "" {
		clientID = "netmon-agent"
	}
	agentID := ""
	if config.Identity.AgentFile != "" {
		agentInfo := identity.NewAgentInfo(config.Identity.AgentFile, fileClient)
		if err := agentInfo.LoadAgentInfo(); err != nil {
			logger.Fatal().Err(err).Msg("Failed to load agent identity")
		}
		agentID = agentInfo.GetAgentID()
		if agentID == "" {
			agentID = clientID + "-" + uuid.New().String()
			if err := agentInfo.SaveAgentID(agentID); err != nil {
				logger.Fatal().Err(err).Msg("Failed to persist agent identity")
			}
			logger.Info().Str("agent_id", agentID).Msg("Generated and persisted a new agent identity")
		}
	} else {
		agentID = clientID + "-" + uuid.New().String()
	}

	// Initialize the shared MQTT connection only when a service publishes
	var mqttClient mqtt.MQTTClient
	if mqttNeeded {
		logger.Info().Str("client_id", agentID).Msg("Using MQTT Client ID")
		mqttService := mqtt.NewMqttService(fileClient)
		if err := mqttService.Initialize(config.MQTT.Broker, agentID, config.MQTT.CACertificate); err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
		}
		mqttClient = mqttService
	}

	// Create a new service registry to manage services
	serviceRegistry := service_registry.NewServiceRegistry(mqttClient, logger)

	// Register all services based on the configuration
	if err := serviceRegistry.RegisterServices(config, devices, agentID); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register services")
	}

	// Start all registered services in the registry
	if err := serviceRegistry.StartServices(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start services")
	}
	logger.Info().Msg("All services started successfully")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	if err := serviceRegistry.StopServices(); err != nil {
		logger.Error().Err(err).Msg("Some services did not stop cleanly")
	}
	if mqttClient != nil {
		mqttClient.Disconnect(250)
	}
	logger.Info().Msg("Shutdown complete")
}
