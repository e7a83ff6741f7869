package services

import (
	"context"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/mock"

	"github.com/benmeehan/netmon-agent/pkg/api"
)

// MockMQTTClient is a mock implementation of the MQTTClient interface
type MockMQTTClient struct {
	mock.Mock
}

func (m *MockMQTTClient) Connect() mqtt.Token {
	args := m.Called()
	return args.Get(0).(mqtt.Token)
}

func (m *MockMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	args := m.Called(topic, qos, retained, payload)
	return args.Get(0).(mqtt.Token)
}

func (m *MockMQTTClient) Disconnect(quiesce uint) {
	m.Called(quiesce)
}

// MockToken is a mock implementation of the mqtt.Token interface
type MockToken struct {
	mock.Mock
}

func (m *MockToken) Wait() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockToken) WaitTimeout(timeout time.Duration) bool {
	args := m.Called(timeout)
	return args.Bool(0)
}

func (m *MockToken) Done() <-chan struct{} {
	args := m.Called()
	return args.Get(0).(<-chan struct{})
}

func (m *MockToken) Error() error {
	args := m.Called()
	return args.Error(0)
}

// newOkToken returns a token that reports a successful publish.
func newOkToken() *MockToken {
	token := new(MockToken)
	token.On("Wait").Return(true)
	token.On("Error").Return(nil)
	return token
}

// MockAPIClient is a mock implementation of the APIClientInterface
type MockAPIClient struct {
	mock.Mock
}

func (m *MockAPIClient) Authenticate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAPIClient) ListDevices(ctx context.Context) ([]api.Device, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.Device), args.Error(1)
}

func (m *MockAPIClient) CreateDevice(ctx context.Context, request api.CreateDeviceRequest) (*api.CreateDeviceResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.CreateDeviceResponse), args.Error(1)
}

func (m *MockAPIClient) UpdateDevice(ctx context.Context, deviceID string, request api.UpdateDeviceRequest) error {
	args := m.Called(ctx, deviceID, request)
	return args.Error(0)
}

func (m *MockAPIClient) Close() {
	m.Called()
}
