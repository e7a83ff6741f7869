// Package api implements the client for the monitoring backend's REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// tokenSafetyMargin is subtracted from the reported token lifetime so the
// client re-authenticates before the backend starts rejecting the token.
const tokenSafetyMargin = 5 * time.Minute

// defaultTokenLifetime is assumed when the backend omits expires_in.
const defaultTokenLifetime = 24 * time.Hour

// APIClientInterface defines the backend operations used by the agent.
type APIClientInterface interface {
	Authenticate(ctx context.Context) error
	ListDevices(ctx context.Context) ([]Device, error)
	CreateDevice(ctx context.Context, request CreateDeviceRequest) (*CreateDeviceResponse, error)
	UpdateDevice(ctx context.Context, deviceID string, request UpdateDeviceRequest) error
	Close()
}

// APIClient talks to the backend over HTTP with bearer-token authentication.
// Every call retries transport failures up to RetryAttempts with a fixed
// delay, and an unauthorized answer triggers one re-authentication before the
// retry loop continues. Canceling the context aborts the call, including the
// delay between attempts. A client is owned by a single goroutine; methods
// are not safe for concurrent use.
type APIClient struct {
	BaseURL       string
	Username      string
	Password      string
	RetryAttempts int
	RetryDelay    time.Duration

	httpClient   *http.Client
	token        string
	tokenExpires time.Time
}

// NewAPIClient initializes a backend client. baseURL carries the API prefix,
// e.g. "http://backend:5000/api".
func NewAPIClient(baseURL, username, password string, timeout time.Duration,
	retryAttempts int, retryDelay time.Duration) APIClientInterface {

	return &APIClient{
		BaseURL:       baseURL,
		Username:      username,
		Password:      password,
		RetryAttempts: retryAttempts,
		RetryDelay:    retryDelay,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

// Authenticate logs in and caches the bearer token together with the instant
// it should be refreshed.
func (c *APIClient) Authenticate(ctx context.Context) error {
	payload, err := json.Marshal(LoginRequest{Username: c.Username, Password: c.Password})
	if err != nil {
		return fmt.Errorf("failed to serialize login payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/login", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build login request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read login response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return backendError(resp.StatusCode, body)
	}

	var login LoginResponse
	if err := json.Unmarshal(body, &login); err != nil {
		return fmt.Errorf("failed to decode login response: %v", err)
	}
	if login.Token == "" {
		return errors.New("login response carried no token")
	}

	lifetime := defaultTokenLifetime
	if login.ExpiresIn > 0 {
		lifetime = time.Duration(login.ExpiresIn) * time.Second
	}

	c.token = login.Token
	c.tokenExpires = time.Now().Add(lifetime - tokenSafetyMargin)
	return nil
}

// ListDevices fetches every device known to the backend.
func (c *APIClient) ListDevices(ctx context.Context) ([]Device, error) {
	var devices []Device
	if err := c.do(ctx, http.MethodGet, "/devices", nil, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// CreateDevice registers a device. Creation is not idempotent; callers check
// existence via ListDevices first.
func (c *APIClient) CreateDevice(ctx context.Context, request CreateDeviceRequest) (*CreateDeviceResponse, error) {
	var created CreateDeviceResponse
	if err := c.do(ctx, http.MethodPost, "/devices", request, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateDevice pushes the aggregated status and metrics for one device.
func (c *APIClient) UpdateDevice(ctx context.Context, deviceID string, request UpdateDeviceRequest) error {
	return c.do(ctx, http.MethodPut, "/devices/"+deviceID, request, nil)
}

// Close releases the connections held by the underlying transport.
func (c *APIClient) Close() {
	c.httpClient.CloseIdleConnections()
}

// ensureAuthenticated refreshes the session when the token is missing or due
// to expire.
func (c *APIClient) ensureAuthenticated(ctx context.Context) error {
	if c.token != "" && time.Now().Before(c.tokenExpires) {
		return nil
	}
	return c.Authenticate(ctx)
}

// do runs one authenticated backend call under the retry policy. Transport
// failures are retried after RetryDelay; an unauthorized answer triggers one
// re-authentication and the loop continues without delay; any other non-2xx
// answer fails immediately with the backend's error text. A canceled context
// ends the loop before the next attempt.
func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to serialize %s %s payload: %v", method, path, err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.RetryAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s %s aborted: %v", method, path, err)
		}

		if err := c.ensureAuthenticated(ctx); err != nil {
			lastErr = err
			c.sleepBeforeRetry(ctx, attempt)
			continue
		}

		status, respBody, err := c.roundTrip(ctx, method, path, payload)
		if err != nil {
			lastErr = err
			c.sleepBeforeRetry(ctx, attempt)
			continue
		}

		if status == http.StatusUnauthorized {
			lastErr = backendError(status, respBody)
			if err := c.Authenticate(ctx); err != nil {
				lastErr = err
			}
			continue
		}
		if status < 200 || status >= 300 {
			return backendError(status, respBody)
		}

		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("failed to decode %s %s response: %v", method, path, err)
			}
		}
		return nil
	}

	return fmt.Errorf("%s %s failed after %d attempts: %v", method, path, c.RetryAttempts, lastErr)
}

// roundTrip performs a single authenticated request and reads the full body.
func (c *APIClient) roundTrip(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build %s %s request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s request failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read %s %s response: %v", method, path, err)
	}
	return resp.StatusCode, respBody, nil
}

// sleepBeforeRetry applies the fixed delay between attempts, skipping it
// after the final one. Cancellation cuts the delay short.
func (c *APIClient) sleepBeforeRetry(ctx context.Context, attempt int) {
	if attempt >= c.RetryAttempts {
		return
	}
	select {
	case <-time.After(c.RetryDelay):
	case <-ctx.Done():
	}
}

// backendError extracts the backend's error envelope, falling back to the
// generic status text.
func backendError(status int, body []byte) error {
	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return fmt.Errorf("backend returned %d: %s", status, envelope.Error)
	}
	return fmt.Errorf("backend returned %d: %s", status, http.StatusText(status))
}
