package api

// LoginRequest is the credential payload for POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token issued by the backend. ExpiresIn is
// the token lifetime in seconds; zero means the backend did not report one.
type LoginResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresIn int64  `json:"expires_in"`
}

// Device is one device record as returned by GET /devices. Only the fields
// the agent consumes are modeled; the backend sends more.
type Device struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Type      string             `json:"type"`
	Status    string             `json:"status"`
	Location  string             `json:"location"`
	IPAddress string             `json:"ipAddress"`
	Metrics   map[string]float64 `json:"metrics"`
}

// CreateDeviceRequest registers a device with POST /devices.
type CreateDeviceRequest struct {
	Name     string             `json:"name"`
	Type     string             `json:"type"`
	Location string             `json:"location"`
	Status   string             `json:"status"`
	Metrics  map[string]float64 `json:"metrics"`
}

// CreateDeviceResponse acknowledges a device creation.
type CreateDeviceResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// UpdateDeviceRequest is the per-cycle status push for PUT /devices/{id}.
type UpdateDeviceRequest struct {
	Status  string             `json:"status"`
	Metrics map[string]float64 `json:"metrics"`
}

// errorResponse is the backend's error envelope.
type errorResponse struct {
	Error string `json:"error"`
}
