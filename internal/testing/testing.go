// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/desertthunder/carlink/internal/services"
	"golang.org/x/oauth2"
)

// MockVehicleService is a configurable test double for [services.VehicleService].
// Zero-value fields yield benign defaults; set the Err fields to force failures.
// Calls counts every API-shaped invocation so tests can assert "no external calls".
type MockVehicleService struct {
	VehicleIDs    []string
	InfoByID      map[string]services.Vehicle
	LocationValue services.Location
	OdometerValue services.Odometer
	Token         *oauth2.Token

	ExchangeErr   error
	VehiclesErr   error
	InfoErr       error
	LocationErr   error
	OdometerErr   error
	LockErr       error
	UnlockErr     error
	DisconnectErr error

	Calls atomic.Int64

	mu           sync.Mutex
	Disconnected []string
}

func (m *MockVehicleService) AuthURL(state string) string {
	return "https://connect.example.com/oauth/authorize?state=" + state
}

func (m *MockVehicleService) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	m.Calls.Add(1)
	if m.ExchangeErr != nil {
		return nil, m.ExchangeErr
	}
	if m.Token != nil {
		return m.Token, nil
	}
	return &oauth2.Token{AccessToken: "mock-token"}, nil
}

func (m *MockVehicleService) Vehicles(ctx context.Context, accessToken string) ([]string, error) {
	m.Calls.Add(1)
	if m.VehiclesErr != nil {
		return nil, m.VehiclesErr
	}
	return m.VehicleIDs, nil
}

func (m *MockVehicleService) Info(ctx context.Context, accessToken, vehicleID string) (*services.Vehicle, error) {
	m.Calls.Add(1)
	if m.InfoErr != nil {
		return nil, m.InfoErr
	}
	if v, ok := m.InfoByID[vehicleID]; ok {
		return &v, nil
	}
	return &services.Vehicle{ID: vehicleID}, nil
}

func (m *MockVehicleService) Location(ctx context.Context, accessToken, vehicleID string) (*services.Location, error) {
	m.Calls.Add(1)
	if m.LocationErr != nil {
		return nil, m.LocationErr
	}
	loc := m.LocationValue
	return &loc, nil
}

func (m *MockVehicleService) Odometer(ctx context.Context, accessToken, vehicleID string) (*services.Odometer, error) {
	m.Calls.Add(1)
	if m.OdometerErr != nil {
		return nil, m.OdometerErr
	}
	odo := m.OdometerValue
	return &odo, nil
}

func (m *MockVehicleService) Lock(ctx context.Context, accessToken, vehicleID string) error {
	m.Calls.Add(1)
	return m.LockErr
}

func (m *MockVehicleService) Unlock(ctx context.Context, accessToken, vehicleID string) error {
	m.Calls.Add(1)
	return m.UnlockErr
}

func (m *MockVehicleService) Disconnect(ctx context.Context, accessToken, vehicleID string) error {
	m.Calls.Add(1)
	m.mu.Lock()
	m.Disconnected = append(m.Disconnected, vehicleID)
	m.mu.Unlock()
	return m.DisconnectErr
}

// DisconnectedIDs returns a copy of the vehicles Disconnect was called for.
func (m *MockVehicleService) DisconnectedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Disconnected...)
}

func (m *MockVehicleService) Name() string { return "mock" }

func (m *MockVehicleService) TestMode() bool { return true }

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
