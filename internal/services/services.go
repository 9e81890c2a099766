// package services defines interface VehicleService for vehicle-connectivity HTTP APIs
package services

import (
	"context"

	"golang.org/x/oauth2"
)

// VehicleService defines the operations the demo needs from a vehicle-connectivity
// provider: the authorization handshake, vehicle discovery, reads, and commands.
type VehicleService interface {
	// AuthURL returns the hosted authorization page URL the visitor must open to
	// grant access. state is echoed back on the callback for CSRF protection.
	AuthURL(state string) string

	// ExchangeCode exchanges an authorization code for an access token.
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)

	// Vehicles returns the identifiers of all vehicles reachable with the token.
	Vehicles(ctx context.Context, accessToken string) ([]string, error)

	// Info retrieves identifying metadata (make, model, year) for one vehicle.
	Info(ctx context.Context, accessToken, vehicleID string) (*Vehicle, error)

	// Location retrieves the vehicle's last known position.
	Location(ctx context.Context, accessToken, vehicleID string) (*Location, error)

	// Odometer retrieves the vehicle's odometer reading.
	Odometer(ctx context.Context, accessToken, vehicleID string) (*Odometer, error)

	// Lock sends a lock command. The provider acknowledges asynchronously; a nil
	// error only means the request was accepted.
	Lock(ctx context.Context, accessToken, vehicleID string) error

	// Unlock sends an unlock command, with the same acknowledgement semantics as Lock.
	Unlock(ctx context.Context, accessToken, vehicleID string) error

	// Disconnect revokes the application's access to one vehicle.
	Disconnect(ctx context.Context, accessToken, vehicleID string) error

	// Name returns the name of the provider (e.g. "Smartcar").
	Name() string

	// TestMode reports whether the provider serves simulated vehicles.
	TestMode() bool
}

// Vehicle represents identifying metadata for one vehicle.
//
// A freshly discovered vehicle is registered as a placeholder carrying only its ID;
// the remaining fields arrive with the metadata fetch.
type Vehicle struct {
	ID    string `json:"id"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

// Location represents a vehicle's position.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Odometer represents an odometer reading in kilometers.
type Odometer struct {
	Distance float64 `json:"distance"`
}
