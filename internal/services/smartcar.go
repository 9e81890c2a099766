// Smartcar API implementation of [VehicleService]
//
// Endpoint shapes based on https://smartcar.com/docs/api-reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/carlink/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	smartcarConnectURL = "https://connect.smartcar.com/oauth/authorize"
	smartcarTokenURL   = "https://auth.smartcar.com/oauth/token"
	smartcarBaseURL    = "https://api.smartcar.com/v2.0"

	defaultRequestsPerSecond = 5.0
)

// smartcarScopes covers everything the demo's request types need: info, location,
// odometer reads and security (lock/unlock) commands.
var smartcarScopes = []string{
	"required:read_vehicle_info",
	"read_location",
	"read_odometer",
	"control_security",
}

// smartcarError is the JSON error envelope returned by the Smartcar API.
type smartcarError struct {
	Type        string `json:"type"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Message     string `json:"message"`
}

func (e *smartcarError) text() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Message
}

// vehiclesResponse is the paginated vehicle-listing payload.
type vehiclesResponse struct {
	Vehicles []string `json:"vehicles"`
	Paging   struct {
		Count  int `json:"count"`
		Offset int `json:"offset"`
	} `json:"paging"`
}

// securityRequest is the body for lock/unlock commands.
type securityRequest struct {
	Action string `json:"action"`
}

// SmartcarService implements [VehicleService] against the Smartcar API.
// Uses [oauth2] for the code-for-token exchange and a shared [rate.Limiter]
// across all vehicle calls.
type SmartcarService struct {
	config     *oauth2.Config
	mode       string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// SmartcarOpts contains construction options for [NewSmartcarService].
//
// BaseURL, TokenURL, and HTTPClient exist so tests can point the service at a
// local stand-in; zero values select the real Smartcar endpoints.
type SmartcarOpts struct {
	ClientID          string
	ClientSecret      string
	RedirectURI       string
	Mode              string
	BaseURL           string
	TokenURL          string
	HTTPClient        *http.Client
	RequestsPerSecond float64
}

// NewSmartcarService creates a new Smartcar service with the given OAuth2 credentials.
func NewSmartcarService(opts SmartcarOpts) (*SmartcarService, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client id", shared.ErrInvalidConfig)
	}
	if opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client secret", shared.ErrInvalidConfig)
	}
	if opts.Mode == "" {
		opts.Mode = shared.ModeTest
	}
	if opts.BaseURL == "" {
		opts.BaseURL = smartcarBaseURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = smartcarTokenURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRequestsPerSecond
	}

	config := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		RedirectURL:  opts.RedirectURI,
		Scopes:       smartcarScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  smartcarConnectURL,
			TokenURL: opts.TokenURL,
		},
	}

	return &SmartcarService{
		config:     config,
		mode:       opts.Mode,
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
	}, nil
}

func (s *SmartcarService) Name() string {
	return "Smartcar"
}

// TestMode reports whether the service targets simulated vehicles.
func (s *SmartcarService) TestMode() bool {
	return s.mode == shared.ModeTest
}

// AuthURL returns the Smartcar Connect URL for user authorization. The mode
// parameter selects simulated or live vehicles.
func (s *SmartcarService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.SetAuthURLParam("mode", s.mode))
}

// ExchangeCode exchanges an authorization code for an access token.
func (s *SmartcarService) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return token, nil
}

// doRequest performs an authenticated, rate-limited HTTP request to the Smartcar API.
func (s *SmartcarService) doRequest(ctx context.Context, method, accessToken, endpoint string, body, result any) error {
	if accessToken == "" {
		return fmt.Errorf("%w: missing access token", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	apiURL := s.baseURL + endpoint

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr smartcarError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.text() != "" {
			return fmt.Errorf("%w: %s (status %d)", shared.ErrAPIRequest, apiErr.text(), resp.StatusCode)
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Vehicles retrieves all vehicle IDs reachable with the access token.
func (s *SmartcarService) Vehicles(ctx context.Context, accessToken string) ([]string, error) {
	var response vehiclesResponse
	if err := s.doRequest(ctx, http.MethodGet, accessToken, "/vehicles", nil, &response); err != nil {
		return nil, err
	}
	return response.Vehicles, nil
}

// Info retrieves identifying metadata for a single vehicle.
func (s *SmartcarService) Info(ctx context.Context, accessToken, vehicleID string) (*Vehicle, error) {
	var vehicle Vehicle
	endpoint := fmt.Sprintf("/vehicles/%s", vehicleID)
	if err := s.doRequest(ctx, http.MethodGet, accessToken, endpoint, nil, &vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// Location retrieves the vehicle's last known position.
func (s *SmartcarService) Location(ctx context.Context, accessToken, vehicleID string) (*Location, error) {
	var location Location
	endpoint := fmt.Sprintf("/vehicles/%s/location", vehicleID)
	if err := s.doRequest(ctx, http.MethodGet, accessToken, endpoint, nil, &location); err != nil {
		return nil, err
	}
	return &location, nil
}

// Odometer retrieves the vehicle's odometer reading.
func (s *SmartcarService) Odometer(ctx context.Context, accessToken, vehicleID string) (*Odometer, error) {
	var odometer Odometer
	endpoint := fmt.Sprintf("/vehicles/%s/odometer", vehicleID)
	if err := s.doRequest(ctx, http.MethodGet, accessToken, endpoint, nil, &odometer); err != nil {
		return nil, err
	}
	return &odometer, nil
}

// Lock sends a lock command to the vehicle.
func (s *SmartcarService) Lock(ctx context.Context, accessToken, vehicleID string) error {
	return s.security(ctx, accessToken, vehicleID, "LOCK")
}

// Unlock sends an unlock command to the vehicle.
func (s *SmartcarService) Unlock(ctx context.Context, accessToken, vehicleID string) error {
	return s.security(ctx, accessToken, vehicleID, "UNLOCK")
}

func (s *SmartcarService) security(ctx context.Context, accessToken, vehicleID, action string) error {
	endpoint := fmt.Sprintf("/vehicles/%s/security", vehicleID)
	return s.doRequest(ctx, http.MethodPost, accessToken, endpoint, securityRequest{Action: action}, nil)
}

// Disconnect revokes the application's access to a vehicle.
func (s *SmartcarService) Disconnect(ctx context.Context, accessToken, vehicleID string) error {
	endpoint := fmt.Sprintf("/vehicles/%s/application", vehicleID)
	return s.doRequest(ctx, http.MethodDelete, accessToken, endpoint, nil, nil)
}
