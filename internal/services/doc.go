// Package services defines the [VehicleService] interface for vehicle-connectivity
// providers and implements it for the Smartcar API.
//
// # VehicleService Interface
//
// The web handlers and the fleet engine depend on the interface only, so tests can
// substitute a double and the Smartcar API stays an opaque collaborator.
//
// # Smartcar Implementation
//
// [SmartcarService] wraps three Smartcar surfaces:
//   - connect.smartcar.com — the hosted authorization page ([SmartcarService.AuthURL])
//   - auth.smartcar.com — the token endpoint, driven through [oauth2.Config.Exchange]
//   - api.smartcar.com/v2.0 — vehicle listing, reads, and commands
//
// Outbound API calls share a [rate.Limiter] so bursts of per-vehicle fetches stay
// inside Smartcar's request budget.
//
// In test mode the authorization URL carries mode=test, which makes Smartcar serve
// simulated vehicles instead of real connected cars.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : operation attempted without an access token
//   - [shared.ErrAPIRequest] : HTTP request failed or returned a non-2xx status
package services
