// package tasks implements concurrent fleet operations on top of a [services.VehicleService].
//
// The core abstraction is FleetEngine, which owns the two join policies the app
// needs: vehicle listing is a fail-fast join (one bad metadata fetch aborts the
// whole listing), while disconnect-on-logout is an always-settle join (every
// attempt runs to completion and failures are swallowed).
package tasks

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/carlink/internal/services"
	"github.com/desertthunder/carlink/internal/shared"
	"golang.org/x/sync/errgroup"
)

// FleetEngine orchestrates multi-vehicle operations against a vehicle service.
type FleetEngine struct {
	svc    services.VehicleService
	logger *log.Logger
}

// NewFleetEngine creates a FleetEngine bound to the given service.
func NewFleetEngine(svc services.VehicleService, logger *log.Logger) *FleetEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &FleetEngine{svc: svc, logger: logger}
}

// ListVehicles discovers every vehicle reachable with the token and fetches its
// metadata. Each discovered ID is registered as a placeholder record immediately;
// metadata fetches run concurrently and the placeholders are overwritten once all
// of them have succeeded, keyed by the ID the metadata itself reports.
//
// The join is all-or-nothing: a single fetch failure fails the listing and the
// partially fetched mapping is never returned.
func (e *FleetEngine) ListVehicles(ctx context.Context, accessToken string) (map[string]services.Vehicle, error) {
	ids, err := e.svc.Vehicles(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	vehicles := make(map[string]services.Vehicle, len(ids))
	fetched := make([]*services.Vehicle, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		vehicles[id] = services.Vehicle{ID: id}

		g.Go(func() error {
			info, err := e.svc.Info(gctx, accessToken, id)
			if err != nil {
				return err
			}
			fetched[i] = info
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, v := range fetched {
		vehicles[v.ID] = *v
	}

	e.logger.Debug("listed vehicles", "count", len(vehicles))
	return vehicles, nil
}

// DisconnectAll revokes access to every given vehicle in parallel. Unlike
// ListVehicles it never fails fast: all attempts settle regardless of outcome,
// and individual failures are only logged. Logout must be unconditional.
func (e *FleetEngine) DisconnectAll(ctx context.Context, accessToken string, ids []string) {
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := e.svc.Disconnect(ctx, accessToken, id); err != nil {
				e.logger.Debug("disconnect failed", "vehicle", id, "error", err)
			}
		}()
	}
	wg.Wait()
}
