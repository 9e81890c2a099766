package tasks

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/desertthunder/carlink/internal/services"
	mocks "github.com/desertthunder/carlink/internal/testing"
)

func TestListVehicles(t *testing.T) {
	t.Run("Fetches Metadata For Every Vehicle", func(t *testing.T) {
		svc := &mocks.MockVehicleService{
			VehicleIDs: []string{"v1", "v2"},
			InfoByID: map[string]services.Vehicle{
				"v1": {ID: "v1", Make: "TESLA", Model: "Model 3", Year: 2020},
				"v2": {ID: "v2", Make: "HONDA", Model: "Civic", Year: 2019},
			},
		}
		engine := NewFleetEngine(svc, nil)

		vehicles, err := engine.ListVehicles(context.Background(), "tok")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(vehicles) != 2 {
			t.Fatalf("expected 2 vehicles, got %d", len(vehicles))
		}
		if vehicles["v1"].Make != "TESLA" {
			t.Errorf("placeholder for v1 was not overwritten: %+v", vehicles["v1"])
		}
		if vehicles["v2"].Year != 2019 {
			t.Errorf("placeholder for v2 was not overwritten: %+v", vehicles["v2"])
		}
	})

	t.Run("Empty Fleet", func(t *testing.T) {
		engine := NewFleetEngine(&mocks.MockVehicleService{}, nil)
		vehicles, err := engine.ListVehicles(context.Background(), "tok")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(vehicles) != 0 {
			t.Errorf("expected empty mapping, got %v", vehicles)
		}
	})

	t.Run("Listing Failure", func(t *testing.T) {
		svc := &mocks.MockVehicleService{VehiclesErr: errors.New("listing down")}
		engine := NewFleetEngine(svc, nil)

		if _, err := engine.ListVehicles(context.Background(), "tok"); err == nil {
			t.Error("expected listing failure to surface")
		}
	})

	t.Run("All Or Nothing On Fetch Failure", func(t *testing.T) {
		svc := &mocks.MockVehicleService{
			VehicleIDs: []string{"v1", "v2", "v3"},
			InfoErr:    errors.New("metadata fetch failed"),
		}
		engine := NewFleetEngine(svc, nil)

		vehicles, err := engine.ListVehicles(context.Background(), "tok")
		if err == nil {
			t.Fatal("expected error when a metadata fetch fails")
		}
		if vehicles != nil {
			t.Errorf("a partial mapping must never be returned, got %v", vehicles)
		}
	})
}

func TestDisconnectAll(t *testing.T) {
	t.Run("Disconnects Every Vehicle", func(t *testing.T) {
		svc := &mocks.MockVehicleService{}
		engine := NewFleetEngine(svc, nil)

		engine.DisconnectAll(context.Background(), "tok", []string{"v1", "v2", "v3"})

		got := svc.DisconnectedIDs()
		sort.Strings(got)
		want := []string{"v1", "v2", "v3"}
		if len(got) != len(want) {
			t.Fatalf("expected %d disconnects, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("expected disconnect for %s, got %s", want[i], got[i])
			}
		}
	})

	t.Run("Settles Despite Failures", func(t *testing.T) {
		svc := &mocks.MockVehicleService{DisconnectErr: errors.New("already disconnected")}
		engine := NewFleetEngine(svc, nil)

		// Must not panic, return, or skip vehicles: logout is unconditional.
		engine.DisconnectAll(context.Background(), "tok", []string{"v1", "v2"})

		if len(svc.DisconnectedIDs()) != 2 {
			t.Errorf("expected both disconnect attempts to run, got %v", svc.DisconnectedIDs())
		}
	})

	t.Run("No Vehicles", func(t *testing.T) {
		engine := NewFleetEngine(&mocks.MockVehicleService{}, nil)
		engine.DisconnectAll(context.Background(), "tok", nil)
	})
}
