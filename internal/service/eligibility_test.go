package service

import (
	"testing"
	"time"

	"tripbroker/internal/domain"
)

func carrierFixture(id string) *domain.UserProfile {
	return &domain.UserProfile{
		ID:              id,
		Role:            domain.RoleCarrier,
		VehicleCapacity: 4,
		VehicleCategory: "SEDAN",
	}
}

func tripFixture(id, origin, destination string, departure time.Time) *domain.Trip {
	return &domain.Trip{
		ID:               id,
		UserID:           "traveler-1",
		Origin:           origin,
		Destination:      destination,
		Passengers:       2,
		PreferredVehicle: domain.VehicleAny,
		RequestType:      domain.RequestTypeGeneral,
		Status:           domain.TripStatusAwaitingOffers,
		DepartureDate:    departure,
		CreatedAt:        time.Now(),
	}
}

// Three carriers in three modes see three disjoint pools from the same trips.
func TestIsEligible_ModesAreMutuallyExclusive(t *testing.T) {
	t.Parallel()

	now := time.Now()
	departure := now.Add(24 * time.Hour)

	generalTrip := tripFixture("trip-general", "irbid", "mafraq", departure)
	jurisdictionTrip := tripFixture("trip-jur", "aqaba", "amman", departure)
	jurisdictionTrip.RequestType = domain.RequestTypeJurisdiction
	jurisdictionTrip.JurisdictionOrigin = "aqaba"
	jurisdictionTrip.JurisdictionDestination = "amman"
	returnTrip := tripFixture("trip-return", "zarqa", "amman", departure)
	returnTrip.RequestType = domain.RequestTypeJurisdiction
	returnTrip.JurisdictionOrigin = "zarqa"
	returnTrip.JurisdictionDestination = "amman"

	pool := []*domain.Trip{generalTrip, jurisdictionTrip, returnTrip}

	// Carrier A: general pool, no jurisdiction, no active trip.
	carrierA := carrierFixture("carrier-a")
	gotA := FilterEligible(carrierA, pool, nil, now)
	if len(gotA) != 1 || gotA[0].ID != "trip-general" {
		t.Errorf("general carrier: expected [trip-general], got %v", tripIDs(gotA))
	}

	// Carrier B: jurisdiction aqaba<->amman.
	carrierB := carrierFixture("carrier-b")
	carrierB.Jurisdiction = &domain.Jurisdiction{Origin: "aqaba", Destination: "amman"}
	gotB := FilterEligible(carrierB, pool, nil, now)
	if len(gotB) != 1 || gotB[0].ID != "trip-jur" {
		t.Errorf("jurisdiction carrier: expected [trip-jur], got %v", tripIDs(gotB))
	}

	// Carrier C: in transit toward zarqa, so only trips leaving zarqa. Their
	// jurisdiction must not widen the pool while in return-trip mode.
	carrierC := carrierFixture("carrier-c")
	carrierC.Jurisdiction = &domain.Jurisdiction{Origin: "aqaba", Destination: "amman"}
	carrierC.CurrentActiveTripID = "trip-active"
	activeTrip := &domain.Trip{
		ID:          "trip-active",
		Origin:      "amman",
		Destination: "zarqa",
		Status:      domain.TripStatusInTransit,
	}
	gotC := FilterEligible(carrierC, pool, activeTrip, now)
	if len(gotC) != 1 || gotC[0].ID != "trip-return" {
		t.Errorf("return-trip carrier: expected [trip-return], got %v", tripIDs(gotC))
	}
}

func TestIsEligible_TerminalActiveTripFallsBackToNormalRouting(t *testing.T) {
	t.Parallel()

	now := time.Now()
	trip := tripFixture("trip-1", "amman", "irbid", now.Add(time.Hour))

	carrier := carrierFixture("carrier-1")
	carrier.CurrentActiveTripID = "trip-done"
	completed := &domain.Trip{
		ID:          "trip-done",
		Origin:      "amman",
		Destination: "aqaba",
		Status:      domain.TripStatusCompleted,
	}

	if !IsEligible(carrier, trip, completed, now) {
		t.Error("completed active trip should not keep the carrier in return-trip mode")
	}
}

func TestIsEligible_BaseChecks(t *testing.T) {
	t.Parallel()

	now := time.Now()
	departure := now.Add(time.Hour)

	cases := []struct {
		name    string
		carrier func() *domain.UserProfile
		trip    func() *domain.Trip
	}{
		{
			name:    "not a carrier",
			carrier: func() *domain.UserProfile { c := carrierFixture("c"); c.Role = domain.RoleTraveler; return c },
			trip:    func() *domain.Trip { return tripFixture("t", "amman", "irbid", departure) },
		},
		{
			name:    "partial profile",
			carrier: func() *domain.UserProfile { c := carrierFixture("c"); c.IsPartial = true; return c },
			trip:    func() *domain.Trip { return tripFixture("t", "amman", "irbid", departure) },
		},
		{
			name:    "deactivated",
			carrier: func() *domain.UserProfile { c := carrierFixture("c"); c.IsDeactivated = true; return c },
			trip:    func() *domain.Trip { return tripFixture("t", "amman", "irbid", departure) },
		},
		{
			name:    "own trip",
			carrier: func() *domain.UserProfile { return carrierFixture("traveler-1") },
			trip:    func() *domain.Trip { return tripFixture("t", "amman", "irbid", departure) },
		},
		{
			name:    "not awaiting offers",
			carrier: func() *domain.UserProfile { return carrierFixture("c") },
			trip: func() *domain.Trip {
				tr := tripFixture("t", "amman", "irbid", departure)
				tr.Status = domain.TripStatusPlanned
				return tr
			},
		},
		{
			name:    "too many passengers",
			carrier: func() *domain.UserProfile { return carrierFixture("c") },
			trip: func() *domain.Trip {
				tr := tripFixture("t", "amman", "irbid", departure)
				tr.Passengers = 9
				return tr
			},
		},
		{
			name:    "vehicle mismatch",
			carrier: func() *domain.UserProfile { return carrierFixture("c") },
			trip: func() *domain.Trip {
				tr := tripFixture("t", "amman", "irbid", departure)
				tr.PreferredVehicle = "VAN"
				return tr
			},
		},
		{
			name:    "departure already passed",
			carrier: func() *domain.UserProfile { return carrierFixture("c") },
			trip:    func() *domain.Trip { return tripFixture("t", "amman", "irbid", now.Add(-time.Minute)) },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if IsEligible(tc.carrier(), tc.trip(), nil, now) {
				t.Error("expected not eligible")
			}
		})
	}
}

func TestIsEligible_VehiclePreferenceAnyMatchesEverything(t *testing.T) {
	t.Parallel()

	now := time.Now()
	trip := tripFixture("t", "amman", "irbid", now.Add(time.Hour))
	carrier := carrierFixture("c")
	carrier.VehicleCategory = "BUS"

	if !IsEligible(carrier, trip, nil, now) {
		t.Error("ANY preference should match any vehicle category")
	}
}

func tripIDs(trips []*domain.Trip) []string {
	ids := make([]string, 0, len(trips))
	for _, t := range trips {
		ids = append(ids, t.ID)
	}
	return ids
}
