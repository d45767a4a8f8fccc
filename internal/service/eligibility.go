package service

import (
	"time"

	"tripbroker/internal/domain"
)

// IsEligible decides whether a carrier may view and offer on a trip.
// activeTrip is the carrier's CurrentActiveTripID resolved against the store;
// nil when the carrier has no committed trip or it no longer resolves to a
// live one. The check is pure over the snapshot passed in, so it is safe to
// re-run on every store notification.
//
// Routing is evaluated by carrier mode, mutually exclusive in this order:
// return-trip mode, jurisdiction mode, general pool.
func IsEligible(carrier *domain.UserProfile, trip *domain.Trip, activeTrip *domain.Trip, now time.Time) bool {
	if carrier == nil || trip == nil {
		return false
	}
	if !carrier.IsCarrier() || carrier.IsPartial || carrier.IsDeactivated {
		return false
	}
	// A carrier never sees their own posted trips.
	if trip.UserID == carrier.ID {
		return false
	}
	if trip.Status != domain.TripStatusAwaitingOffers {
		return false
	}
	if trip.Passengers > carrier.VehicleCapacity {
		return false
	}
	if trip.PreferredVehicle != domain.VehicleAny && trip.PreferredVehicle != carrier.VehicleCategory {
		return false
	}
	if !trip.DepartureDate.After(now) {
		return false
	}

	switch {
	case activeTrip != nil && !activeTrip.IsTerminal():
		// Return-trip mode: only trips starting where the active trip ends.
		// No jurisdiction or general-pool fallback in this mode.
		return trip.Origin == activeTrip.Destination
	case carrier.Jurisdiction != nil:
		// Jurisdiction mode: trip must start at either end of the pair.
		return trip.Origin == carrier.Jurisdiction.Origin || trip.Origin == carrier.Jurisdiction.Destination
	default:
		// General pool.
		return trip.RequestType == domain.RequestTypeGeneral
	}
}

// FilterEligible returns the subset of trips the carrier may view, preserving
// input order.
func FilterEligible(carrier *domain.UserProfile, trips []*domain.Trip, activeTrip *domain.Trip, now time.Time) []*domain.Trip {
	var eligible []*domain.Trip
	for _, trip := range trips {
		if IsEligible(carrier, trip, activeTrip, now) {
			eligible = append(eligible, trip)
		}
	}
	return eligible
}
