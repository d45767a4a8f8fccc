package domain

import (
	"errors"
	"strings"
	"time"
)

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusPlanned                    TripStatus = "PLANNED"
	TripStatusAwaitingOffers             TripStatus = "AWAITING_OFFERS"
	TripStatusPendingCarrierConfirmation TripStatus = "PENDING_CARRIER_CONFIRMATION"
	TripStatusInTransit                  TripStatus = "IN_TRANSIT"
	TripStatusCompleted                  TripStatus = "COMPLETED"
	TripStatusCancelled                  TripStatus = "CANCELLED"
)

// RequestType classifies how a trip request is pooled.
type RequestType string

const (
	RequestTypeGeneral      RequestType = "GENERAL"
	RequestTypeJurisdiction RequestType = "JURISDICTION"
)

// VehicleAny matches any carrier vehicle category.
const VehicleAny = "ANY"

var (
	// ErrTripMissingOwner is returned when a trip has no owning user.
	ErrTripMissingOwner = errors.New("trip requires an owning user")

	// ErrTripMissingRoute is returned when origin or destination is empty.
	ErrTripMissingRoute = errors.New("trip requires origin and destination")

	// ErrTripInvalidCapacity is returned for a non-positive passenger or seat count.
	ErrTripInvalidCapacity = errors.New("trip capacity must be positive")

	// ErrTripDepartureInPast is returned when the departure date has already passed.
	ErrTripDepartureInPast = errors.New("trip departure must be in the future")

	// ErrTripInvalidJurisdiction is returned when a jurisdiction-bound request
	// omits its jurisdiction pair.
	ErrTripInvalidJurisdiction = errors.New("jurisdiction request requires origin and destination jurisdiction")

	// ErrTripCarrierStatusMismatch is returned when the carrier assignment does
	// not agree with the trip status.
	ErrTripCarrierStatusMismatch = errors.New("carrier assignment inconsistent with trip status")
)

// Trip is a transportation request posted by a traveler or a scheduled run
// posted by a carrier.
type Trip struct {
	ID                string
	UserID            string // traveler who owns the trip
	CarrierID         string // committed carrier, empty until an offer is accepted
	OriginalCarrierID string // preserved when the trip is transferred between carriers

	Origin      string
	Destination string

	Passengers       int // requested seats (traveler request)
	VehicleCapacity  int // total seats (scheduled run)
	AvailableSeats   int // remaining seats (scheduled run)
	PreferredVehicle string

	RequestType             RequestType
	JurisdictionOrigin      string
	JurisdictionDestination string

	Status        TripStatus
	DepartureDate time.Time
	AcceptedAt    time.Time // when an offer was accepted, starts the confirmation window
	CreatedAt     time.Time

	CancelledAt  time.Time
	CancelReason string
}

// NewTripRequest builds a traveler trip request in AWAITING_OFFERS.
func NewTripRequest(id, userID, origin, destination string, passengers int, preferredVehicle string, requestType RequestType, jurOrigin, jurDestination string, departure, now time.Time) (*Trip, error) {
	if userID == "" {
		return nil, ErrTripMissingOwner
	}
	if origin == "" || destination == "" {
		return nil, ErrTripMissingRoute
	}
	if passengers <= 0 {
		return nil, ErrTripInvalidCapacity
	}
	if !departure.After(now) {
		return nil, ErrTripDepartureInPast
	}
	if requestType == "" {
		requestType = RequestTypeGeneral
	}
	if requestType == RequestTypeJurisdiction && (jurOrigin == "" || jurDestination == "") {
		return nil, ErrTripInvalidJurisdiction
	}
	if preferredVehicle == "" {
		preferredVehicle = VehicleAny
	}

	return &Trip{
		ID:                      id,
		UserID:                  userID,
		Origin:                  origin,
		Destination:             destination,
		Passengers:              passengers,
		PreferredVehicle:        strings.ToUpper(preferredVehicle),
		RequestType:             requestType,
		JurisdictionOrigin:      jurOrigin,
		JurisdictionDestination: jurDestination,
		Status:                  TripStatusAwaitingOffers,
		DepartureDate:           departure,
		CreatedAt:               now,
	}, nil
}

// NewScheduledTrip builds a carrier-scheduled run in PLANNED. The carrier is
// both the owner and the committed carrier of the run.
func NewScheduledTrip(id, carrierID, origin, destination string, vehicleCapacity int, departure, now time.Time) (*Trip, error) {
	if carrierID == "" {
		return nil, ErrTripMissingOwner
	}
	if origin == "" || destination == "" {
		return nil, ErrTripMissingRoute
	}
	if vehicleCapacity <= 0 {
		return nil, ErrTripInvalidCapacity
	}
	if !departure.After(now) {
		return nil, ErrTripDepartureInPast
	}

	return &Trip{
		ID:               id,
		UserID:           carrierID,
		CarrierID:        carrierID,
		Origin:           origin,
		Destination:      destination,
		VehicleCapacity:  vehicleCapacity,
		AvailableSeats:   vehicleCapacity,
		PreferredVehicle: VehicleAny,
		RequestType:      RequestTypeGeneral,
		Status:           TripStatusPlanned,
		DepartureDate:    departure,
		CreatedAt:        now,
	}, nil
}

// IsTerminal reports whether the trip is in a terminal state. Terminal trips
// accept no further mutation beyond archival metadata.
func (t *Trip) IsTerminal() bool {
	return t.Status == TripStatusCompleted || t.Status == TripStatusCancelled
}

// HasCommittedCarrier reports whether the trip's status implies a committed
// carrier.
func (t *Trip) HasCommittedCarrier() bool {
	switch t.Status {
	case TripStatusPendingCarrierConfirmation, TripStatusPlanned, TripStatusInTransit, TripStatusCompleted:
		return true
	}
	return false
}

// Validate checks the carrier/status invariant: CarrierID is set if and only
// if the trip is in a committed state.
func (t *Trip) Validate() error {
	if t.HasCommittedCarrier() != (t.CarrierID != "") {
		return ErrTripCarrierStatusMismatch
	}
	return nil
}
