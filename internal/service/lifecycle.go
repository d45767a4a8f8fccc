package service

import "tripbroker/internal/domain"

// TripEvent is an action that drives a trip between states.
type TripEvent string

const (
	EventOfferAccepted       TripEvent = "OFFER_ACCEPTED"
	EventCarrierConfirmed    TripEvent = "CARRIER_CONFIRMED"
	EventCarrierDeclined     TripEvent = "CARRIER_DECLINED"
	EventConfirmationTimeout TripEvent = "CONFIRMATION_TIMEOUT"
	EventTripStarted         TripEvent = "TRIP_STARTED"
	EventTripCompleted       TripEvent = "TRIP_COMPLETED"
	EventCancelled           TripEvent = "CANCELLED"
)

// tripTransitions is the authoritative transition table. Anything not listed
// here is illegal; COMPLETED and CANCELLED have no outgoing edges.
var tripTransitions = map[domain.TripStatus]map[TripEvent]domain.TripStatus{
	domain.TripStatusAwaitingOffers: {
		EventOfferAccepted: domain.TripStatusPendingCarrierConfirmation,
		EventCancelled:     domain.TripStatusCancelled,
	},
	domain.TripStatusPendingCarrierConfirmation: {
		EventCarrierConfirmed:    domain.TripStatusPlanned,
		EventCarrierDeclined:     domain.TripStatusAwaitingOffers,
		EventConfirmationTimeout: domain.TripStatusAwaitingOffers,
		EventCancelled:           domain.TripStatusCancelled,
	},
	domain.TripStatusPlanned: {
		EventTripStarted: domain.TripStatusInTransit,
		EventCancelled:   domain.TripStatusCancelled,
	},
	domain.TripStatusInTransit: {
		EventTripCompleted: domain.TripStatusCompleted,
	},
}

// NextStatus resolves the target state for an event, or ErrInvalidTransition
// (ErrTripTerminal for terminal source states).
func NextStatus(from domain.TripStatus, event TripEvent) (domain.TripStatus, error) {
	if from == domain.TripStatusCompleted || from == domain.TripStatusCancelled {
		return "", ErrTripTerminal
	}
	to, ok := tripTransitions[from][event]
	if !ok {
		return "", ErrInvalidTransition
	}
	return to, nil
}

// CanTransition reports whether an event is legal from a state.
func CanTransition(from domain.TripStatus, event TripEvent) bool {
	_, err := NextStatus(from, event)
	return err == nil
}
