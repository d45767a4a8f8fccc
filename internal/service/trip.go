package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tripbroker/internal/domain"
	"tripbroker/internal/redis"
	"tripbroker/internal/repository"
	"tripbroker/internal/stream"
)

const (
	// DefaultConfirmationTimeout is how long a carrier has to confirm an
	// accepted offer before the trip re-opens for offers.
	DefaultConfirmationTimeout = 30 * time.Minute

	// acceptLockTTL bounds how long a crashed acceptance can hold a trip.
	acceptLockTTL = 30 * time.Second
)

// TripService owns the trip lifecycle: requests, scheduled runs, offers,
// acceptance, confirmation, and the terminal transitions.
type TripService struct {
	txm           repository.TxManager
	tripRepo      repository.TripRepository
	offerRepo     repository.OfferRepository
	userRepo      repository.UserRepository
	lockStore     redis.LockStoreInterface
	cacheStore    redis.CacheStoreInterface
	bus           stream.Bus
	notifications *NotificationService
	logger        *zap.Logger

	confirmationTimeout time.Duration
}

// NewTripService creates a new TripService. lockStore, cacheStore, and bus
// may be nil; the service then runs without the corresponding concern.
func NewTripService(
	txm repository.TxManager,
	tripRepo repository.TripRepository,
	offerRepo repository.OfferRepository,
	userRepo repository.UserRepository,
	lockStore redis.LockStoreInterface,
	cacheStore redis.CacheStoreInterface,
	bus stream.Bus,
	notifications *NotificationService,
	logger *zap.Logger,
	confirmationTimeout time.Duration,
) *TripService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if confirmationTimeout <= 0 {
		confirmationTimeout = DefaultConfirmationTimeout
	}
	return &TripService{
		txm:                 txm,
		tripRepo:            tripRepo,
		offerRepo:           offerRepo,
		userRepo:            userRepo,
		lockStore:           lockStore,
		cacheStore:          cacheStore,
		bus:                 bus,
		notifications:       notifications,
		logger:              logger,
		confirmationTimeout: confirmationTimeout,
	}
}

// CreateTripRequest contains the parameters for a traveler trip request.
type CreateTripRequest struct {
	UserID                  string
	Origin                  string
	Destination             string
	Passengers              int
	PreferredVehicle        string
	RequestType             domain.RequestType
	JurisdictionOrigin      string
	JurisdictionDestination string
	DepartureDate           time.Time
}

// CreateTrip posts a traveler request into the offer pool.
func (s *TripService) CreateTrip(ctx context.Context, req CreateTripRequest) (*domain.Trip, error) {
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}

	trip, err := domain.NewTripRequest(
		uuid.New().String(),
		req.UserID,
		req.Origin,
		req.Destination,
		req.Passengers,
		req.PreferredVehicle,
		req.RequestType,
		req.JurisdictionOrigin,
		req.JurisdictionDestination,
		req.DepartureDate,
		time.Now(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	s.publish(stream.Event{Topic: stream.TopicTrips, Kind: "created", ID: trip.ID})
	return trip, nil
}

// ScheduleTripRequest contains the parameters for a carrier-scheduled run.
type ScheduleTripRequest struct {
	CarrierID       string
	Origin          string
	Destination     string
	VehicleCapacity int
	DepartureDate   time.Time
}

// ScheduleTrip posts a carrier run directly into PLANNED. Expired carriers
// are blocked here, not just warned.
func (s *TripService) ScheduleTrip(ctx context.Context, req ScheduleTripRequest) (*domain.Trip, error) {
	carrier, err := s.loadCarrier(ctx, req.CarrierID)
	if err != nil {
		return nil, err
	}
	if err := s.carrierMayAct(carrier); err != nil {
		return nil, err
	}

	trip, err := domain.NewScheduledTrip(
		uuid.New().String(),
		req.CarrierID,
		req.Origin,
		req.Destination,
		req.VehicleCapacity,
		req.DepartureDate,
		time.Now(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	s.publish(stream.Event{Topic: stream.TopicTrips, Kind: "created", ID: trip.ID})
	return trip, nil
}

// TripView is a trip plus its advisory annotations.
type TripView struct {
	Trip       *domain.Trip
	OfferCount int
	Stagnant   bool
}

// GetTrip retrieves a trip with its offer count and stagnation flag. A trip
// whose confirmation window has elapsed is re-opened first.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*TripView, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	trip, err = s.expireIfStale(ctx, trip)
	if err != nil {
		return nil, err
	}

	count, err := s.offerRepo.CountByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	stagnant := trip.Status == domain.TripStatusAwaitingOffers &&
		IsStagnant(trip.CreatedAt, count, time.Now())

	return &TripView{Trip: trip, OfferCount: count, Stagnant: stagnant}, nil
}

// ListTripsByUser returns the trips a traveler has posted, newest first.
func (s *TripService) ListTripsByUser(ctx context.Context, userID string) ([]*domain.Trip, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.tripRepo.ListByUser(ctx, userID)
}

// ListTripsByCarrier returns the trips a carrier is or was committed to.
func (s *TripService) ListTripsByCarrier(ctx context.Context, carrierID string) ([]*domain.Trip, error) {
	if carrierID == "" {
		return nil, ErrInvalidUserID
	}
	return s.tripRepo.ListByCarrier(ctx, carrierID)
}

// ListOpportunities returns the trips a carrier may view and offer on.
// Partial or security-frozen carriers get an empty pool, rendered client-side
// as a guidance state rather than an error.
func (s *TripService) ListOpportunities(ctx context.Context, carrierID string) ([]*domain.Trip, error) {
	carrier, err := s.loadCarrier(ctx, carrierID)
	if err != nil {
		return nil, err
	}
	if !carrier.IsCarrier() || carrier.IsPartial || carrier.IsDeactivated {
		return nil, nil
	}

	activeTrip, err := s.resolveActiveTrip(ctx, carrier)
	if err != nil {
		return nil, err
	}

	pool, err := s.tripRepo.ListAwaitingOffers(ctx)
	if err != nil {
		return nil, err
	}

	return FilterEligible(carrier, pool, activeTrip, time.Now()), nil
}

// SubmitOfferRequest contains the parameters for a carrier bid.
type SubmitOfferRequest struct {
	CarrierID string
	TripID    string
	Price     float64
	Currency  string
	Notes     string
}

// SubmitOffer places a carrier bid against an AWAITING_OFFERS trip.
func (s *TripService) SubmitOffer(ctx context.Context, req SubmitOfferRequest) (*domain.Offer, error) {
	carrier, err := s.loadCarrier(ctx, req.CarrierID)
	if err != nil {
		return nil, err
	}
	if err := s.carrierMayAct(carrier); err != nil {
		return nil, err
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	trip, err = s.expireIfStale(ctx, trip)
	if err != nil {
		return nil, err
	}
	if trip.Status != domain.TripStatusAwaitingOffers {
		return nil, ErrTripNotAwaitingOffers
	}
	if trip.UserID == carrier.ID {
		return nil, ErrOwnTrip
	}

	activeTrip, err := s.resolveActiveTrip(ctx, carrier)
	if err != nil {
		return nil, err
	}
	if !IsEligible(carrier, trip, activeTrip, time.Now()) {
		return nil, ErrNotEligible
	}

	offer, err := domain.NewOffer(
		uuid.New().String(),
		trip.ID,
		carrier.ID,
		req.Price,
		req.Currency,
		req.Notes,
		time.Now(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, err
	}

	s.publish(stream.Event{Topic: stream.TopicOffers, Kind: "created", ID: offer.ID, TripID: trip.ID})
	if s.notifications != nil {
		s.notifications.NotifyOfferReceived(ctx, trip, offer)
	}
	return offer, nil
}

// RankedOffers returns the trip's pending offers ordered for traveler review.
// Only the trip owner or an administrator may see them.
func (s *TripService) RankedOffers(ctx context.Context, requesterID, tripID string, mode SortMode) ([]RankedOffer, error) {
	if mode == "" {
		mode = SortRecommended
	}
	if !ValidSortMode(mode) {
		return nil, ErrInvalidSortMode
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	trip, err = s.expireIfStale(ctx, trip)
	if err != nil {
		return nil, err
	}

	if trip.UserID != requesterID {
		requester, err := s.userRepo.GetByID(ctx, requesterID)
		if err != nil || !requester.CanAdminister() {
			return nil, ErrPermissionDenied
		}
	}

	offers, err := s.offerRepo.ListPendingByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	carriers := make(map[string]*domain.UserProfile, len(offers))
	for _, offer := range offers {
		if _, ok := carriers[offer.CarrierID]; ok {
			continue
		}
		carrier, err := s.loadCarrier(ctx, offer.CarrierID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue // dangling offer, dropped by the ranker
			}
			return nil, err
		}
		carriers[offer.CarrierID] = carrier
	}

	return RankOffers(offers, carriers, mode), nil
}

// AcceptOffer commits the traveler to one offer. Marking the offer accepted,
// rejecting its siblings, and assigning the carrier happen in a single
// transaction conditioned on the trip still being AWAITING_OFFERS; a lock
// serializes concurrent acceptance attempts on the same trip.
func (s *TripService) AcceptOffer(ctx context.Context, travelerID, tripID, offerID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if offerID == "" {
		return nil, ErrInvalidOfferID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	trip, err = s.expireIfStale(ctx, trip)
	if err != nil {
		return nil, err
	}
	if trip.UserID != travelerID {
		return nil, ErrPermissionDenied
	}
	if trip.Status != domain.TripStatusAwaitingOffers {
		return nil, ErrTripNotAwaitingOffers
	}

	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.TripID != tripID {
		return nil, ErrOfferTripMismatch
	}
	if offer.Status != domain.OfferStatusPending {
		return nil, ErrOfferNotPending
	}

	// A carrier frozen after bidding can no longer have offers accepted.
	carrier, err := s.loadCarrier(ctx, offer.CarrierID)
	if err != nil {
		return nil, err
	}
	if carrier.IsDeactivated {
		return nil, ErrCarrierDeactivated
	}

	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireTripLock(ctx, tripID, acceptLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			return nil, ErrAcceptanceInProgress
		}
		defer func() { _ = s.lockStore.ReleaseTripLock(ctx, tripID) }()
	}

	acceptedAt := time.Now()
	err = s.txm.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Trips.MarkPendingConfirmation(ctx, tripID, offer.CarrierID, acceptedAt); err != nil {
			if errors.Is(err, repository.ErrStale) {
				return ErrTripNotAwaitingOffers
			}
			return err
		}
		if err := r.Offers.Accept(ctx, offerID); err != nil {
			if errors.Is(err, repository.ErrStale) {
				return ErrOfferNotPending
			}
			return err
		}
		return r.Offers.RejectSiblings(ctx, tripID, offerID)
	})
	if err != nil {
		return nil, err
	}

	trip.Status = domain.TripStatusPendingCarrierConfirmation
	trip.CarrierID = offer.CarrierID
	trip.AcceptedAt = acceptedAt

	s.publish(stream.Event{Topic: stream.TopicTrips, Kind: "accepted", ID: tripID})
	s.publish(stream.Event{Topic: stream.TopicOffers, Kind: "accepted", ID: offerID, TripID: tripID})
	if s.notifications != nil {
		s.notifications.NotifyOfferAccepted(ctx, trip, offer)
	}
	s.logger.Info("offer accepted",
		zap.String("trip_id", tripID),
		zap.String("offer_id", offerID),
		zap.String("carrier_id", offer.CarrierID),
	)

	return trip, nil
}

// ConfirmTrip is the carrier locking in an accepted offer. A confirmation
// after the window closed re-opens the trip instead.
func (s *TripService) ConfirmTrip(ctx context.Context, carrierID, tripID string) (*domain.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != domain.TripStatusPendingCarrierConfirmation {
		return nil, ErrTripNotPendingConfirmation
	}
	if trip.CarrierID != carrierID {
		return nil, ErrPermissionDenied
	}
	if s.confirmationElapsed(trip) {
		if err := s.reopen(ctx, trip); err != nil {
			return nil, err
		}
		return nil, ErrConfirmationElapsed
	}

	err = s.txm.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Trips.Transition(ctx, tripID, domain.TripStatusPendingCarrierConfirmation, domain.TripStatusPlanned); err != nil {
			if errors.Is(err, repository.ErrStale) {
				return ErrTripNotPendingConfirmation
			}
			return err
		}
		return r.Users.SetCurrentActiveTrip(ctx, carrierID, tripID)
	})
	if err != nil {
		return nil, err
	}

	trip.Status = domain.TripStatusPlanned
	s.invalidateCarrier(ctx, carrierID)
	s.publish(stream.Event{Topic: stream.TopicTrips, Kind: "confirmed", ID: tripID})
	if s.notifications != nil {
		s.notifications.NotifyTripConfirmed(ctx, trip)
	}
	return trip, nil
}

// DeclineTrip is the carrier backing out of an accepted offer. The trip
// re-opens and the accepted offer is invalidated.
func (s *TripService) DeclineTrip(ctx context.Context, carrierID, tripID string) (*domain.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != domain.TripStatusPendingCarrierConfirmation {
		return nil, ErrTripNotPendingConfirmation
	}
	if trip.CarrierID != carrierID {
		return nil, ErrPermissionDenied
	}

	if err := s.reopen(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// StartTrip marks departure: PLANNED → IN_TRANSIT, putting the carrier in
// return-trip mode.
func (s *TripService) StartTrip(ctx context.Context, carrierID, tripID string) (*domain.Trip, error) {
	trip, err := s.carrierOwnedTrip(ctx, carrierID, tripID)
	if err != nil {
		return nil, err
	}
	if _, err := NextStatus(trip.Status, EventTripStarted); err != nil {
		return nil, err
	}

	err = s.txm.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Trips.Transition(ctx, tripID, domain.TripStatusPlanned, domain.TripStatusInTransit); err != nil {
			if errors.Is(err, repository.ErrStale) {
				return ErrInvalidTransition
			}
			return err
		}
		return r.Users.SetCurrentActiveTrip(ctx, carrierID, tripID)
	})
	if err != nil {
		return nil, err
	}

	trip.Status = domain.TripStatusInTransit
	s.invalidateCarrier(ctx, carrierID)
	s.publish(stream.Event{Topic: stream.TopicTrips, Kind: "started", ID: tripID})
	return trip, nil
}

// CompleteTrip marks arrival: IN_TRANSIT → COMPLETED, releasing the carrier
// from return-trip mode.
func (s *TripService) CompleteTrip(ctx context.Context, carrierID, tripID string) (*domain.Trip, error) {
	trip, err := s.carrierOwnedTrip(ctx, carrierID, tripID)
	if err != nil {
		return nil, err
	}
	if _, err := NextStatus(trip.Status, EventTripCompleted); err != nil {
		return nil, err
	}

	err = s.txm.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Trips.Transition(ctx, tripID, domain.TripStatusInTransit, domain.TripStatusCompleted); err != nil {
			if errors.Is(err, repository.ErrStale) {
				return ErrInvalidTransition
			}
			return err
		}
		return r.Users.SetCurrentActiveTrip(ctx, carrierID, "")
	})
	if err != nil {
		return nil, err
	}

	trip.Status = domain.TripStatusCompleted
	s.invalidateCarrier(ctx, carrierID)
	s.publish(stream.Event{Topic: stream.TopicTrips, Kind: "completed", ID: tripID})
	if s.notifications != nil {
		s.notifications.Notify(ctx, trip.UserID, NotificationTripCompleted,
			"Trip Completed", "Your trip has arrived.", "/trips/"+tripID)
	}
	return trip, nil
}

// CancelTrip cancels a trip on behalf of its traveler, its committed carrier,
// or an administrator.
func (s *TripService) CancelTrip(ctx context.Context, actorID, tripID, reason string) (*domain.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if actorID != trip.UserID && actorID != trip.CarrierID {
		actor, err := s.userRepo.GetByID(ctx, actorID)
		if err != nil || !actor.CanAdminister() {
			return nil, ErrPermissionDenied
		}
	}

	if _, err := NextStatus(trip.Status, EventCancelled); err != nil {
		return nil, err
	}

	committedCarrier := trip.CarrierID
	err = s.txm.WithinTx(ctx, func(r repository.TxRepos) error {
		trip.Status = domain.TripStatusCancelled
		trip.CancelledAt = time.Now()
		trip.CancelReason = reason
		if committedCarrier != "" && trip.OriginalCarrierID == "" {
			trip.OriginalCarrierID = committedCarrier
		}
		trip.CarrierID = "" // a freshly cancelled trip has no committed carrier

		if err := r.Trips.Update(ctx, trip); err != nil {
			return err
		}
		if err := r.Offers.RejectAccepted(ctx, tripID); err != nil {
			return err
		}
		if err := r.Offers.RejectPending(ctx, tripID); err != nil {
			return err
		}
		if committedCarrier != "" {
			return r.Users.SetCurrentActiveTrip(ctx, committedCarrier, "")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if committedCarrier != "" {
		s.invalidateCarrier(ctx, committedCarrier)
	}
	s.publish(stream.Event{Topic: stream.TopicTrips, Kind: "cancelled", ID: tripID})
	if s.notifications != nil && actorID != trip.UserID {
		s.notifications.Notify(ctx, trip.UserID, NotificationTripCancelled,
			"Trip Cancelled", "Your trip was cancelled.", "/trips/"+tripID)
	}
	return trip, nil
}

// TransferTrip reassigns a committed trip to another carrier, preserving the
// original carrier for the audit trail. Administrators only.
func (s *TripService) TransferTrip(ctx context.Context, actorID, tripID, newCarrierID string) (*domain.Trip, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAdminister() {
		return nil, ErrPermissionDenied
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.IsTerminal() {
		return nil, ErrTripTerminal
	}
	if trip.CarrierID == "" {
		return nil, ErrTripNotPendingConfirmation
	}

	newCarrier, err := s.loadCarrier(ctx, newCarrierID)
	if err != nil {
		return nil, err
	}
	if !newCarrier.IsCarrier() || newCarrier.IsPartial || newCarrier.IsDeactivated {
		return nil, ErrNotEligible
	}

	previousCarrier := trip.CarrierID
	err = s.txm.WithinTx(ctx, func(r repository.TxRepos) error {
		if trip.OriginalCarrierID == "" {
			trip.OriginalCarrierID = previousCarrier
		}
		trip.CarrierID = newCarrierID
		if err := r.Trips.Update(ctx, trip); err != nil {
			return err
		}
		if err := r.Users.SetCurrentActiveTrip(ctx, previousCarrier, ""); err != nil {
			return err
		}
		return r.Users.SetCurrentActiveTrip(ctx, newCarrierID, tripID)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCarrier(ctx, previousCarrier)
	s.invalidateCarrier(ctx, newCarrierID)
	s.publish(stream.Event{Topic: stream.TopicTrips, Kind: "transferred", ID: tripID})
	return trip, nil
}

// ExpireStaleConfirmations re-opens every trip whose confirmation window has
// elapsed. Intended for operational sweeps; the same rule is applied lazily
// on every read and write that touches a pending trip.
func (s *TripService) ExpireStaleConfirmations(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.confirmationTimeout)
	stale, err := s.tripRepo.ListPendingConfirmationBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	reopened := 0
	for _, trip := range stale {
		if err := s.reopen(ctx, trip); err != nil {
			if errors.Is(err, repository.ErrStale) {
				continue // someone else already moved it
			}
			return reopened, err
		}
		reopened++
	}
	return reopened, nil
}

// ── internals ──────────────────────────────────────────────

// carrierOwnedTrip loads a trip and verifies the acting carrier is the one
// committed to it.
func (s *TripService) carrierOwnedTrip(ctx context.Context, carrierID, tripID string) (*domain.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.CarrierID != carrierID {
		return nil, ErrPermissionDenied
	}
	return trip, nil
}

// loadCarrier resolves a profile through the cache, falling back to the
// store and re-filling on a miss.
func (s *TripService) loadCarrier(ctx context.Context, carrierID string) (*domain.UserProfile, error) {
	if carrierID == "" {
		return nil, ErrInvalidUserID
	}

	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetCarrier(ctx, carrierID)
		if err == nil && cached != nil {
			return cached.ToProfile(), nil
		}
	}

	carrier, err := s.userRepo.GetByID(ctx, carrierID)
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil && carrier.IsCarrier() {
		_ = s.cacheStore.SetCarrier(ctx, redis.FromProfile(carrier))
	}
	return carrier, nil
}

// carrierMayAct gates carrier write actions: complete profile, not frozen,
// subscription not expired.
func (s *TripService) carrierMayAct(carrier *domain.UserProfile) error {
	if !carrier.IsCarrier() {
		return ErrNotCarrier
	}
	if carrier.IsPartial {
		return ErrCarrierProfileIncomplete
	}
	if carrier.IsDeactivated {
		return ErrCarrierDeactivated
	}
	if EvaluateSubscription(carrier.CreatedAt, time.Now()).State == SubscriptionExpired {
		return ErrSubscriptionExpired
	}
	return nil
}

// resolveActiveTrip resolves the carrier's committed trip for return-trip
// mode. A dangling or terminal reference resolves to nil.
func (s *TripService) resolveActiveTrip(ctx context.Context, carrier *domain.UserProfile) (*domain.Trip, error) {
	if carrier.CurrentActiveTripID == "" {
		return nil, nil
	}
	trip, err := s.tripRepo.GetByID(ctx, carrier.CurrentActiveTripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if trip.IsTerminal() {
		return nil, nil
	}
	return trip, nil
}

func (s *TripService) confirmationElapsed(trip *domain.Trip) bool {
	return trip.Status == domain.TripStatusPendingCarrierConfirmation &&
		!trip.AcceptedAt.IsZero() &&
		time.Since(trip.AcceptedAt) > s.confirmationTimeout
}

// expireIfStale re-opens a pending-confirmation trip whose window elapsed and
// returns the refreshed trip.
func (s *TripService) expireIfStale(ctx context.Context, trip *domain.Trip) (*domain.Trip, error) {
	if !s.confirmationElapsed(trip) {
		return trip, nil
	}
	if err := s.reopen(ctx, trip); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return s.tripRepo.GetByID(ctx, trip.ID)
		}
		return nil, err
	}
	return trip, nil
}

// reopen returns a pending-confirmation trip to the offer pool and
// invalidates its accepted offer, atomically.
func (s *TripService) reopen(ctx context.Context, trip *domain.Trip) error {
	carrierID := trip.CarrierID
	err := s.txm.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Trips.Reopen(ctx, trip.ID); err != nil {
			return err
		}
		if err := r.Offers.RejectAccepted(ctx, trip.ID); err != nil {
			return err
		}
		if carrierID != "" {
			return r.Users.SetCurrentActiveTrip(ctx, carrierID, "")
		}
		return nil
	})
	if err != nil {
		return err
	}

	trip.Status = domain.TripStatusAwaitingOffers
	trip.CarrierID = ""
	trip.AcceptedAt = time.Time{}

	if carrierID != "" {
		s.invalidateCarrier(ctx, carrierID)
	}
	s.publish(stream.Event{Topic: stream.TopicTrips, Kind: "reopened", ID: trip.ID})
	if s.notifications != nil {
		s.notifications.NotifyTripReopened(ctx, trip)
	}
	return nil
}

func (s *TripService) invalidateCarrier(ctx context.Context, carrierID string) {
	if s.cacheStore == nil {
		return
	}
	_ = s.cacheStore.InvalidateCarrier(ctx, carrierID)
}

func (s *TripService) publish(event stream.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event)
}
