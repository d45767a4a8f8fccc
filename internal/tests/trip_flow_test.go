package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"tripbroker/internal/domain"
	"tripbroker/internal/service"
	"tripbroker/internal/stream"
)

// ──────────────────────────────────────────────
// OFFER ACCEPTANCE AND CONFIRMATION FLOWS
// ──────────────────────────────────────────────

type tripFlowFixture struct {
	tripRepo  *MockTripRepository
	offerRepo *MockOfferRepository
	userRepo  *MockUserRepository
	lockStore *MockLockStore
	bus       *stream.MemoryBus
	service   *service.TripService
}

func newTripFlowFixture(t *testing.T) *tripFlowFixture {
	t.Helper()

	tripRepo := NewMockTripRepository()
	offerRepo := NewMockOfferRepository()
	userRepo := NewMockUserRepository()
	lockStore := NewMockLockStore()
	bus := stream.NewMemoryBus()
	txm := NewMockTxManager(tripRepo, offerRepo, userRepo, NewMockAdminLogRepository())

	svc := service.NewTripService(
		txm, tripRepo, offerRepo, userRepo,
		lockStore, NewMockCacheStore(), bus,
		service.NewNotificationService(nil, nil), nil,
		service.DefaultConfirmationTimeout,
	)
	return &tripFlowFixture{
		tripRepo:  tripRepo,
		offerRepo: offerRepo,
		userRepo:  userRepo,
		lockStore: lockStore,
		bus:       bus,
		service:   svc,
	}
}

func (f *tripFlowFixture) addTraveler(id string) {
	f.userRepo.AddUser(&domain.UserProfile{
		ID: id, Email: id + "@example.com", Role: domain.RoleTraveler, CreatedAt: time.Now(),
	})
}

func (f *tripFlowFixture) addCarrier(id string) {
	f.userRepo.AddUser(&domain.UserProfile{
		ID:              id,
		Email:           id + "@example.com",
		Role:            domain.RoleCarrier,
		VehicleCapacity: 4,
		VehicleCategory: "SEDAN",
		CreatedAt:       time.Now(),
	})
}

func (f *tripFlowFixture) addAwaitingTrip(tripID, travelerID string) {
	f.tripRepo.AddTrip(&domain.Trip{
		ID:               tripID,
		UserID:           travelerID,
		Origin:           "amman",
		Destination:      "irbid",
		Passengers:       2,
		PreferredVehicle: domain.VehicleAny,
		RequestType:      domain.RequestTypeGeneral,
		Status:           domain.TripStatusAwaitingOffers,
		DepartureDate:    time.Now().Add(24 * time.Hour),
		CreatedAt:        time.Now(),
	})
}

func (f *tripFlowFixture) addPendingOffer(offerID, tripID, carrierID string, price float64) {
	f.offerRepo.AddOffer(&domain.Offer{
		ID:        offerID,
		TripID:    tripID,
		CarrierID: carrierID,
		Price:     price,
		Currency:  "JOD",
		Status:    domain.OfferStatusPending,
		CreatedAt: time.Now(),
	})
}

func TestAcceptOffer_CommitsOneOfferAndRejectsSiblings(t *testing.T) {
	t.Parallel()

	f := newTripFlowFixture(t)
	f.addTraveler("traveler-1")
	f.addCarrier("carrier-1")
	f.addCarrier("carrier-2")
	f.addAwaitingTrip("trip-1", "traveler-1")
	f.addPendingOffer("offer-1", "trip-1", "carrier-1", 40)
	f.addPendingOffer("offer-2", "trip-1", "carrier-2", 35)

	trip, err := f.service.AcceptOffer(context.Background(), "traveler-1", "trip-1", "offer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.Status != domain.TripStatusPendingCarrierConfirmation {
		t.Errorf("expected PENDING_CARRIER_CONFIRMATION, got %s", trip.Status)
	}
	if trip.CarrierID != "carrier-1" {
		t.Errorf("expected carrier-1 committed, got %q", trip.CarrierID)
	}
	if got := f.offerRepo.GetOffer("offer-1").Status; got != domain.OfferStatusAccepted {
		t.Errorf("accepted offer status = %s", got)
	}
	if got := f.offerRepo.GetOffer("offer-2").Status; got != domain.OfferStatusRejected {
		t.Errorf("sibling offer status = %s", got)
	}
}

// The accept-once invariant: once a trip leaves AWAITING_OFFERS no second
// offer can be accepted against it.
func TestAcceptOffer_SecondAcceptanceIsRejected(t *testing.T) {
	t.Parallel()

	f := newTripFlowFixture(t)
	f.addTraveler("traveler-1")
	f.addCarrier("carrier-1")
	f.addCarrier("carrier-2")
	f.addAwaitingTrip("trip-1", "traveler-1")
	f.addPendingOffer("offer-1", "trip-1", "carrier-1", 40)
	f.addPendingOffer("offer-2", "trip-1", "carrier-2", 35)

	if _, err := f.service.AcceptOffer(context.Background(), "traveler-1", "trip-1", "offer-1"); err != nil {
		t.Fatalf("first acceptance failed: %v", err)
	}

	_, err := f.service.AcceptOffer(context.Background(), "traveler-1", "trip-1", "offer-2")
	if !errors.Is(err, service.ErrTripNotAwaitingOffers) && !errors.Is(err, service.ErrOfferNotPending) {
		t.Fatalf("expected stale-acceptance error, got %v", err)
	}

	if got := f.tripRepo.GetTrip("trip-1").CarrierID; got != "carrier-1" {
		t.Errorf("committed carrier changed to %q", got)
	}
}

func TestAcceptOffer_HeldLockReportsAcceptanceInProgress(t *testing.T) {
	t.Parallel()

	f := newTripFlowFixture(t)
	f.addTraveler("traveler-1")
	f.addCarrier("carrier-1")
	f.addAwaitingTrip("trip-1", "traveler-1")
	f.addPendingOffer("offer-1", "trip-1", "carrier-1", 40)
	f.lockStore.HoldLock("trip-1")

	_, err := f.service.AcceptOffer(context.Background(), "traveler-1", "trip-1", "offer-1")
	if !errors.Is(err, service.ErrAcceptanceInProgress) {
		t.Fatalf("expected ErrAcceptanceInProgress, got %v", err)
	}
}

func TestAcceptOffer_OnlyTripOwnerMayAccept(t *testing.T) {
	t.Parallel()

	f := newTripFlowFixture(t)
	f.addTraveler("traveler-1")
	f.addTraveler("traveler-2")
	f.addCarrier("carrier-1")
	f.addAwaitingTrip("trip-1", "traveler-1")
	f.addPendingOffer("offer-1", "trip-1", "carrier-1", 40)

	_, err := f.service.AcceptOffer(context.Background(), "traveler-2", "trip-1", "offer-1")
	if !errors.Is(err, service.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestAcceptOffer_DeactivatedCarrierOfferCannotBeAccepted(t *testing.T) {
	t.Parallel()

	f := newTripFlowFixture(t)
	f.addTraveler("traveler-1")
	f.addCarrier("carrier-1")
	f.userRepo.GetUser("carrier-1").IsDeactivated = true
	f.addAwaitingTrip("trip-1", "traveler-1")
	f.addPendingOffer("offer-1", "trip-1", "carrier-1", 40)

	_, err := f.service.AcceptOffer(context.Background(), "traveler-1", "trip-1", "offer-1")
	if !errors.Is(err, service.ErrCarrierDeactivated) {
		t.Fatalf("expected ErrCarrierDeactivated, got %v", err)
	}
}

func TestConfirmTrip_MovesToPlannedAndBindsCarrier(t *testing.T) {
	t.Parallel()

	f := newTripFlowFixture(t)
	f.addTraveler("traveler-1")
	f.addCarrier("carrier-1")
	f.addAwaitingTrip("trip-1", "traveler-1")
	f.addPendingOffer("offer-1", "trip-1", "carrier-1", 40)

	if _, err := f.service.AcceptOffer(context.Background(), "traveler-1", "trip-1", "offer-1"); err != nil {
		t.Fatalf("acceptance failed: %v", err)
	}

	trip, err := f.service.ConfirmTrip(context.Background(), "carrier-1", "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.Status != domain.TripStatusPlanned {
		t.Errorf("expected PLANNED, got %s", trip.Status)
	}
	if got := f.userRepo.GetUser("carrier-1").CurrentActiveTripID; got != "trip-1" {
		t.Errorf("carrier active trip = %q", got)
	}
}

func TestConfirmTrip_AfterWindowReopensTrip(t *testing.T) {
	t.Parallel()

	f := newTripFlowFixture(t)
	f.addTraveler("traveler-1")
	f.addCarrier("carrier-1")
	f.addAwaitingTrip("trip-1", "traveler-1")
	f.addPendingOffer("offer-1", "trip-1", "carrier-1", 40)

	if _, err := f.service.AcceptOffer(context.Background(), "traveler-1", "trip-1", "offer-1"); err != nil {
		t.Fatalf("acceptance failed: %v", err)
	}

	// Backdate the acceptance past the confirmation window.
	f.tripRepo.GetTrip("trip-1").AcceptedAt = time.Now().Add(-time.Hour)

	_, err := f.service.ConfirmTrip(context.Background(), "carrier-1", "trip-1")
	if !errors.Is(err, service.ErrConfirmationElapsed) {
		t.Fatalf("expected ErrConfirmationElapsed, got %v", err)
	}

	trip := f.tripRepo.GetTrip("trip-1")
	if trip.Status != domain.TripStatusAwaitingOffers {
		t.Errorf("expected trip reopened, got %s", trip.Status)
	}
	if trip.CarrierID != "" {
		t.Errorf("expected carrier cleared, got %q", trip.CarrierID)
	}
	if got := f.offerRepo.GetOffer("offer-1").Status; got != domain.OfferStatusRejected {
		t.Errorf("expected accepted offer invalidated, got %s", got)
	}
}

func TestDeclineTrip_ReopensAndInvalidatesAcceptedOffer(t *testing.T) {
	t.Parallel()

	f := newTripFlowFixture(t)
	f.addTraveler("traveler-1")
	f.addCarrier("carrier-1")
	f.addAwaitingTrip("trip-1", "traveler-1")
	f.addPendingOffer("offer-1", "trip-1", "carrier-1", 40)

	if _, err := f.service.AcceptOffer(context.Background(), "traveler-1", "trip-1", "offer-1"); err != nil {
		t.Fatalf("acceptance failed: %v", err)
	}

	if _, err := f.service.DeclineTrip(context.Background(), "carrier-1", "trip-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := f.tripRepo.GetTrip("trip-1").Status; got != domain.TripStatusAwaitingOffers {
		t.Errorf("expected AWAITING_OFFERS, got %s", got)
	}
	if got := f.offerRepo.GetOffer("offer-1").Status; got != domain.OfferStatusRejected {
		t.Errorf("expected offer rejected, got %s", got)
	}
}

func TestGetTrip_LazilyExpiresStaleConfirmation(t *testing.T) {
	t.Parallel()

	f := newTripFlowFixture(t)
	f.addTraveler("traveler-1")
	f.addCarrier("carrier-1")
	f.addAwaitingTrip("trip-1", "traveler-1")
	f.addPendingOffer("offer-1", "trip-1", "carrier-1", 40)

	if _, err := f.service.AcceptOffer(context.Background(), "traveler-1", "trip-1", "offer-1"); err != nil {
		t.Fatalf("acceptance failed: %v", err)
	}
	f.tripRepo.GetTrip("trip-1").AcceptedAt = time.Now().Add(-time.Hour)

	view, err := f.service.GetTrip(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Trip.Status != domain.TripStatusAwaitingOffers {
		t.Errorf("expected lazy reopen on read, got %s", view.Trip.Status)
	}
}

func TestExpireStaleConfirmations_SweepsOnlyElapsedTrips(t *testing.T) {
	t.Parallel()

	f := newTripFlowFixture(t)
	f.addTraveler("traveler-1")
	f.addCarrier("carrier-1")
	f.addCarrier("carrier-2")
	f.addAwaitingTrip("trip-stale", "traveler-1")
	f.addAwaitingTrip("trip-fresh", "traveler-1")
	f.addPendingOffer("offer-stale", "trip-stale", "carrier-1", 40)
	f.addPendingOffer("offer-fresh", "trip-fresh", "carrier-2", 40)

	if _, err := f.service.AcceptOffer(context.Background(), "traveler-1", "trip-stale", "offer-stale"); err != nil {
		t.Fatalf("acceptance failed: %v", err)
	}
	if _, err := f.service.AcceptOffer(context.Background(), "traveler-1", "trip-fresh", "offer-fresh"); err != nil {
		t.Fatalf("acceptance failed: %v", err)
	}
	f.tripRepo.GetTrip("trip-stale").AcceptedAt = time.Now().Add(-time.Hour)

	reopened, err := f.service.ExpireStaleConfirmations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reopened != 1 {
		t.Errorf("expected 1 reopened trip, got %d", reopened)
	}
	if got := f.tripRepo.GetTrip("trip-stale").Status; got != domain.TripStatusAwaitingOffers {
		t.Errorf("stale trip status = %s", got)
	}
	if got := f.tripRepo.GetTrip("trip-fresh").Status; got != domain.TripStatusPendingCarrierConfirmation {
		t.Errorf("fresh trip status = %s", got)
	}
}

func TestStartAndCompleteTrip_TogglesReturnTripMode(t *testing.T) {
	t.Parallel()

	f := newTripFlowFixture(t)
	f.addTraveler("traveler-1")
	f.addCarrier("carrier-1")
	f.addAwaitingTrip("trip-1", "traveler-1")
	f.addPendingOffer("offer-1", "trip-1", "carrier-1", 40)

	ctx := context.Background()
	if _, err := f.service.AcceptOffer(ctx, "traveler-1", "trip-1", "offer-1"); err != nil {
		t.Fatalf("acceptance failed: %v", err)
	}
	if _, err := f.service.ConfirmTrip(ctx, "carrier-1", "trip-1"); err != nil {
		t.Fatalf("confirmation failed: %v", err)
	}

	if _, err := f.service.StartTrip(ctx, "carrier-1", "trip-1"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if got := f.userRepo.GetUser("carrier-1").CurrentActiveTripID; got != "trip-1" {
		t.Errorf("expected carrier in return-trip mode, active trip %q", got)
	}

	if _, err := f.service.CompleteTrip(ctx, "carrier-1", "trip-1"); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if got := f.userRepo.GetUser("carrier-1").CurrentActiveTripID; got != "" {
		t.Errorf("expected return-trip mode cleared, active trip %q", got)
	}
	if got := f.tripRepo.GetTrip("trip-1").Status; got != domain.TripStatusCompleted {
		t.Errorf("trip status = %s", got)
	}
}

func TestSubmitOffer_ExpiredCarrierIsBlocked(t *testing.T) {
	t.Parallel()

	f := newTripFlowFixture(t)
	f.addTraveler("traveler-1")
	f.addCarrier("carrier-1")
	f.userRepo.GetUser("carrier-1").CreatedAt = time.Now().AddDate(0, 0, -120)
	f.addAwaitingTrip("trip-1", "traveler-1")

	_, err := f.service.SubmitOffer(context.Background(), service.SubmitOfferRequest{
		CarrierID: "carrier-1",
		TripID:    "trip-1",
		Price:     40,
		Currency:  "JOD",
	})
	if !errors.Is(err, service.ErrSubscriptionExpired) {
		t.Fatalf("expected ErrSubscriptionExpired, got %v", err)
	}
}

func TestSubmitOffer_OwnTripIsRejected(t *testing.T) {
	t.Parallel()

	f := newTripFlowFixture(t)
	f.addCarrier("carrier-1")
	f.addAwaitingTrip("trip-1", "carrier-1")

	_, err := f.service.SubmitOffer(context.Background(), service.SubmitOfferRequest{
		CarrierID: "carrier-1",
		TripID:    "trip-1",
		Price:     40,
		Currency:  "JOD",
	})
	if !errors.Is(err, service.ErrOwnTrip) {
		t.Fatalf("expected ErrOwnTrip, got %v", err)
	}
}

func TestCancelTrip_ClearsCarrierAndPreservesOriginal(t *testing.T) {
	t.Parallel()

	f := newTripFlowFixture(t)
	f.addTraveler("traveler-1")
	f.addCarrier("carrier-1")
	f.addAwaitingTrip("trip-1", "traveler-1")
	f.addPendingOffer("offer-1", "trip-1", "carrier-1", 40)

	ctx := context.Background()
	if _, err := f.service.AcceptOffer(ctx, "traveler-1", "trip-1", "offer-1"); err != nil {
		t.Fatalf("acceptance failed: %v", err)
	}
	if _, err := f.service.ConfirmTrip(ctx, "carrier-1", "trip-1"); err != nil {
		t.Fatalf("confirmation failed: %v", err)
	}

	if _, err := f.service.CancelTrip(ctx, "traveler-1", "trip-1", "plans changed"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	trip := f.tripRepo.GetTrip("trip-1")
	if trip.Status != domain.TripStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", trip.Status)
	}
	if trip.CarrierID != "" {
		t.Errorf("cancelled trip still has carrier %q", trip.CarrierID)
	}
	if trip.OriginalCarrierID != "carrier-1" {
		t.Errorf("expected original carrier preserved, got %q", trip.OriginalCarrierID)
	}
	if got := f.userRepo.GetUser("carrier-1").CurrentActiveTripID; got != "" {
		t.Errorf("expected carrier released, active trip %q", got)
	}
}

func TestListOpportunities_PartialCarrierGetsEmptyPool(t *testing.T) {
	t.Parallel()

	f := newTripFlowFixture(t)
	f.addTraveler("traveler-1")
	f.addCarrier("carrier-1")
	f.userRepo.GetUser("carrier-1").IsPartial = true
	f.addAwaitingTrip("trip-1", "traveler-1")

	trips, err := f.service.ListOpportunities(context.Background(), "carrier-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 0 {
		t.Errorf("partial carrier should see no opportunities, got %d", len(trips))
	}
}
