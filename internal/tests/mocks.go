package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"tripbroker/internal/domain"
	"tripbroker/internal/redis"
	"tripbroker/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters for verification
	CreateCallCount     int32
	UpdateCallCount     int32
	MarkPendingCount    int32
	TransitionCallCount int32
	ReopenCallCount     int32

	// Error injection
	CreateError error
	UpdateError error
	GetError    error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{trips: make(map[string]*domain.Trip)}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

// GetTrip returns the stored trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) ListAwaitingOffers(ctx context.Context) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0)
	for _, t := range m.trips {
		if t.Status == domain.TripStatusAwaitingOffers {
			copy := *t
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockTripRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0)
	for _, t := range m.trips {
		if t.UserID == userID {
			copy := *t
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockTripRepository) ListByCarrier(ctx context.Context, carrierID string) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0)
	for _, t := range m.trips {
		if t.CarrierID == carrierID || t.OriginalCarrierID == carrierID {
			copy := *t
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockTripRepository) ListPendingConfirmationBefore(ctx context.Context, cutoff time.Time) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0)
	for _, t := range m.trips {
		if t.Status == domain.TripStatusPendingCarrierConfirmation && t.AcceptedAt.Before(cutoff) {
			copy := *t
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockTripRepository) MarkPendingConfirmation(ctx context.Context, tripID, carrierID string, acceptedAt time.Time) error {
	atomic.AddInt32(&m.MarkPendingCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[tripID]
	if !ok {
		return repository.ErrNotFound
	}
	if trip.Status != domain.TripStatusAwaitingOffers {
		return repository.ErrStale
	}
	trip.Status = domain.TripStatusPendingCarrierConfirmation
	trip.CarrierID = carrierID
	trip.AcceptedAt = acceptedAt
	return nil
}

func (m *MockTripRepository) Transition(ctx context.Context, tripID string, from, to domain.TripStatus) error {
	atomic.AddInt32(&m.TransitionCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[tripID]
	if !ok {
		return repository.ErrNotFound
	}
	if trip.Status != from {
		return repository.ErrStale
	}
	trip.Status = to
	return nil
}

func (m *MockTripRepository) Reopen(ctx context.Context, tripID string) error {
	atomic.AddInt32(&m.ReopenCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[tripID]
	if !ok {
		return repository.ErrNotFound
	}
	if trip.Status != domain.TripStatusPendingCarrierConfirmation {
		return repository.ErrStale
	}
	trip.Status = domain.TripStatusAwaitingOffers
	trip.CarrierID = ""
	trip.AcceptedAt = time.Time{}
	return nil
}

// ──────────────────────────────────────────────
// MOCK OFFER REPOSITORY
// ──────────────────────────────────────────────

// MockOfferRepository is a mock implementation of OfferRepository.
type MockOfferRepository struct {
	mu     sync.RWMutex
	offers map[string]*domain.Offer
	order  []string

	// Counters for verification
	CreateCallCount int32
	AcceptCallCount int32

	// Error injection
	CreateError error
	AcceptError error
}

// NewMockOfferRepository creates a new mock offer repository.
func NewMockOfferRepository() *MockOfferRepository {
	return &MockOfferRepository{offers: make(map[string]*domain.Offer)}
}

// AddOffer adds an offer to the mock repository.
func (m *MockOfferRepository) AddOffer(offer *domain.Offer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offers[offer.ID] = offer
	m.order = append(m.order, offer.ID)
}

// GetOffer returns the stored offer for test assertions.
func (m *MockOfferRepository) GetOffer(id string) *domain.Offer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.offers[id]
}

func (m *MockOfferRepository) Create(ctx context.Context, offer *domain.Offer) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offers[offer.ID] = offer
	m.order = append(m.order, offer.ID)
	return nil
}

func (m *MockOfferRepository) GetByID(ctx context.Context, id string) (*domain.Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	offer, ok := m.offers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *offer
	return &copy, nil
}

func (m *MockOfferRepository) ListByTrip(ctx context.Context, tripID string) ([]*domain.Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Offer, 0)
	for _, id := range m.order {
		if o := m.offers[id]; o.TripID == tripID {
			copy := *o
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockOfferRepository) ListPendingByTrip(ctx context.Context, tripID string) ([]*domain.Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Offer, 0)
	for _, id := range m.order {
		if o := m.offers[id]; o.TripID == tripID && o.Status == domain.OfferStatusPending {
			copy := *o
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockOfferRepository) CountByTrip(ctx context.Context, tripID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, o := range m.offers {
		if o.TripID == tripID {
			count++
		}
	}
	return count, nil
}

func (m *MockOfferRepository) Accept(ctx context.Context, offerID string) error {
	atomic.AddInt32(&m.AcceptCallCount, 1)
	if m.AcceptError != nil {
		return m.AcceptError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	offer, ok := m.offers[offerID]
	if !ok {
		return repository.ErrNotFound
	}
	if offer.Status != domain.OfferStatusPending {
		return repository.ErrStale
	}
	offer.Status = domain.OfferStatusAccepted
	return nil
}

func (m *MockOfferRepository) RejectSiblings(ctx context.Context, tripID, acceptedOfferID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.offers {
		if o.TripID == tripID && o.ID != acceptedOfferID && o.Status == domain.OfferStatusPending {
			o.Status = domain.OfferStatusRejected
		}
	}
	return nil
}

func (m *MockOfferRepository) RejectAccepted(ctx context.Context, tripID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.offers {
		if o.TripID == tripID && o.Status == domain.OfferStatusAccepted {
			o.Status = domain.OfferStatusRejected
		}
	}
	return nil
}

func (m *MockOfferRepository) RejectPending(ctx context.Context, tripID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.offers {
		if o.TripID == tripID && o.Status == domain.OfferStatusPending {
			o.Status = domain.OfferStatusRejected
		}
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.UserProfile

	// Counters for verification
	SetFreezeCallCount int32
	SetRoleCallCount   int32

	// Error injection
	SetFreezeError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.UserProfile)}
}

// AddUser adds a profile to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

// GetUser returns the stored profile for test assertions.
func (m *MockUserRepository) GetUser(id string) *domain.UserProfile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[id]
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *MockUserRepository) SetFreeze(ctx context.Context, userID string, freezeType domain.FreezeType, frozen bool) error {
	atomic.AddInt32(&m.SetFreezeCallCount, 1)
	if m.SetFreezeError != nil {
		return m.SetFreezeError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	switch freezeType {
	case domain.FreezeFinancial:
		user.IsFinancialFrozen = frozen
	case domain.FreezeSecurity:
		user.IsDeactivated = frozen
	}
	return nil
}

func (m *MockUserRepository) SetRole(ctx context.Context, userID string, role domain.Role, isAdmin bool) error {
	atomic.AddInt32(&m.SetRoleCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.Role = role
	user.IsAdmin = isAdmin
	return nil
}

func (m *MockUserRepository) SetCurrentActiveTrip(ctx context.Context, userID, tripID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.CurrentActiveTripID = tripID
	return nil
}

// ──────────────────────────────────────────────
// MOCK ADMIN LOG REPOSITORY
// ──────────────────────────────────────────────

// MockAdminLogRepository is a mock implementation of AdminLogRepository.
type MockAdminLogRepository struct {
	mu   sync.RWMutex
	logs []*domain.AdminLog

	// Error injection
	CreateError error
}

// NewMockAdminLogRepository creates a new mock admin log repository.
func NewMockAdminLogRepository() *MockAdminLogRepository {
	return &MockAdminLogRepository{}
}

func (m *MockAdminLogRepository) Create(ctx context.Context, log *domain.AdminLog) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAdminLogRepository) List(ctx context.Context, limit int) ([]*domain.AdminLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.AdminLog, 0, len(m.logs))
	for i := len(m.logs) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, m.logs[i])
	}
	return result, nil
}

func (m *MockAdminLogRepository) ListByTarget(ctx context.Context, targetUserID string) ([]*domain.AdminLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.AdminLog, 0)
	for i := len(m.logs) - 1; i >= 0; i-- {
		if m.logs[i].TargetUserID == targetUserID {
			result = append(result, m.logs[i])
		}
	}
	return result, nil
}

// LogCount returns the number of stored audit records.
func (m *MockAdminLogRepository) LogCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.logs)
}

// ──────────────────────────────────────────────
// MOCK TOP-UP AND PRICING REPOSITORIES
// ──────────────────────────────────────────────

// MockTopUpRepository is a mock implementation of TopUpRepository.
type MockTopUpRepository struct {
	mu     sync.RWMutex
	topUps map[string]*domain.TopUpRequest
}

// NewMockTopUpRepository creates a new mock top-up repository.
func NewMockTopUpRepository() *MockTopUpRepository {
	return &MockTopUpRepository{topUps: make(map[string]*domain.TopUpRequest)}
}

func (m *MockTopUpRepository) Create(ctx context.Context, req *domain.TopUpRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topUps[req.ID] = req
	return nil
}

func (m *MockTopUpRepository) GetByID(ctx context.Context, id string) (*domain.TopUpRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.topUps[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *req
	return &copy, nil
}

func (m *MockTopUpRepository) ListByUser(ctx context.Context, userID string) ([]*domain.TopUpRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.TopUpRequest, 0)
	for _, r := range m.topUps {
		if r.UserID == userID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockTopUpRepository) SetStatus(ctx context.Context, id string, status domain.TopUpStatus, reviewedBy string, reviewedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.topUps[id]
	if !ok {
		return repository.ErrNotFound
	}
	if req.Status != domain.TopUpStatusPending {
		return repository.ErrStale
	}
	req.Status = status
	req.ReviewedBy = reviewedBy
	req.ReviewedAt = reviewedAt
	return nil
}

// MockPricingRepository is a mock implementation of PricingRepository.
type MockPricingRepository struct {
	mu    sync.RWMutex
	rules map[string]*domain.PricingRule
}

// NewMockPricingRepository creates a new mock pricing repository.
func NewMockPricingRepository() *MockPricingRepository {
	return &MockPricingRepository{rules: make(map[string]*domain.PricingRule)}
}

// AddRule adds a pricing rule to the mock repository.
func (m *MockPricingRepository) AddRule(rule *domain.PricingRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[rule.Country] = rule
}

func (m *MockPricingRepository) GetByCountry(ctx context.Context, country string) (*domain.PricingRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rule, ok := m.rules[country]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *rule
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK TRANSACTION MANAGER
// ──────────────────────────────────────────────

// MockTxManager runs the callback against the same mock repositories the
// test wired elsewhere. Atomicity is not simulated; conditional writes in the
// mocks cover the precondition behavior under test.
type MockTxManager struct {
	Trips     repository.TripRepository
	Offers    repository.OfferRepository
	Users     repository.UserRepository
	AdminLogs repository.AdminLogRepository

	// Counters for verification
	WithinTxCallCount int32

	// Error injection
	BeginError error
}

// NewMockTxManager creates a MockTxManager over the given repositories.
func NewMockTxManager(trips repository.TripRepository, offers repository.OfferRepository, users repository.UserRepository, adminLogs repository.AdminLogRepository) *MockTxManager {
	return &MockTxManager{Trips: trips, Offers: offers, Users: users, AdminLogs: adminLogs}
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(repository.TxRepos) error) error {
	atomic.AddInt32(&m.WithinTxCallCount, 1)
	if m.BeginError != nil {
		return m.BeginError
	}
	return fn(repository.TxRepos{
		Trips:     m.Trips,
		Offers:    m.Offers,
		Users:     m.Users,
		AdminLogs: m.AdminLogs,
	})
}

// ──────────────────────────────────────────────
// MOCK REDIS STORES
// ──────────────────────────────────────────────

// MockLockStore is an in-memory implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error) {
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[tripID] {
		return false, nil
	}
	m.locks[tripID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseTripLock(ctx context.Context, tripID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, tripID)
	return nil
}

// HoldLock simulates another acceptance already holding the trip lock.
func (m *MockLockStore) HoldLock(tripID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[tripID] = true
}

// MockCacheStore is an in-memory implementation of CacheStoreInterface.
type MockCacheStore struct {
	mu       sync.RWMutex
	carriers map[string]*redis.CachedCarrier

	// Counters for verification
	InvalidateCallCount int32
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{carriers: make(map[string]*redis.CachedCarrier)}
}

func (m *MockCacheStore) GetCarrier(ctx context.Context, carrierID string) (*redis.CachedCarrier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.carriers[carrierID], nil
}

func (m *MockCacheStore) SetCarrier(ctx context.Context, carrier *redis.CachedCarrier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carriers[carrier.ID] = carrier
	return nil
}

func (m *MockCacheStore) InvalidateCarrier(ctx context.Context, carrierID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carriers, carrierID)
	return nil
}

// Cached reports whether a carrier is currently cached.
func (m *MockCacheStore) Cached(carrierID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.carriers[carrierID]
	return ok
}
