package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"tripbroker/internal/domain"
)

// CacheStore handles carrier profile caching in Redis. Eligibility checks
// re-run on every live update, so profile reads are the hot path.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// CarrierCacheTTL bounds staleness of cached carrier profiles. Freeze actions
// invalidate explicitly; the TTL covers everything else.
const CarrierCacheTTL = 30 * time.Second

const carrierCachePrefix = "cache:carrier:"

// CachedCarrier is the cached subset of a carrier profile used by
// eligibility and ranking.
type CachedCarrier struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Role                string    `json:"role"`
	VehicleCapacity     int       `json:"vehicle_capacity"`
	VehicleCategory     string    `json:"vehicle_category"`
	JurisdictionOrigin  string    `json:"jurisdiction_origin,omitempty"`
	JurisdictionDest    string    `json:"jurisdiction_destination,omitempty"`
	CurrentActiveTripID string    `json:"current_active_trip_id,omitempty"`
	IsPartial           bool      `json:"is_partial"`
	IsFinancialFrozen   bool      `json:"is_financial_frozen"`
	IsDeactivated       bool      `json:"is_deactivated"`
	RatingAverage       float64   `json:"rating_average"`
	RatingTier          string    `json:"rating_tier"`
	CreatedAt           time.Time `json:"created_at"`
}

// FromProfile builds the cache entry for a carrier profile.
func FromProfile(u *domain.UserProfile) *CachedCarrier {
	c := &CachedCarrier{
		ID:                  u.ID,
		Name:                u.Name,
		Role:                string(u.Role),
		VehicleCapacity:     u.VehicleCapacity,
		VehicleCategory:     u.VehicleCategory,
		CurrentActiveTripID: u.CurrentActiveTripID,
		IsPartial:           u.IsPartial,
		IsFinancialFrozen:   u.IsFinancialFrozen,
		IsDeactivated:       u.IsDeactivated,
		RatingAverage:       u.Rating.Average,
		RatingTier:          string(u.Rating.Tier),
		CreatedAt:           u.CreatedAt,
	}
	if u.Jurisdiction != nil {
		c.JurisdictionOrigin = u.Jurisdiction.Origin
		c.JurisdictionDest = u.Jurisdiction.Destination
	}
	return c
}

// ToProfile rebuilds a carrier profile from the cache entry.
func (c *CachedCarrier) ToProfile() *domain.UserProfile {
	u := &domain.UserProfile{
		ID:                  c.ID,
		Name:                c.Name,
		Role:                domain.Role(c.Role),
		VehicleCapacity:     c.VehicleCapacity,
		VehicleCategory:     c.VehicleCategory,
		CurrentActiveTripID: c.CurrentActiveTripID,
		IsPartial:           c.IsPartial,
		IsFinancialFrozen:   c.IsFinancialFrozen,
		IsDeactivated:       c.IsDeactivated,
		Rating: domain.RatingStats{
			Average: c.RatingAverage,
			Tier:    domain.RatingTier(c.RatingTier),
		},
		CreatedAt: c.CreatedAt,
	}
	if c.JurisdictionOrigin != "" || c.JurisdictionDest != "" {
		u.Jurisdiction = &domain.Jurisdiction{
			Origin:      c.JurisdictionOrigin,
			Destination: c.JurisdictionDest,
		}
	}
	return u
}

// GetCarrier retrieves a carrier from cache. A nil result is a cache miss.
func (s *CacheStore) GetCarrier(ctx context.Context, carrierID string) (*CachedCarrier, error) {
	key := carrierCachePrefix + carrierID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var carrier CachedCarrier
	if err := json.Unmarshal(data, &carrier); err != nil {
		return nil, err
	}
	return &carrier, nil
}

// SetCarrier stores a carrier in cache.
func (s *CacheStore) SetCarrier(ctx context.Context, carrier *CachedCarrier) error {
	key := carrierCachePrefix + carrier.ID
	data, err := json.Marshal(carrier)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, CarrierCacheTTL).Err()
}

// InvalidateCarrier removes a carrier from cache. Called on every freeze,
// unfreeze, and profile update so eligibility never sees a stale flag for
// longer than one round trip.
func (s *CacheStore) InvalidateCarrier(ctx context.Context, carrierID string) error {
	key := carrierCachePrefix + carrierID
	return s.client.Del(ctx, key).Err()
}
