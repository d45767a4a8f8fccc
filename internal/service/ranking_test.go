package service

import (
	"testing"
	"time"

	"tripbroker/internal/domain"
)

func offerFixture(id, carrierID string, price float64) *domain.Offer {
	return &domain.Offer{
		ID:        id,
		TripID:    "trip-1",
		CarrierID: carrierID,
		Price:     price,
		Currency:  "JOD",
		Status:    domain.OfferStatusPending,
		CreatedAt: time.Now(),
	}
}

func ratedCarrier(id string, average float64, tier domain.RatingTier) *domain.UserProfile {
	return &domain.UserProfile{
		ID:     id,
		Role:   domain.RoleCarrier,
		Rating: domain.RatingStats{Average: average, Tier: tier},
	}
}

// A pricier offer from a better-rated carrier can outrank a cheap one in the
// recommended ordering, and the price ordering reverses them.
func TestRankOffers_RecommendedWeighsRatingAgainstPrice(t *testing.T) {
	t.Parallel()

	offers := []*domain.Offer{
		offerFixture("offer-cheap", "carrier-low", 35),
		offerFixture("offer-pricey", "carrier-high", 40),
	}
	carriers := map[string]*domain.UserProfile{
		"carrier-low":  ratedCarrier("carrier-low", 3.0, domain.TierBronze),
		"carrier-high": ratedCarrier("carrier-high", 4.5, domain.TierGold),
	}

	ranked := RankOffers(offers, carriers, SortRecommended)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked offers, got %d", len(ranked))
	}
	if ranked[0].Offer.ID != "offer-pricey" {
		t.Errorf("expected offer-pricey first, got %s", ranked[0].Offer.ID)
	}
	if ranked[0].Score != 4.5*10-40 {
		t.Errorf("expected score 5, got %v", ranked[0].Score)
	}
	if ranked[1].Score != 3.0*10-35 {
		t.Errorf("expected score -5, got %v", ranked[1].Score)
	}

	byPrice := RankOffers(offers, carriers, SortPrice)
	if byPrice[0].Offer.ID != "offer-cheap" {
		t.Errorf("price mode: expected offer-cheap first, got %s", byPrice[0].Offer.ID)
	}

	byRating := RankOffers(offers, carriers, SortRating)
	if byRating[0].Offer.CarrierID != "carrier-high" {
		t.Errorf("rating mode: expected carrier-high first, got %s", byRating[0].Offer.CarrierID)
	}
}

func TestRankOffers_BestValueTagsAllCheapestOffers(t *testing.T) {
	t.Parallel()

	offers := []*domain.Offer{
		offerFixture("offer-1", "c1", 30),
		offerFixture("offer-2", "c2", 30),
		offerFixture("offer-3", "c3", 45),
	}
	carriers := map[string]*domain.UserProfile{
		"c1": ratedCarrier("c1", 4.0, domain.TierSilver),
		"c2": ratedCarrier("c2", 3.5, domain.TierBronze),
		"c3": ratedCarrier("c3", 5.0, domain.TierPlatinum),
	}

	ranked := RankOffers(offers, carriers, SortRecommended)
	tagged := 0
	for _, r := range ranked {
		if r.IsBestValue {
			tagged++
			if r.Offer.Price != 30 {
				t.Errorf("best-value tag on price %v", r.Offer.Price)
			}
		}
	}
	if tagged != 2 {
		t.Errorf("expected 2 best-value offers, got %d", tagged)
	}
}

func TestRankOffers_TopTierFollowsRatingTier(t *testing.T) {
	t.Parallel()

	offers := []*domain.Offer{
		offerFixture("offer-1", "c-gold", 50),
		offerFixture("offer-2", "c-bronze", 50),
	}
	carriers := map[string]*domain.UserProfile{
		"c-gold":   ratedCarrier("c-gold", 4.8, domain.TierGold),
		"c-bronze": ratedCarrier("c-bronze", 2.1, domain.TierBronze),
	}

	for _, r := range RankOffers(offers, carriers, SortRecommended) {
		wantTop := r.Offer.CarrierID == "c-gold"
		if r.IsTopTier != wantTop {
			t.Errorf("carrier %s: IsTopTier=%v", r.Offer.CarrierID, r.IsTopTier)
		}
	}
}

func TestRankOffers_DropsOffersWithUnresolvedCarriers(t *testing.T) {
	t.Parallel()

	offers := []*domain.Offer{
		offerFixture("offer-1", "c1", 30),
		offerFixture("offer-2", "c-gone", 20),
	}
	carriers := map[string]*domain.UserProfile{
		"c1": ratedCarrier("c1", 4.0, domain.TierSilver),
	}

	ranked := RankOffers(offers, carriers, SortRecommended)
	if len(ranked) != 1 || ranked[0].Offer.ID != "offer-1" {
		t.Errorf("expected only offer-1, got %d offers", len(ranked))
	}
}

func TestRankOffers_StableTieBreakKeepsArrivalOrder(t *testing.T) {
	t.Parallel()

	offers := []*domain.Offer{
		offerFixture("offer-first", "c1", 30),
		offerFixture("offer-second", "c2", 30),
	}
	carriers := map[string]*domain.UserProfile{
		"c1": ratedCarrier("c1", 4.0, domain.TierSilver),
		"c2": ratedCarrier("c2", 4.0, domain.TierSilver),
	}

	ranked := RankOffers(offers, carriers, SortRecommended)
	if ranked[0].Offer.ID != "offer-first" {
		t.Errorf("tie should keep arrival order, got %s first", ranked[0].Offer.ID)
	}
}
