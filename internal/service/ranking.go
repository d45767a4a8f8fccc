package service

import (
	"sort"

	"tripbroker/internal/domain"
)

// SortMode selects how a traveler's offer list is ordered.
type SortMode string

const (
	SortRecommended SortMode = "recommended"
	SortPrice       SortMode = "price"
	SortRating      SortMode = "rating"
)

// ValidSortMode reports whether m is a known sort mode.
func ValidSortMode(m SortMode) bool {
	switch m {
	case SortRecommended, SortPrice, SortRating:
		return true
	}
	return false
}

// RankedOffer is an offer annotated for traveler review.
type RankedOffer struct {
	Offer       *domain.Offer
	Carrier     *domain.UserProfile
	Score       float64
	IsBestValue bool
	IsTopTier   bool
}

// RankOffers orders pending offers for one trip. carriers maps carrier ID to
// profile; offers whose carrier does not resolve are dropped so a dangling
// offer is never shown. Input order is arrival order and is the tie-break
// for every mode (sorts are stable).
func RankOffers(offers []*domain.Offer, carriers map[string]*domain.UserProfile, mode SortMode) []RankedOffer {
	ranked := make([]RankedOffer, 0, len(offers))
	for _, offer := range offers {
		carrier, ok := carriers[offer.CarrierID]
		if !ok || carrier == nil {
			continue
		}
		ranked = append(ranked, RankedOffer{
			Offer:     offer,
			Carrier:   carrier,
			Score:     carrier.Rating.Average*10 - offer.Price,
			IsTopTier: carrier.IsTopTier(),
		})
	}

	markBestValue(ranked)

	switch mode {
	case SortPrice:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Offer.Price < ranked[j].Offer.Price
		})
	case SortRating:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Carrier.Rating.Average > ranked[j].Carrier.Rating.Average
		})
	default: // recommended
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Score > ranked[j].Score
		})
	}

	return ranked
}

// markBestValue tags the offer(s) whose price equals the minimum positive
// price. Ties all carry the tag.
func markBestValue(ranked []RankedOffer) {
	minPrice := 0.0
	for _, r := range ranked {
		if r.Offer.Price <= 0 {
			continue
		}
		if minPrice == 0 || r.Offer.Price < minPrice {
			minPrice = r.Offer.Price
		}
	}
	if minPrice == 0 {
		return
	}
	for i := range ranked {
		if ranked[i].Offer.Price == minPrice {
			ranked[i].IsBestValue = true
		}
	}
}
