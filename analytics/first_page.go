package analytics

import (
	"sort"

	"ecomfunnel/models"
)

type segmentCounts struct {
	sessions, product, cart, purchase int
}

// SegmentByFirstPage groups journeys by entry page type. Rates are the share of
// sessions in the segment that reached each stage, as a percentage.
func SegmentByFirstPage(journeys []models.SessionJourney) []models.FirstPageSegment {
	counts := make(map[string]*segmentCounts)
	for _, j := range journeys {
		c, ok := counts[j.FirstPageType]
		if !ok {
			c = &segmentCounts{}
			counts[j.FirstPageType] = c
		}
		c.sessions++
		if j.ReachedProduct {
			c.product++
		}
		if j.ReachedCart {
			c.cart++
		}
		if j.ReachedPurchase {
			c.purchase++
		}
	}

	segments := make([]models.FirstPageSegment, 0, len(counts))
	for pageType, c := range counts {
		segments = append(segments, models.FirstPageSegment{
			FirstPageType:   pageType,
			TotalSessions:   c.sessions,
			ProductViewRate: percentage(c.product, c.sessions),
			CartRate:        percentage(c.cart, c.sessions),
			PurchaseRate:    percentage(c.purchase, c.sessions),
		})
	}
	sort.Slice(segments, func(a, b int) bool {
		return segments[a].FirstPageType < segments[b].FirstPageType
	})
	return segments
}

func percentage(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
