package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomfunnel/models"
)

func TestSegmentByFirstPage(t *testing.T) {
	events := []models.Event{
		ev(0, "S1", "U1", "home", "page_view"),
		ev(1, "S1", "U1", "product_page", "add_to_cart"),
		ev(2, "S1", "U1", "checkout", "order"),
		ev(0, "S2", "U2", "home", "page_view"),
		ev(0, "S3", "U3", "listing", "page_view"),
		ev(1, "S3", "U3", "product_page", "page_view"),
		ev(0, "S4", "U4", "home", "page_view"),
		ev(1, "S4", "U4", "product_page", "page_view"),
	}

	segments := SegmentByFirstPage(AggregateSessions(events))
	require.Len(t, segments, 2)

	home := segments[0]
	assert.Equal(t, "home", home.FirstPageType)
	assert.Equal(t, 3, home.TotalSessions)
	assert.InDelta(t, 200.0/3, home.ProductViewRate, 1e-9)
	assert.InDelta(t, 100.0/3, home.CartRate, 1e-9)
	assert.InDelta(t, 100.0/3, home.PurchaseRate, 1e-9)

	listing := segments[1]
	assert.Equal(t, "listing", listing.FirstPageType)
	assert.Equal(t, 1, listing.TotalSessions)
	assert.Equal(t, 100.0, listing.ProductViewRate)
	assert.Equal(t, 0.0, listing.CartRate)
	assert.Equal(t, 0.0, listing.PurchaseRate)

	total := 0
	for _, s := range segments {
		total += s.TotalSessions
		for _, rate := range []float64{s.ProductViewRate, s.CartRate, s.PurchaseRate} {
			assert.GreaterOrEqual(t, rate, 0.0)
			assert.LessOrEqual(t, rate, 100.0)
		}
	}
	assert.Equal(t, 4, total)
}

func TestSegmentByFirstPageEmpty(t *testing.T) {
	segments := SegmentByFirstPage(nil)
	assert.NotNil(t, segments)
	assert.Empty(t, segments)
}
