// models/event.go
package models

import "time"

// Page and event type values the funnel stages are keyed on.
const (
	PageTypeProduct = "product_page"

	EventTypePageView  = "page_view"
	EventTypeAddToCart = "add_to_cart"
	EventTypeOrder     = "order"
)

// Event is one row of the clickstream log.
type Event struct {
	EventDate time.Time `json:"eventDate"`
	Session   string    `json:"session"`
	User      string    `json:"user"`
	PageType  string    `json:"pageType"`
	EventType string    `json:"eventType"`
	Product   *int64    `json:"product,omitempty"`
}

// SessionJourney is the ordered history of a single session.
// User is the user of the first row seen for the session.
type SessionJourney struct {
	Session           string    `json:"session"`
	FirstEventDate    time.Time `json:"firstEventDate"`
	User              string    `json:"user"`
	PageTypeSequence  []string  `json:"pageTypes"`
	EventTypeSequence []string  `json:"eventTypes"`
	ProductSequence   []*int64  `json:"products"`
	FunnelStages
}

// FunnelStages holds the per-session reach flags.
type FunnelStages struct {
	FirstPageType   string `json:"firstPageType"`
	ReachedProduct  bool   `json:"reachedProduct"`
	ReachedCart     bool   `json:"reachedCart"`
	ReachedPurchase bool   `json:"reachedPurchase"`
}

type FirstPageSegment struct {
	FirstPageType   string  `json:"firstPageType"`
	TotalSessions   int     `json:"totalSessions"`
	ProductViewRate float64 `json:"productViewRate"`
	CartRate        float64 `json:"cartRate"`
	PurchaseRate    float64 `json:"purchaseRate"`
}

// ProductOnlyDay counts users whose first active day was product page views only.
type ProductOnlyDay struct {
	Date         time.Time `json:"date"`
	ViewersCount int       `json:"viewersCount"`
}

type UserAnomalyRecord struct {
	User             string  `json:"user"`
	SessionCount     int     `json:"sessionCount"`
	TotalEvents      int     `json:"totalEvents"`
	UniquePageTypes  int     `json:"uniquePageTypes"`
	EventsPerSession float64 `json:"eventsPerSession"`
}
