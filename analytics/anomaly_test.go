package analytics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomfunnel/models"
)

func TestIsAnomalousThresholds(t *testing.T) {
	tests := []struct {
		name string
		rec  models.UserAnomalyRecord
		want bool
	}{
		{"quiet user", models.UserAnomalyRecord{SessionCount: 2, TotalEvents: 6, UniquePageTypes: 3, EventsPerSession: 3}, false},
		{"events per session at limit", models.UserAnomalyRecord{SessionCount: 2, TotalEvents: 10, UniquePageTypes: 3, EventsPerSession: 5}, false},
		{"events per session above limit", models.UserAnomalyRecord{SessionCount: 2, TotalEvents: 12, UniquePageTypes: 4, EventsPerSession: 6}, true},
		{"total at limit", models.UserAnomalyRecord{SessionCount: 5, TotalEvents: 10, UniquePageTypes: 2, EventsPerSession: 2}, false},
		{"total above limit", models.UserAnomalyRecord{SessionCount: 11, TotalEvents: 11, UniquePageTypes: 2, EventsPerSession: 1}, true},
		{"single page type at limit", models.UserAnomalyRecord{SessionCount: 5, TotalEvents: 5, UniquePageTypes: 1, EventsPerSession: 1}, false},
		{"single page type above limit", models.UserAnomalyRecord{SessionCount: 6, TotalEvents: 6, UniquePageTypes: 1, EventsPerSession: 1}, true},
		{"two page types six events", models.UserAnomalyRecord{SessionCount: 6, TotalEvents: 6, UniquePageTypes: 2, EventsPerSession: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAnomalous(tt.rec))
		})
	}
}

func TestDetectAnomaliesEventsPerSession(t *testing.T) {
	pages := []string{"home", "listing", "product_page", "checkout"}
	var events []models.Event
	for i := 0; i < 12; i++ {
		session := "S1"
		if i >= 6 {
			session = "S2"
		}
		events = append(events, ev(i, session, "U2", pages[i%len(pages)], "page_view"))
	}
	events = append(events, ev(0, "S9", "U9", "home", "page_view"))

	flagged, err := DetectAnomalies(events)
	require.NoError(t, err)
	require.Len(t, flagged, 1)

	u2 := flagged[0]
	assert.Equal(t, "U2", u2.User)
	assert.Equal(t, 2, u2.SessionCount)
	assert.Equal(t, 12, u2.TotalEvents)
	assert.Equal(t, 4, u2.UniquePageTypes)
	assert.Equal(t, 6.0, u2.EventsPerSession)
}

func TestDetectAnomaliesSinglePageType(t *testing.T) {
	var events []models.Event
	for i := 0; i < 6; i++ {
		events = append(events, ev(i, fmt.Sprintf("S%d", i), "BOT", "product_page", "page_view"))
	}

	flagged, err := DetectAnomalies(events)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, "BOT", flagged[0].User)
	assert.Equal(t, 6, flagged[0].SessionCount)
	assert.Equal(t, 1, flagged[0].UniquePageTypes)
	assert.Equal(t, 1.0, flagged[0].EventsPerSession)
}

func TestAnomalyMonotonicInTotalEvents(t *testing.T) {
	for sessions := 1; sessions <= 4; sessions++ {
		for pageTypes := 1; pageTypes <= 3; pageTypes++ {
			flagged := false
			for total := sessions; total <= 30; total++ {
				rec, err := newUserRecord("u", sessions, total, pageTypes)
				require.NoError(t, err)
				now := IsAnomalous(rec)
				if flagged {
					assert.True(t, now, "sessions=%d pageTypes=%d total=%d", sessions, pageTypes, total)
				}
				flagged = now
			}
		}
	}
}

func TestUserMetricsZeroSessions(t *testing.T) {
	_, err := newUserRecord("ghost", 0, 3, 1)
	assert.True(t, errors.Is(err, ErrNoSessions))
}

func TestUserMetricsOrderedByUser(t *testing.T) {
	events := []models.Event{
		ev(0, "S1", "zed", "home", "page_view"),
		ev(1, "S2", "amy", "home", "page_view"),
		ev(2, "S3", "amy", "listing", "page_view"),
	}
	records, err := UserMetrics(events)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "amy", records[0].User)
	assert.Equal(t, 2, records[0].SessionCount)
	assert.Equal(t, 2, records[0].UniquePageTypes)
	assert.Equal(t, "zed", records[1].User)
}
