package analytics

import (
	"errors"
	"fmt"
	"sort"

	"ecomfunnel/models"
)

// Heuristic thresholds for automated traffic. Comparisons are strict.
const (
	MaxEventsPerSession     = 5
	MaxTotalEvents          = 10
	MaxSinglePageTypeEvents = 5
)

// ErrNoSessions marks a user with no sessions, which leaves events per session undefined.
var ErrNoSessions = errors.New("user has no sessions")

type userActivity struct {
	sessions  map[string]struct{}
	pageTypes map[string]struct{}
	events    int
}

// UserMetrics computes per-user activity statistics, ordered by user.
func UserMetrics(events []models.Event) ([]models.UserAnomalyRecord, error) {
	users := make(map[string]*userActivity)
	for _, ev := range events {
		a, ok := users[ev.User]
		if !ok {
			a = &userActivity{
				sessions:  make(map[string]struct{}),
				pageTypes: make(map[string]struct{}),
			}
			users[ev.User] = a
		}
		a.sessions[ev.Session] = struct{}{}
		a.pageTypes[ev.PageType] = struct{}{}
		a.events++
	}

	records := make([]models.UserAnomalyRecord, 0, len(users))
	for user, a := range users {
		rec, err := newUserRecord(user, len(a.sessions), a.events, len(a.pageTypes))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].User < records[j].User
	})
	return records, nil
}

func newUserRecord(user string, sessions, events, pageTypes int) (models.UserAnomalyRecord, error) {
	if sessions == 0 {
		return models.UserAnomalyRecord{}, fmt.Errorf("user %s: %w", user, ErrNoSessions)
	}
	return models.UserAnomalyRecord{
		User:             user,
		SessionCount:     sessions,
		TotalEvents:      events,
		UniquePageTypes:  pageTypes,
		EventsPerSession: float64(events) / float64(sessions),
	}, nil
}

// IsAnomalous reports whether a user's activity looks automated.
func IsAnomalous(r models.UserAnomalyRecord) bool {
	return r.EventsPerSession > MaxEventsPerSession ||
		r.TotalEvents > MaxTotalEvents ||
		(r.UniquePageTypes == 1 && r.TotalEvents > MaxSinglePageTypeEvents)
}

// DetectAnomalies returns the metrics of every user flagged by IsAnomalous, ordered by user.
func DetectAnomalies(events []models.Event) ([]models.UserAnomalyRecord, error) {
	records, err := UserMetrics(events)
	if err != nil {
		return nil, err
	}
	flagged := records[:0]
	for _, r := range records {
		if IsAnomalous(r) {
			flagged = append(flagged, r)
		}
	}
	return flagged, nil
}
