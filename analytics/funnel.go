// Package analytics derives session funnels and user-level reports from a
// clickstream event log. Every function is pure over its input slice.
package analytics

import (
	"errors"
	"slices"
	"sort"

	"ecomfunnel/models"
)

// ErrMixedUserSession is returned in strict mode when one session id is shared by several users.
var ErrMixedUserSession = errors.New("session belongs to more than one user")

// AggregateSessions builds one journey per distinct session, ordered by session id.
// Sequences keep input row order. The journey's user is the user of the first row
// seen for the session; see MixedUserSessions for sessions where that is ambiguous.
func AggregateSessions(events []models.Event) []models.SessionJourney {
	index := make(map[string]int)
	var journeys []models.SessionJourney

	for _, ev := range events {
		i, ok := index[ev.Session]
		if !ok {
			i = len(journeys)
			index[ev.Session] = i
			journeys = append(journeys, models.SessionJourney{
				Session:        ev.Session,
				FirstEventDate: ev.EventDate,
				User:           ev.User,
			})
		}
		j := &journeys[i]
		if ev.EventDate.Before(j.FirstEventDate) {
			j.FirstEventDate = ev.EventDate
		}
		j.PageTypeSequence = append(j.PageTypeSequence, ev.PageType)
		j.EventTypeSequence = append(j.EventTypeSequence, ev.EventType)
		j.ProductSequence = append(j.ProductSequence, ev.Product)
	}

	for i := range journeys {
		journeys[i].FunnelStages = ClassifyFunnel(journeys[i].PageTypeSequence, journeys[i].EventTypeSequence)
	}

	sort.Slice(journeys, func(a, b int) bool {
		return journeys[a].Session < journeys[b].Session
	})
	return journeys
}

// ClassifyFunnel derives the reach flags from a session's page and event types.
// Only membership matters; position and repetition do not.
func ClassifyFunnel(pageTypes, eventTypes []string) models.FunnelStages {
	var stages models.FunnelStages
	if len(pageTypes) > 0 {
		stages.FirstPageType = pageTypes[0]
	}
	stages.ReachedProduct = slices.Contains(pageTypes, models.PageTypeProduct)
	stages.ReachedCart = slices.Contains(eventTypes, models.EventTypeAddToCart)
	stages.ReachedPurchase = slices.Contains(eventTypes, models.EventTypeOrder)
	return stages
}

// MixedUserSessions returns, sorted, the sessions whose events carry more than one user.
func MixedUserSessions(events []models.Event) []string {
	owner := make(map[string]string)
	mixed := make(map[string]struct{})
	for _, ev := range events {
		u, ok := owner[ev.Session]
		if !ok {
			owner[ev.Session] = ev.User
			continue
		}
		if u != ev.User {
			mixed[ev.Session] = struct{}{}
		}
	}

	out := make([]string, 0, len(mixed))
	for s := range mixed {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
