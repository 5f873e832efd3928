package analytics

import (
	"sort"
	"time"

	"ecomfunnel/models"
	"ecomfunnel/utils"
)

type firstDayActivity struct {
	first      time.Time
	date       time.Time
	onlyViews  bool
	sawProduct bool
}

// ProductOnlyViewers counts, per calendar date, the users whose first active day
// consisted only of page views and included at least one product page view.
// A user's first active day is the calendar date of their earliest event; all of
// that day's events count, across sessions. Output is ordered by date.
func ProductOnlyViewers(events []models.Event) []models.ProductOnlyDay {
	users := make(map[string]*firstDayActivity)
	for _, ev := range events {
		a, ok := users[ev.User]
		if !ok || ev.EventDate.Before(a.first) {
			if !ok {
				a = &firstDayActivity{}
				users[ev.User] = a
			}
			a.first = ev.EventDate
			a.date = utils.CalendarDate(ev.EventDate)
		}
	}

	for _, a := range users {
		a.onlyViews = true
	}
	for _, ev := range events {
		a := users[ev.User]
		if !sameDate(utils.CalendarDate(ev.EventDate), a.date) {
			continue
		}
		if ev.EventType != models.EventTypePageView {
			a.onlyViews = false
		}
		if ev.PageType == models.PageTypeProduct {
			a.sawProduct = true
		}
	}

	counts := make(map[string]*models.ProductOnlyDay)
	for _, a := range users {
		if !a.onlyViews || !a.sawProduct {
			continue
		}
		key := a.date.Format(time.DateOnly)
		day, ok := counts[key]
		if !ok {
			day = &models.ProductOnlyDay{Date: a.date}
			counts[key] = day
		}
		day.ViewersCount++
	}

	days := make([]models.ProductOnlyDay, 0, len(counts))
	for _, d := range counts {
		days = append(days, *d)
	}
	sort.Slice(days, func(a, b int) bool {
		return days[a].Date.Format(time.DateOnly) < days[b].Date.Format(time.DateOnly)
	})
	return days
}

// sameDate compares calendar dates independent of zone.
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
