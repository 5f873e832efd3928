package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"ecomfunnel/logger"
	"ecomfunnel/models"
)

type Options struct {
	StrictSessions bool
}

// Results holds every report derived from one event log.
type Results struct {
	Journeys      []models.SessionJourney
	FirstPage     []models.FirstPageSegment
	ProductOnly   []models.ProductOnlyDay
	Anomalies     []models.UserAnomalyRecord
	MixedSessions []string
}

// Run computes all reports. The session, cohort and anomaly analyses only read
// events, so they run concurrently; the first failure cancels the run.
func Run(ctx context.Context, events []models.Event, opts Options, log *logger.Logger) (*Results, error) {
	start := time.Now()
	res := &Results{}

	res.MixedSessions = MixedUserSessions(events)
	if len(res.MixedSessions) > 0 {
		if opts.StrictSessions {
			return nil, fmt.Errorf("%w: %d sessions, first %s", ErrMixedUserSession, len(res.MixedSessions), res.MixedSessions[0])
		}
		log.Warn("Sessions with more than one user, keeping the first user seen",
			"count", len(res.MixedSessions), "example", res.MixedSessions[0])
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res.Journeys = AggregateSessions(events)
		if err := gctx.Err(); err != nil {
			return err
		}
		res.FirstPage = SegmentByFirstPage(res.Journeys)
		log.Debug("Session funnel computed", "sessions", len(res.Journeys), "segments", len(res.FirstPage))
		return nil
	})

	g.Go(func() error {
		res.ProductOnly = ProductOnlyViewers(events)
		log.Debug("Product-only viewers computed", "days", len(res.ProductOnly))
		return nil
	})

	g.Go(func() error {
		anomalies, err := DetectAnomalies(events)
		if err != nil {
			return fmt.Errorf("anomaly detection: %w", err)
		}
		res.Anomalies = anomalies
		log.Debug("Anomalous users detected", "users", len(anomalies))
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("Analysis completed",
		"events", len(events),
		"sessions", len(res.Journeys),
		"anomalous_users", len(res.Anomalies),
		"elapsed", time.Since(start))
	return res, nil
}

// Journey returns the journey for session, if present. Journeys are sorted by session.
func (r *Results) Journey(session string) (models.SessionJourney, bool) {
	lo, hi := 0, len(r.Journeys)
	for lo < hi {
		mid := (lo + hi) / 2
		if r.Journeys[mid].Session < session {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(r.Journeys) && r.Journeys[lo].Session == session {
		return r.Journeys[lo], true
	}
	return models.SessionJourney{}, false
}
