// Package report writes analysis results as CSV files.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ecomfunnel/models"
	"ecomfunnel/utils"
)

const reportFileMode = 0o644

var (
	journeyHeader   = []string{"session", "event_date", "user", "page_type", "event_type", "product", "first_page_type", "reached_product", "reached_cart", "reached_purchase"}
	firstPageHeader = []string{"first_page_type", "total_sessions", "product_view_rate", "cart_rate", "purchase_rate"}
	productHeader   = []string{"date", "viewers_count"}
	anomalyHeader   = []string{"user", "session_count", "total_events", "unique_page_types", "events_per_session"}
)

// WriteJourneys writes one row per session journey.
func WriteJourneys(w io.Writer, journeys []models.SessionJourney) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(journeyHeader); err != nil {
		return err
	}
	for _, j := range journeys {
		pages, err := jsonList(j.PageTypeSequence)
		if err != nil {
			return err
		}
		evts, err := jsonList(j.EventTypeSequence)
		if err != nil {
			return err
		}
		products, err := jsonList(j.ProductSequence)
		if err != nil {
			return err
		}
		record := []string{
			j.Session,
			utils.FormatTimestamp(j.FirstEventDate),
			j.User,
			pages,
			evts,
			products,
			j.FirstPageType,
			strconv.FormatBool(j.ReachedProduct),
			strconv.FormatBool(j.ReachedCart),
			strconv.FormatBool(j.ReachedPurchase),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteFirstPage(w io.Writer, segments []models.FirstPageSegment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(firstPageHeader); err != nil {
		return err
	}
	for _, s := range segments {
		record := []string{
			s.FirstPageType,
			strconv.Itoa(s.TotalSessions),
			formatFloat(s.ProductViewRate),
			formatFloat(s.CartRate),
			formatFloat(s.PurchaseRate),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteProductOnly(w io.Writer, days []models.ProductOnlyDay) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(productHeader); err != nil {
		return err
	}
	for _, d := range days {
		if err := cw.Write([]string{d.Date.Format(time.DateOnly), strconv.Itoa(d.ViewersCount)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteAnomalies(w io.Writer, records []models.UserAnomalyRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(anomalyHeader); err != nil {
		return err
	}
	for _, r := range records {
		record := []string{
			r.User,
			strconv.Itoa(r.SessionCount),
			strconv.Itoa(r.TotalEvents),
			strconv.Itoa(r.UniquePageTypes),
			formatFloat(r.EventsPerSession),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// jsonList renders a sequence column as a JSON array, keeping <, > and & as-is.
func jsonList(v any) (string, error) {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// formatFloat uses the shortest round-trip form and always keeps a decimal point.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// WriteFile writes a report to path through a temporary file in the same
// directory, so path only ever holds a complete report.
func WriteFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := write(tmp); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	// CreateTemp opens files as 0600; reports are meant to be shared.
	if err := tmp.Chmod(reportFileMode); err != nil {
		return fmt.Errorf("setting mode on %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming %s: %w", path, err)
	}
	committed = true
	return nil
}
