package report

import (
	"io"

	"ecomfunnel/analytics"
	"ecomfunnel/config"
	"ecomfunnel/logger"
)

// WriteAll writes the four report files named in cfg. It stops at the first
// failure; files already written stay in place.
func WriteAll(cfg config.OutputConfig, res *analytics.Results, log *logger.Logger) error {
	outputs := []struct {
		name  string
		rows  int
		write func(io.Writer) error
	}{
		{cfg.FunnelFile, len(res.Journeys), func(w io.Writer) error { return WriteJourneys(w, res.Journeys) }},
		{cfg.FirstPageFile, len(res.FirstPage), func(w io.Writer) error { return WriteFirstPage(w, res.FirstPage) }},
		{cfg.ProductViewersFile, len(res.ProductOnly), func(w io.Writer) error { return WriteProductOnly(w, res.ProductOnly) }},
		{cfg.AnomaliesFile, len(res.Anomalies), func(w io.Writer) error { return WriteAnomalies(w, res.Anomalies) }},
	}

	for _, out := range outputs {
		path := cfg.OutputPath(out.name)
		if err := WriteFile(path, out.write); err != nil {
			return err
		}
		log.Info("Report written", "path", path, "rows", out.rows)
	}
	return nil
}
