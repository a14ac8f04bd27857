package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/station-climate/internal/analysis"
	"github.com/couchcryptid/station-climate/internal/config"
	"github.com/couchcryptid/station-climate/internal/observability"
	"github.com/couchcryptid/station-climate/internal/pipeline"
	"github.com/couchcryptid/station-climate/internal/session"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	session *session.Session

	temperaturePath   string
	precipitationPath string
	coordinatesPath   string

	station  string
	year     int
	window   int
	baseline string
	bins     int
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "climate",
		Short: "Daily maximum temperature and precipitation metrics per weather station",
		Long: `climate joins the station temperature and precipitation tables with station
coordinates and prints derived metrics as JSON on stdout. Logs go to stderr.

Paths and defaults come from the environment (or a .env file):
  TEMPERATURE_CSV, PRECIPITATION_CSV, COORDINATES_CSV, CSV_DELIMITER,
  ROLLING_WINDOW, ANOMALY_BASELINE, HISTOGRAM_BINS, VIEW_CACHE_SIZE,
  LOG_LEVEL, LOG_FORMAT, METRICS_TEXTFILE`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.writeMetrics()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetContext(context.Background())

	pf := root.PersistentFlags()
	pf.StringVar(&a.temperaturePath, "temperature", "", "temperature CSV (overrides TEMPERATURE_CSV)")
	pf.StringVar(&a.precipitationPath, "precipitation", "", "precipitation CSV (overrides PRECIPITATION_CSV)")
	pf.StringVar(&a.coordinatesPath, "coordinates", "", "coordinates CSV (overrides COORDINATES_CSV)")

	root.AddCommand(
		a.stationsCmd(),
		a.yearsCmd(),
		a.summaryCmd(),
		a.rollingCmd(),
		a.trendCmd(),
		a.anomalyCmd(),
		a.wetDryCmd(),
		a.distributionCmd(),
		a.dashboardCmd(),
		a.exportCmd(),
	)
	return root
}

// open loads configuration and the unified table.
func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.temperaturePath != "" {
		cfg.TemperaturePath = a.temperaturePath
	}
	if a.precipitationPath != "" {
		cfg.PrecipitationPath = a.precipitationPath
	}
	if a.coordinatesPath != "" {
		cfg.CoordinatesPath = a.coordinatesPath
	}
	a.cfg = cfg
	a.logger = observability.NewLogger(cfg, a.stderr)
	a.metrics = observability.NewMetrics()

	baseline, err := analysis.ParseBaseline(cfg.AnomalyBaseline)
	if err != nil {
		return err
	}

	p := pipeline.New(
		pipeline.FileSources(cfg.TemperaturePath, cfg.PrecipitationPath, cfg.CoordinatesPath),
		a.logger,
		a.metrics,
		pipeline.WithDelimiter(cfg.Delimiter),
	)
	s, err := session.Open(ctx, p, a.logger, a.metrics,
		session.WithCacheSize(cfg.ViewCacheSize),
		session.WithRollingWindow(cfg.RollingWindow),
		session.WithBaseline(baseline),
		session.WithHistogramBins(cfg.HistogramBins),
	)
	if err != nil {
		_ = a.writeMetrics()
		return err
	}
	a.session = s
	return nil
}

func (a *app) writeMetrics() error {
	if a.cfg == nil || a.cfg.MetricsTextfile == "" {
		return nil
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
		a.logger.Error("failed to write metrics textfile", "path", a.cfg.MetricsTextfile, "error", err)
		return err
	}
	return nil
}

// stationName returns --station, or the first station by name when unset.
func (a *app) stationName() (string, error) {
	if a.station != "" {
		return a.station, nil
	}
	sites := a.session.Stations()
	if len(sites) == 0 {
		return "", errors.New("the unified table has no stations")
	}
	return sites[0].StationName, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) stationFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.station, "station", "", "station name (default: first station by name)")
}

func (a *app) yearFlag(cmd *cobra.Command) {
	cmd.Flags().IntVar(&a.year, "year", 0, "calendar year (default: most recent year of the station)")
}
