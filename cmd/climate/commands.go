package main

import (
	"github.com/spf13/cobra"

	"github.com/couchcryptid/station-climate/internal/analysis"
	"github.com/couchcryptid/station-climate/internal/pipeline"
)

func (a *app) stationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stations",
		Short: "List stations with their id and coordinates",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.printJSON(a.session.Stations())
		},
	}
}

func (a *app) yearsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "years",
		Short: "List the years with data for a station, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			name, err := a.stationName()
			if err != nil {
				return err
			}
			view, err := a.session.StationView(name)
			if err != nil {
				return err
			}
			return a.printJSON(struct {
				Station string `json:"station"`
				Years   []int  `json:"years"`
			}{name, view.Years()})
		},
	}
	a.stationFlag(cmd)
	return cmd
}

func (a *app) summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Mean maximum temperature, total precipitation, elevation and record day",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			name, err := a.stationName()
			if err != nil {
				return err
			}
			summary, err := a.session.Summary(name, a.year)
			if err != nil {
				return err
			}
			return a.printJSON(summary)
		},
	}
	a.stationFlag(cmd)
	a.yearFlag(cmd)
	return cmd
}

func (a *app) rollingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rolling",
		Short: "Daily maximum temperature with its trailing rolling mean",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			name, err := a.stationName()
			if err != nil {
				return err
			}
			window := a.window
			if window == 0 {
				window = a.cfg.RollingWindow
			}
			points, err := a.session.RollingMean(name, a.year, window)
			if err != nil {
				return err
			}
			return a.printJSON(points)
		},
	}
	a.stationFlag(cmd)
	a.yearFlag(cmd)
	cmd.Flags().IntVar(&a.window, "window", 0, "window in days (default: ROLLING_WINDOW)")
	return cmd
}

func (a *app) trendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Annual mean maximum temperature with a linear fit",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			name, err := a.stationName()
			if err != nil {
				return err
			}
			trend, err := a.session.AnnualTrend(name)
			if err != nil {
				return err
			}
			return a.printJSON(trend)
		},
	}
	a.stationFlag(cmd)
	return cmd
}

func (a *app) anomalyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anomaly",
		Short: "Daily anomaly of a year against the day-of-year climatology",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			name, err := a.stationName()
			if err != nil {
				return err
			}
			raw := a.baseline
			if raw == "" {
				raw = a.cfg.AnomalyBaseline
			}
			baseline, err := analysis.ParseBaseline(raw)
			if err != nil {
				return err
			}
			points, err := a.session.Anomaly(name, a.year, baseline)
			if err != nil {
				return err
			}
			return a.printJSON(points)
		},
	}
	a.stationFlag(cmd)
	a.yearFlag(cmd)
	cmd.Flags().StringVar(&a.baseline, "baseline", "", "inclusive or leave-one-out (default: ANOMALY_BASELINE)")
	return cmd
}

func (a *app) wetDryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wetdry",
		Short: "Classify every day of a station as wet or dry",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			name, err := a.stationName()
			if err != nil {
				return err
			}
			days, err := a.session.WetDry(name)
			if err != nil {
				return err
			}
			return a.printJSON(days)
		},
	}
	a.stationFlag(cmd)
	return cmd
}

func (a *app) distributionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distribution",
		Short: "Per-year temperature histogram and wet/dry temperature distribution",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			name, err := a.stationName()
			if err != nil {
				return err
			}
			bins := a.bins
			if bins == 0 {
				bins = a.cfg.HistogramBins
			}
			histogram, err := a.session.Histogram(name, bins)
			if err != nil {
				return err
			}
			byState, err := a.session.Distribution(name)
			if err != nil {
				return err
			}
			return a.printJSON(struct {
				Histogram analysis.Histogram           `json:"histogram"`
				WetDry    []analysis.StateDistribution `json:"wet_dry"`
			}{histogram, byState})
		},
	}
	a.stationFlag(cmd)
	cmd.Flags().IntVar(&a.bins, "bins", 0, "histogram bins (default: HISTOGRAM_BINS)")
	return cmd
}

func (a *app) dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Every dashboard section for one station and year",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			name, err := a.stationName()
			if err != nil {
				return err
			}
			d, err := a.session.Dashboard(name, a.year)
			if err != nil {
				return err
			}
			return a.printJSON(d)
		},
	}
	a.stationFlag(cmd)
	a.yearFlag(cmd)
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the unified table (or one station) as CSV to stdout",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if a.station == "" {
				return pipeline.WriteCSV(a.stdout, a.session.Table().Records())
			}
			view, err := a.session.StationView(a.station)
			if err != nil {
				return err
			}
			return pipeline.WriteCSV(a.stdout, view.Records())
		},
	}
	cmd.Flags().StringVar(&a.station, "station", "", "only export this station")
	return cmd
}
