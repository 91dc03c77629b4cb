// Package cmd implements the agencydash command line.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/zalepa/agencydash/dataset"
	"github.com/zalepa/agencydash/metrics"
	"github.com/zalepa/agencydash/render"
	"github.com/zalepa/agencydash/web"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	v   *viper.Viper
	log *zap.Logger
}

// settings is the merged configuration: flags > AGENCYDASH_* env > config
// file > defaults.
type settings struct {
	Data                string
	IncludeAggregateRow bool
	Debug               bool
	Host                string
	Port                int
	Columns             int
	Title               string
	FooterHTML          string
	EHRPie              bool
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("AGENCYDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	def := web.DefaultConfig()
	v.SetDefault("data", dataset.Builtin)
	v.SetDefault("include_aggregate_row", false)
	v.SetDefault("debug", false)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8050)
	v.SetDefault("columns", def.Columns)
	v.SetDefault("title", def.Title)
	v.SetDefault("footer_html", def.FooterHTML)
	v.SetDefault("ehr_pie", false)
	return v
}

func (a *app) settings() settings {
	return settings{
		Data:                a.v.GetString("data"),
		IncludeAggregateRow: a.v.GetBool("include_aggregate_row"),
		Debug:               a.v.GetBool("debug"),
		Host:                a.v.GetString("host"),
		Port:                a.v.GetInt("port"),
		Columns:             a.v.GetInt("columns"),
		Title:               a.v.GetString("title"),
		FooterHTML:          a.v.GetString("footer_html"),
		EHRPie:              a.v.GetBool("ehr_pie"),
	}
}

func (s settings) renderOptions() render.Options {
	return render.Options{
		IncludeAggregateRow: s.IncludeAggregateRow,
		DistributionPie:     s.EHRPie,
		Theme:               render.DefaultTheme(),
	}
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd(&app{v: newViper()}).Execute()
}

func newRootCmd(a *app) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "agencydash",
		Short: "Agency DA dashboard",
		Long: `agencydash aggregates per-agency document counts (DA unsigned, DA prepared,
RPA, EHR signed) and presents them as a web dashboard, chart files, a PDF
report or a terminal summary.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				a.v.SetConfigFile(configFile)
				if err := a.v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config: %w", err)
				}
			}
			if a.log != nil {
				return nil
			}
			logger, err := newLogger(a.v.GetBool("debug"))
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			a.log = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	pf.String("data", dataset.Builtin, `dataset: "builtin", a .json/.csv/.hcl file, or an http(s) URL`)
	pf.Bool("include-aggregate-row", false, `sum the "Total" row into totals and charts like any other agency`)
	pf.Bool("ehr-pie", false, "draw EHR Signed as a per-agency distribution pie")
	pf.Bool("debug", false, "development logging")
	bindFlags(a.v, pf, map[string]string{
		"data":                  "data",
		"include_aggregate_row": "include-aggregate-row",
		"ehr_pie":               "ehr-pie",
		"debug":                 "debug",
	})

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newReportCmd(a))
	root.AddCommand(newSummaryCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newInspectCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// bindFlags binds config keys to flag names. A missing flag is a
// programming error.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// loadTable loads the configured dataset, validates it and logs any
// inconsistencies found in it.
func (a *app) loadTable(ctx context.Context) (*metrics.Table, error) {
	source := a.settings().Data
	records, err := dataset.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	t, err := metrics.BuildTable(records)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", source, err)
	}

	for _, m := range metrics.CheckAggregateRow(t) {
		a.log.Warn("aggregate row disagrees with agency rows",
			zap.String("metric", string(m.Metric)),
			zap.Int64("declared", m.Declared),
			zap.Int64("computed", m.Computed))
	}
	for _, d := range metrics.NearDuplicates(t) {
		a.log.Warn("possible duplicate agency",
			zap.String("first", d.First),
			zap.String("second", d.Second),
			zap.Int("first_row", d.FirstRow),
			zap.Int("second_row", d.SecondRow))
	}

	a.log.Info("dataset loaded",
		zap.String("source", source),
		zap.Int("rows", t.Len()),
		zap.Int("fields", len(t.Fields())))
	return t, nil
}

// dashboard loads the table and builds totals and the standard chart set.
func (a *app) dashboard(ctx context.Context) (*metrics.Table, metrics.CategoryTotals, []*render.Chart, error) {
	t, err := a.loadTable(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	s := a.settings()
	totals := metrics.ComputeTotals(t, !s.IncludeAggregateRow)
	charts, err := render.Dashboard(t, totals, s.renderOptions())
	if err != nil {
		return nil, nil, nil, err
	}
	return t, totals, charts, nil
}
