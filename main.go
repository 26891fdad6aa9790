package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/wildstyl3r/lxgata"
	"github.com/wildstyl3r/rzpic/internal/config"
	"github.com/wildstyl3r/rzpic/internal/model"
	"github.com/wildstyl3r/rzpic/internal/output"
	"github.com/wildstyl3r/rzpic/internal/utils"
)

var (
	configFile string
	verbose    bool
	threads    int
	snapshots  bool
	dataFlags  *output.DataFlags

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "rzpic",
	Short: "Axisymmetric particle-in-cell model of an ion source",
	Long: `rzpic runs every model of a TOML configuration: ions produced by electron
impact are pushed through the self-consistent potential of the source on an
r-z grid, with Boltzmann electrons. Final fields and the report history are
saved as CSV files in OutputDir.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configFile, "input", "i", "config", "model configuration in toml format")
	flags.BoolVarP(&verbose, "verbose", "v", false, "print debug output")
	flags.IntVarP(&threads, "threads", "t", runtime.NumCPU(), "worker goroutines per model")
	flags.BoolVar(&snapshots, "snapshots", false, "save density and potential heatmaps at every report")
	dataFlags = output.NewDataFlags(flags)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	startTime := time.Now()

	cfg, meta, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}
	outputPath := ""
	if cfg.OutputDir != "" && cfg.OutputDir != "." {
		outputPath = cfg.OutputDir + "/"
	}
	dataFlags.SetOutputPath(outputPath)

	names := make([]string, 0, len(cfg.Models))
	for name := range cfg.Models {
		names = append(names, name)
	}

	var summary utils.CSV
	var errs []error
	for _, name := range utils.SortNatural(names) {
		row, err := runModel(ctx, name, &cfg, &meta)
		if errors.Is(err, context.Canceled) {
			return err
		}
		if err != nil {
			log.WithField("model", name).Error(err)
			errs = append(errs, err)
			continue
		}
		summary = append(summary, row)
	}

	if len(summary) > 0 {
		columns := []string{"model", "steps", "particles", "mean particles", "injected", "removed", "phi_min (V)", "phi_max (V)", "n_max (m^-3)", "k (m^3 s^-1)"}
		if err := utils.WriteAsCSV(summary, false, dataFlags.GetOutputPath(), "summary", configFile, columns); err != nil {
			errs = append(errs, err)
		}
	}
	log.Infof("Elapsed time: %v", time.Since(startTime))
	return errors.Join(errs...)
}

func runModel(ctx context.Context, name string, cfg *config.Config, meta *toml.MetaData) ([]string, error) {
	parameters := cfg.Models[name]
	if err := parameters.Unify(name, cfg, meta); err != nil {
		return nil, err
	}
	parameters.SetVerbosity(verbose)
	parameters.SetThreads(threads)
	if parameters.CrossSections != "" {
		crossSections, err := lxgata.LoadCrossSections(parameters.CrossSections)
		if err != nil {
			return nil, fmt.Errorf("invalid cross section file: %w", err)
		}
		parameters.SetCrossSectionsData(&crossSections)
	}

	history := &model.History{}
	reporters := []model.Reporter{model.LogReporter{Log: log}, history}
	if snapshots {
		reporters = append(reporters, output.NewHeatmaps(dataFlags.GetOutputPath(), parameters.MakeDir))
	}
	m, err := model.New(name, parameters, log, nil, reporters...)
	if err != nil {
		return nil, err
	}
	if err := m.Run(ctx); err != nil {
		return nil, err
	}
	if err := output.NewDataExtractor(m, history).Save(name, dataFlags, log); err != nil {
		return nil, err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }
	return []string{
		name,
		strconv.Itoa(m.CurrentStep()),
		strconv.Itoa(m.Particles.Len()),
		format(history.MeanParticles()),
		strconv.Itoa(m.TotalInjected),
		strconv.Itoa(m.TotalRemoved),
		format(m.Phi.Min()),
		format(m.Phi.Max()),
		format(m.Den.Max()),
		format(m.RateCoefficient),
	}, nil
}
