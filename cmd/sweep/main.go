// Command sweep rebuilds the benchmark programs under several compiler flag
// sets, runs them, and writes the collected timings as CSV, JSON and plots.
package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nvr-ai/go-microbench/report"
	"github.com/nvr-ai/go-microbench/sweep"
)

var logLevel string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sweep",
		Short:         "Run the CPU micro-benchmarks under several compiler flag sets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return errors.Wrapf(err, "invalid log level %q", logLevel)
			}
			log.SetLevel(level)
			log.SetOutput(os.Stderr)
			return nil
		},
	}
	addLogFlags(root.PersistentFlags())

	root.AddCommand(newRunCmd(), newInitCmd(), newParseCmd())
	return root
}

func addLogFlags(fs *pflag.FlagSet) {
	fs.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func newRunCmd() *cobra.Command {
	var configPath, outputDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build and run every program with every variant",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := sweep.DefaultConfig()
			if configPath != "" {
				loaded, err := sweep.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}

			runner, err := sweep.NewRunner(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			samples, err := runner.Run(ctx)
			if err != nil {
				return err
			}
			return writeResults(cfg, samples)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "sweep configuration file")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides the configuration)")
	return cmd
}

func writeResults(cfg *sweep.Config, samples []sweep.Sample) error {
	csvPath := filepath.Join(cfg.OutputDir, "samples.csv")
	if err := sweep.WriteCSV(csvPath, &samples); err != nil {
		return err
	}
	if err := sweep.WriteJSON(filepath.Join(cfg.OutputDir, "samples.json"), samples); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"samples": len(samples),
		"path":    csvPath,
	}).Info("results saved")

	if !cfg.Plot {
		return nil
	}
	for _, pkg := range cfg.Programs {
		program := sweep.ProgramName(pkg)
		path := filepath.Join(cfg.OutputDir, program+".png")
		if err := sweep.Plot(path, samples, program); err != nil {
			if errors.Is(err, sweep.ErrNoSamples) {
				log.WithField("program", program).Warn("nothing to plot")
				continue
			}
			return err
		}
		log.WithField("path", path).Info("plot saved")
	}
	return nil
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default sweep configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "sweep.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := sweep.SaveConfig(sweep.DefaultConfig(), path); err != nil {
				return err
			}
			log.WithField("path", path).Info("configuration saved")
			return nil
		},
	}
}

func newParseCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "parse <stdout-file>",
		Short: "Convert the saved output of a benchmark program to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrapf(err, "failed to open %s", args[0])
			}
			defer f.Close()

			records, err := report.Parse(f)
			if err != nil {
				return err
			}
			if output == "" {
				return report.WriteCSV(cmd.OutOrStdout(), records)
			}
			if err := sweep.WriteCSV(output, &records); err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"records": len(records),
				"path":    output,
			}).Info("records saved")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV file (default stdout)")
	return cmd
}
