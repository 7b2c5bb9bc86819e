package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/riding/refine"
	"github.com/katalvlaran/riding/session"
)

// app carries what every subcommand needs after the root pre-run.
type app struct {
	configPath string
	cfg        *Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "riding",
		Short: "Riding hydrogen constraints for crystal structure refinement",
		Long: `riding places hydrogen atoms geometrically on their parent atoms,
reports the constraint order and runs demonstration refinement cycles
driven by the bond restraints of a session file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, a.configPath)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./riding.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "text", "log format: text or json")
	root.PersistentFlags().Int("parallelism", 1, "goroutines per constraint level")

	root.AddCommand(newOrderCmd(a), newPlaceCmd(a), newCycleCmd(a))

	return root
}

// build loads the session at path and returns its placed refinement.
func (a *app) build(path string) (*session.Session, *refine.Refinement, error) {
	s, err := session.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	ref, err := s.Build(refine.WithLogger(a.logger), refine.WithParallelism(a.cfg.Parallelism))
	if err != nil {
		return nil, nil, err
	}

	return s, ref, nil
}

// save writes the captured state of ref to out when out is set.
func (a *app) save(out string, ref *refine.Refinement) error {
	if out == "" {
		return nil
	}
	if err := session.SaveFile(out, session.Capture(ref)); err != nil {
		return err
	}
	a.logger.Info("session saved", "path", out)

	return nil
}
