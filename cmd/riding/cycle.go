package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCycleCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "cycle <session>",
		Short: "Run steepest-descent cycles against the session's bond restraints",
		Long: `cycle places the hydrogens, then repeats: restraint gradients, propagation
through the riding constraints, steepest-descent shifts on the free sites and the
auxiliary parameters, re-placement. The target is logged every cycle.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ref, err := a.build(args[0])
			if err != nil {
				return err
			}
			results, err := ref.Run(cmd.Context(), a.cfg.Cycle.Steps, a.cfg.Cycle.StepSize)
			if err != nil {
				return err
			}
			final, err := ref.Target()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(results) > 0 {
				fmt.Fprintf(w, "initial target: %.6g\n", results[0].Target)
			}
			fmt.Fprintf(w, "final target:   %.6g after %d cycles\n", final, len(results))

			return a.save(out, ref)
		},
	}
	cmd.Flags().Int("steps", 10, "number of cycles")
	cmd.Flags().Float64("step-size", 0.01, "steepest-descent step size")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the refined session here")

	return cmd
}
