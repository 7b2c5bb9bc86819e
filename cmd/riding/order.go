package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newOrderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "order <session>",
		Short: "Print the placement order, dependency levels and disabled constraints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ref, err := a.build(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			set := ref.Set
			label := func(i int) string { return ref.Structure.Scatterers[i].Label }

			for l, level := range set.Levels() {
				fmt.Fprintf(w, "level %d:\n", l)
				for _, i := range level {
					c := set.Constraint(i)
					deps := make([]string, 0, len(c.Dependents()))
					for _, h := range c.Dependents() {
						deps = append(deps, label(h))
					}
					fmt.Fprintf(w, "  [%d] %s on %s: %s (%s)\n",
						i, c.Kind(), label(c.Pivot()), strings.Join(deps, " "), c.State())
				}
			}
			disabled := set.Disabled()
			if len(disabled) == 0 {
				fmt.Fprintln(w, "disabled: none")
			} else {
				fmt.Fprintf(w, "disabled: %v\n", disabled)
			}
			fmt.Fprintf(w, "reparametrizations: %d\n", set.ReparamCount())

			return nil
		},
	}
}
