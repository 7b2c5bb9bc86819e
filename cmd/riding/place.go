package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/riding/constraints"
)

func newPlaceCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "place <session>",
		Short: "Place every riding hydrogen and print its Cartesian site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ref, err := a.build(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			st := ref.Structure
			for _, c := range ref.Set.Constraints() {
				if c.State() == constraints.Disabled {
					continue
				}
				for _, h := range c.Dependents() {
					x := st.CartesianSite(h)
					fmt.Fprintf(w, "%-6s %10.4f %10.4f %10.4f\n", st.Scatterers[h].Label, x.X, x.Y, x.Z)
				}
			}

			return a.save(out, ref)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the placed session here")

	return cmd
}
