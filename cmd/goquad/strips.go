package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2x3systems/quadpattern/libquad/mesh"
)

var stripsCmd = &cobra.Command{
	Use:   "strips <mesh-in>",
	Short: "Lists the strips of a quad mesh",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := loadCoarse(args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, sid := range cm.Strips() {
			s, _ := cm.Strip(sid)
			var b strings.Builder
			for i, e := range s.Edges {
				if i > 0 {
					b.WriteByte(' ')
				}
				fmt.Fprintf(&b, "%d-%d", e.U, e.V)
			}
			kind := "open"
			if s.Closed {
				kind = "closed"
			}
			fmt.Fprintf(w, "strip %d (%s, %d faces): %s\n", sid, kind, len(s.Faces), b.String())
		}
		return nil
	},
}

var indexCmd = &cobra.Command{
	Use:   "index <mesh-in>",
	Short: "Prints the index of each singular vertex and the index sum",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := loadCoarse(args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, v := range cm.Singularities() {
			idx, err := mesh.VertexIndex(cm.Mesh, v)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%d: %g\n", v, idx)
		}
		sum, err := mesh.IndexSum(cm.Mesh)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "sum: %g\n", sum)
		return nil
	},
}
