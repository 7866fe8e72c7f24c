package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"

	"github.com/2x3systems/quadpattern/goquad"
	"github.com/2x3systems/quadpattern/libquad/meshio"
)

var densifyCmd = &cobra.Command{
	Use:   "densify <coarse-in> <dense-out>",
	Short: "Generates the dense mesh of a coarse pattern",
	Long: `
Densify subdivides every strip of the coarse pattern and writes the resulting dense mesh.
Densities start at 1, are then set from --target (if given), then --density (if given),
and finally each --edge u,v=d sets the density of the strip containing edge (u, v).
With --collapse, pseudo-quads are written as triangles and the output index of each pole is
printed as "pole <dense id> => <index>".
`,
	Args: cobra.ExactArgs(2),
	RunE: runDensify,
}

func init() {
	flags := densifyCmd.Flags()
	flags.Int("density", 0, "Density applied to every strip.")
	flags.Float64("target", 0, "Target edge length used to derive each strip's density.")
	flags.StringArray("edge", nil, "Strip density given as u,v=d for the strip containing edge (u, v); repeatable.")
	flags.Bool("collapse", false, "Write pseudo-quads as triangles.")
}

func runDensify(cmd *cobra.Command, args []string) error {
	cm, err := loadCoarse(args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if target, _ := flags.GetFloat64("target"); flags.Changed("target") {
		if err = cm.SetStripsDensityTarget(target); err != nil {
			return err
		}
	}
	if d, _ := flags.GetInt("density"); flags.Changed("density") {
		if err = cm.SetStripsDensity(d); err != nil {
			return err
		}
	}
	edges, _ := flags.GetStringArray("edge")
	for _, spec := range edges {
		var u, v goquad.VtxID
		var d int
		if _, err = fmt.Sscanf(spec, "%d,%d=%d", &u, &v, &d); err != nil {
			return errors.Errorf("bad --edge %q: expected u,v=d", spec)
		}
		sid, err := cm.EdgeStrip(u, v)
		if err != nil {
			return err
		}
		if err = cm.SetStripDensity(sid, d); err != nil {
			return err
		}
	}

	dense, err := cm.Densify()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	var ifs *goquad.IndexedFaceSet
	if collapse, _ := flags.GetBool("collapse"); collapse {
		var index map[goquad.VtxID]int
		if ifs, index, err = dense.ToCollapsedIndexedFaceSet(); err != nil {
			return err
		}
		for _, v := range dense.Vertices() {
			if dense.IsPole(v) {
				fmt.Fprintf(w, "pole %d => %d\n", v, index[v])
			}
		}
	} else {
		ifs, _ = dense.ToIndexedFaceSet()
	}
	if err = meshio.Save(args[1], ifs); err != nil {
		return err
	}

	klog.V(1).Infof("wrote %s", args[1])
	fmt.Fprintf(w, "%d strips, %d coarse faces => %d vertices, %d faces\n",
		cm.NumStrips(), cm.NumFaces(), dense.NumVertices(), dense.NumFaces())
	return nil
}
