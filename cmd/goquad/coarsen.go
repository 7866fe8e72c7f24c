package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2x3systems/quadpattern/libquad/coarse"
	"github.com/2x3systems/quadpattern/libquad/meshio"
	"github.com/2x3systems/quadpattern/libquad/strip"
)

var coarsenCmd = &cobra.Command{
	Use:   "coarsen <dense-in> <coarse-out>",
	Short: "Extracts the coarse pattern of a dense quad mesh",
	Long: `
Coarsen traces the singularity polyedges of a dense quad mesh and writes the coarse pattern
they outline.  The strip densities found are printed as "strip: density".
`,
	Args: cobra.ExactArgs(2),
	RunE: runCoarsen,
}

func runCoarsen(cmd *cobra.Command, args []string) error {
	ifs, err := meshio.Load(args[0])
	if err != nil {
		return err
	}
	poles, err := polesFromConf()
	if err != nil {
		return err
	}
	opts := optsFromConf()
	dense, err := strip.FromIndexedFaceSetWithPoles(ifs, poles, opts.PoleTolerance)
	if err != nil {
		return err
	}
	cm, err := coarse.FromQuadMesh(dense, opts)
	if err != nil {
		return err
	}

	out, _ := cm.ToIndexedFaceSet()
	if err = meshio.Save(args[1], out); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d vertices, %d faces, %d strips\n", cm.NumVertices(), cm.NumFaces(), cm.NumStrips())
	for _, sid := range cm.Strips() {
		d, _ := cm.StripDensity(sid)
		fmt.Fprintf(w, "%d: %d\n", sid, d)
	}
	return nil
}
