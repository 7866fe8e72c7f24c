package main

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/2x3systems/quadpattern/goquad"
	"github.com/2x3systems/quadpattern/libquad/coarse"
	"github.com/2x3systems/quadpattern/libquad/meshio"
)

// RootCmd is the goquad command; subcommands are added in init().
var RootCmd = &cobra.Command{
	Use:   "goquad",
	Short: "goquad: coarse quad pattern densification",
	Long: `
goquad reads quad meshes (.obj or .qmsh), identifies their strips and singularities,
and converts between coarse patterns and the dense meshes they describe.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return readConfig()
	},
}

// conf merges (lowest to highest precedence) goquad.yaml, GOQUAD_* environment variables, and flags.
var conf = viper.New()

func init() {
	flags := RootCmd.PersistentFlags()
	flags.String("config", "",
		"Configuration file.  If empty, goquad.yaml is looked for in the working directory.")
	flags.Float64("weld_tol", goquad.DefaultWeldTolerance,
		"Distance under which two generated points are welded into one vertex.")
	flags.Float64("pole_tol", goquad.DefaultPoleTolerance,
		"Distance under which a pole location matches a mesh vertex.")
	flags.Int("workers", 0,
		"Max number of faces densified concurrently (0 for one per CPU).")
	flags.Bool("require_children", false,
		"Fail densification when an edge has no child polyline in the tracked dense mesh.")
	flags.StringArray("pole", nil,
		"Pole location x,y,z; input triangles touching a pole are read as pseudo-quads.  Repeatable.")
	conf.BindPFlags(flags)
	conf.SetEnvPrefix("GOQUAD")
	conf.AutomaticEnv()

	RootCmd.AddCommand(densifyCmd, coarsenCmd, stripsCmd, indexCmd, runCmd)
}

func readConfig() error {
	if cfg := conf.GetString("config"); cfg != "" {
		conf.SetConfigFile(cfg)
	} else {
		conf.SetConfigName("goquad")
		conf.SetConfigType("yaml")
		conf.AddConfigPath(".")
	}

	err := conf.ReadInConfig()
	if _, notFound := err.(viper.ConfigFileNotFoundError); notFound && conf.GetString("config") == "" {
		err = nil
	}
	return errors.Wrap(err, "reading config")
}

func optsFromConf() goquad.Opts {
	opts := goquad.Opts{
		WeldTolerance:       conf.GetFloat64("weld_tol"),
		PoleTolerance:       conf.GetFloat64("pole_tol"),
		Workers:             conf.GetInt("workers"),
		RequireEdgeChildren: conf.GetBool("require_children"),
	}
	return opts.Normalize()
}

func polesFromConf() ([]r3.Vector, error) {
	var poles []r3.Vector
	for _, spec := range conf.GetStringSlice("pole") {
		var pos r3.Vector
		if _, err := fmt.Sscanf(spec, "%g,%g,%g", &pos.X, &pos.Y, &pos.Z); err != nil {
			return nil, errors.Errorf("bad pole %q: expected x,y,z", spec)
		}
		poles = append(poles, pos)
	}
	return poles, nil
}

func loadCoarse(pathname string) (*coarse.CoarseQuadMesh, error) {
	ifs, err := meshio.Load(pathname)
	if err != nil {
		return nil, err
	}
	poles, err := polesFromConf()
	if err != nil {
		return nil, err
	}
	return coarse.FromIndexedFaceSetWithPoles(ifs, poles, optsFromConf())
}
