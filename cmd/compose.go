package cmd

import (
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/enginepost/tabulate/tab"
)

// composeCmd builds a tabulation directory from a YAML build spec.
var composeCmd = &cobra.Command{
	Use:   "compose <spec.yaml>",
	Short: "Build and write a tabulation directory from a YAML spec",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := tab.LoadTableSpec(args[0])
		if err != nil {
			logrus.Fatal(err)
		}
		c, err := spec.Build(filepath.Dir(args[0]))
		if err != nil {
			logrus.Fatalf("building collection: %v", err)
		}

		path := c.Path()
		if outPath != "" {
			path = outPath
		}
		if path == "" {
			logrus.Fatal("no output path: set 'path' in the spec or pass --out")
		}
		if err := c.Write(tab.WriteOptions{Path: path, Binary: binary || spec.Binary}); err != nil {
			logrus.Fatalf("writing %s: %v", path, err)
		}
		logrus.Infof("wrote %d fields to %s", len(c.Fields()), path)
	},
}

func init() {
	composeCmd.Flags().StringVar(&outPath, "out", "", "Output directory (overrides the spec's path)")
	composeCmd.Flags().BoolVar(&binary, "binary", false, "Write binary scalarList bodies")
	rootCmd.AddCommand(composeCmd)
}
