package cmd

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/enginepost/tabulate/tab"
)

var axisSelections []string // axis=v1,v2 selections, repeatable

// sliceCmd extracts a sub-grid by exact sample values per axis.
var sliceCmd = &cobra.Command{
	Use:   "slice <dir>",
	Short: "Extract a sub-grid by sample values and write it elsewhere",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if outPath == "" {
			logrus.Fatal("--out is required")
		}
		ranges := make(map[string][]float64, len(axisSelections))
		for _, sel := range axisSelections {
			key, list, ok := strings.Cut(sel, "=")
			if !ok {
				logrus.Fatalf("invalid --axis %q, expected axis=v1,v2,...", sel)
			}
			for _, s := range strings.Split(list, ",") {
				v, err := strconv.ParseFloat(s, 64)
				if err != nil {
					logrus.Fatalf("invalid sample %q for axis %s", s, key)
				}
				ranges[key] = append(ranges[key], v)
			}
		}
		if len(ranges) == 0 {
			logrus.Fatal("at least one --axis selection is required")
		}

		c, err := tab.ReadCollection(args[0], tab.ReadOptions{})
		if err != nil {
			logrus.Fatalf("reading %s: %v", args[0], err)
		}
		sliced, err := c.SliceRanges(ranges)
		if err != nil {
			logrus.Fatalf("slicing: %v", err)
		}
		sliced.SetWritable(true)
		if err := sliced.Write(tab.WriteOptions{Path: outPath, Binary: binary}); err != nil {
			logrus.Fatalf("writing %s: %v", outPath, err)
		}
		logrus.Infof("wrote sliced table (shape %v) to %s", sliced.Shape(), outPath)
	},
}

func init() {
	sliceCmd.Flags().StringVar(&outPath, "out", "", "Output directory")
	sliceCmd.Flags().BoolVar(&binary, "binary", false, "Write binary scalarList bodies")
	sliceCmd.Flags().StringArrayVar(&axisSelections, "axis", nil, "Axis selection axis=v1,v2,... (repeatable)")
	rootCmd.AddCommand(sliceCmd)
}
