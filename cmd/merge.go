package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/enginepost/tabulate/tab"
)

var (
	mergeOverwrite bool    // Let the second table win in overlapping regions
	mergeFill      float64 // Value for cells present in neither table
)

// mergeCmd concatenates two table directories into one.
var mergeCmd = &cobra.Command{
	Use:   "merge <dirA> <dirB>",
	Short: "Concatenate two tabulation directories over the union of their axes",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if outPath == "" {
			logrus.Fatal("--out is required")
		}
		a, err := tab.ReadCollection(args[0], tab.ReadOptions{})
		if err != nil {
			logrus.Fatalf("reading %s: %v", args[0], err)
		}
		b, err := tab.ReadCollection(args[1], tab.ReadOptions{})
		if err != nil {
			logrus.Fatalf("reading %s: %v", args[1], err)
		}

		opts := tab.ConcatOptions{Overwrite: mergeOverwrite}
		if cmd.Flags().Changed("fill") {
			fill := mergeFill
			opts.Fill = &fill
		}
		merged, err := a.Concat(b, opts)
		if err != nil {
			logrus.Fatalf("merging: %v", err)
		}
		merged.SetWritable(true)
		if err := merged.Write(tab.WriteOptions{Path: outPath, Binary: binary}); err != nil {
			logrus.Fatalf("writing %s: %v", outPath, err)
		}
		logrus.Infof("wrote merged table (shape %v) to %s", merged.Shape(), outPath)
	},
}

func init() {
	mergeCmd.Flags().StringVar(&outPath, "out", "", "Output directory")
	mergeCmd.Flags().BoolVar(&binary, "binary", false, "Write binary scalarList bodies")
	mergeCmd.Flags().BoolVar(&mergeOverwrite, "overwrite", false, "Second table wins in overlapping regions")
	mergeCmd.Flags().Float64Var(&mergeFill, "fill", 0, "Fill value for cells present in neither table")
	rootCmd.AddCommand(mergeCmd)
}
