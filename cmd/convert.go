package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/enginepost/tabulate/tab"
)

// convertCmd reads a table directory and rewrites it elsewhere, switching
// the scalarList body encoding if asked.
var convertCmd = &cobra.Command{
	Use:   "convert <dir>",
	Short: "Rewrite a tabulation directory (ascii or binary bodies)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if outPath == "" {
			logrus.Fatal("--out is required")
		}
		c, err := tab.ReadCollection(args[0], tab.ReadOptions{})
		if err != nil {
			logrus.Fatalf("reading %s: %v", args[0], err)
		}
		c.SetWritable(true)
		if err := c.Write(tab.WriteOptions{Path: outPath, Binary: binary}); err != nil {
			logrus.Fatalf("writing %s: %v", outPath, err)
		}
		logrus.Infof("wrote %d fields to %s", len(c.Fields()), outPath)
	},
}

func init() {
	convertCmd.Flags().StringVar(&outPath, "out", "", "Output directory")
	convertCmd.Flags().BoolVar(&binary, "binary", false, "Write binary scalarList bodies")
	rootCmd.AddCommand(convertCmd)
}
