package cmd

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/enginepost/tabulate/tab"
)

// infoCmd prints a summary of a table directory: axes, order, fields.
var infoCmd = &cobra.Command{
	Use:   "info <dir>",
	Short: "Summarize a tabulation directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := tab.ReadCollection(args[0], tab.ReadOptions{})
		if err != nil {
			logrus.Fatalf("reading %s: %v", args[0], err)
		}

		fmt.Printf("path:   %s\n", c.Path())
		fmt.Printf("order:  %s\n", strings.Join(c.Order(), " "))
		fmt.Printf("shape:  %v (%d cells)\n", c.Shape(), c.Size())
		names := c.AxisNames()
		ranges := c.Ranges()
		for _, key := range c.Order() {
			samples := ranges[key]
			fmt.Printf("axis %s (%s): %d samples in [%v, %v]\n",
				key, names[key], len(samples), samples[0], samples[len(samples)-1])
		}
		files := c.Files()
		for _, name := range c.Fields() {
			fmt.Printf("field %s -> constant/%s\n", name, files[name])
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
