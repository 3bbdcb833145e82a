// Package cli wires the taller commands: serve runs the HTTP service,
// export writes the Excel report.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgPath  string
	seedDemo bool
)

var rootCmd = &cobra.Command{
	Use:   "taller",
	Short: "Jewelry workshop management core",
	Long: `taller tracks gram-denominated inventory, dual-currency client debt,
recipe-based production orders and per-step worked time for a jewelry
workshop.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config/example.yaml", "Path to the yaml config file")
	rootCmd.PersistentFlags().BoolVar(&seedDemo, "seed", false, "Load the demo dataset on startup")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
