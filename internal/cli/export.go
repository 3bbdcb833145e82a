package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/gestiontall/taller/internal/config"
	"github.com/gestiontall/taller/internal/infra/logger"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the Excel report (inventory, clients, orders) to a file",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "taller.xlsx", "Output path for the workbook")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.App.Env)

	ctx := context.Background()
	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}

	if err := a.exporter.SaveAs(ctx, exportOut); err != nil {
		return err
	}
	log.Info("report written", "path", exportOut)
	return nil
}
