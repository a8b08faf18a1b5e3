package cmd

import (
	"fmt"
	"os"

	"challan-reconciler/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "challan-reconciler",
	Short: "Challan Reconciler Service",
	Long: `Challan Reconciler compares the goods listed on a delivery challan against
the product stickers scanned at the warehouse and reports shortages and overages.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// "debug" gives ISO8601 timestamps on the console encoder
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
