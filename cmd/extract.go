package cmd

import (
	"encoding/json"
	"fmt"

	"challan-reconciler/core/config"
	"challan-reconciler/core/extractor"
	"challan-reconciler/core/logger"

	"github.com/spf13/cobra"
)

var extractType string

// extractCmd runs the extractor on a single image and prints the record.
var extractCmd = &cobra.Command{
	Use:   "extract [image]",
	Short: "Extract a challan or sticker record from an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docType, err := extractor.ParseDocumentType(extractType)
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logg.Sync()

		gemini, err := openExtractor(cmd.Context(), cfg, logg)
		if err != nil {
			return err
		}
		if gemini == nil {
			return fmt.Errorf("extractor is not configured: set EXTRACTOR_PROJECT_ID")
		}
		defer gemini.Close()

		img, err := extractor.ReadImageFile(args[0])
		if err != nil {
			return err
		}

		var record any
		switch docType {
		case extractor.DocumentChallan:
			record, err = gemini.ExtractChallan(cmd.Context(), img)
		default:
			record, err = gemini.ExtractSticker(cmd.Context(), img)
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	},
}

func init() {
	RootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&extractType, "type", "sticker", "Document type: challan or sticker")
}
