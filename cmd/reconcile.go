package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"challan-reconciler/core/config"
	"challan-reconciler/core/export"
	"challan-reconciler/core/extractor"
	"challan-reconciler/core/logger"
	"challan-reconciler/core/reconcile"
	"challan-reconciler/feature/archive"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	challanFile   string
	stickerFiles  []string
	reportFormat  string
	reportOut     string
	archiveReport bool
)

// reconcileCmd reconciles files from disk without running the server.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a challan against sticker records or images",
	Long: `Reconcile a delivery challan against scanned stickers.

The challan and each sticker input may be a JSON file (a record, or an array
of sticker records) or an image, which is sent to the extractor.

Examples:
  # JSON inputs, CSV report on stdout
  reconcile --challan challan.json --stickers stickers.json --format csv

  # Images, Excel report written to a file and archived
  reconcile --challan dc.jpg --stickers s1.jpg --stickers s2.jpg --format xlsx --out report.xlsx --archive`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := export.ParseFormat(reportFormat)
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

		ctx := cmd.Context()
		ex, closeEx, err := lazyExtractor(ctx, cfg, logg, challanFile, stickerFiles)
		if err != nil {
			return err
		}
		defer closeEx()

		challan, err := loadChallan(ctx, ex, challanFile)
		if err != nil {
			return err
		}
		stickers, err := loadStickers(ctx, ex, cfg.Extractor.Concurrency, logg, stickerFiles)
		if err != nil {
			return err
		}

		report, err := reconcile.Reconcile(challan, stickers)
		if err != nil {
			return err
		}
		logg.Info("Reconciliation completed",
			zap.Int("lines", report.Summary.Lines),
			zap.Int("stickers", report.Summary.Stickers),
			zap.Int("shortages", report.Summary.Shortages),
			zap.Int("overages", report.Summary.Overages),
			zap.Int("unmatched", report.Summary.Unmatched),
		)

		if err := writeReport(report, f, reportOut, cmd.OutOrStdout()); err != nil {
			return err
		}

		if archiveReport {
			arc := archive.NewService(openDatabase(cfg, logg), openStorage(ctx, cfg, logg), cfg.Storage.Bucket, logg)
			if !arc.Enabled() {
				return archive.ErrDisabled
			}
			if err := arc.Migrate(); err != nil && !errors.Is(err, archive.ErrNoDatabase) {
				return err
			}
			rec, err := arc.ArchiveReport(ctx, "cli-"+uuid.NewString(), report)
			if err != nil {
				return err
			}
			logg.Info("Report archived", zap.String("id", rec.ID), zap.String("object_key", rec.ObjectKey))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&challanFile, "challan", "", "Challan JSON or image file")
	reconcileCmd.Flags().StringArrayVar(&stickerFiles, "stickers", nil, "Sticker JSON or image file (repeatable)")
	reconcileCmd.Flags().StringVar(&reportFormat, "format", "json", "Report format: json, csv or xlsx")
	reconcileCmd.Flags().StringVar(&reportOut, "out", "", "Write the report to a file instead of stdout")
	reconcileCmd.Flags().BoolVar(&archiveReport, "archive", false, "Archive the report to the configured storage and database")
	_ = reconcileCmd.MarkFlagRequired("challan")
}

// lazyExtractor only connects to the model when an input is an image or PDF.
func lazyExtractor(ctx context.Context, cfg *config.Config, logg *zap.Logger, challan string, stickers []string) (extractor.Extractor, func(), error) {
	noop := func() {}
	needed := extractor.IsDocumentFile(challan)
	for _, s := range stickers {
		needed = needed || extractor.IsDocumentFile(s)
	}
	if !needed {
		return nil, noop, nil
	}

	gemini, err := openExtractor(ctx, cfg, logg)
	if err != nil {
		return nil, noop, err
	}
	if gemini == nil {
		return nil, noop, fmt.Errorf("image and PDF inputs need the extractor: set EXTRACTOR_PROJECT_ID")
	}
	return gemini, func() { _ = gemini.Close() }, nil
}

func loadChallan(ctx context.Context, ex extractor.Extractor, path string) (*reconcile.Challan, error) {
	if extractor.IsDocumentFile(path) {
		img, err := extractor.ReadImageFile(path)
		if err != nil {
			return nil, err
		}
		return ex.ExtractChallan(ctx, img)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return extractor.DecodeChallan(data)
}

// loadStickers keeps the order of the given files. Unreadable images are
// logged and skipped.
func loadStickers(ctx context.Context, ex extractor.Extractor, limit int, logg *zap.Logger, paths []string) ([]reconcile.Sticker, error) {
	var stickers []reconcile.Sticker
	var images []extractor.Image

	flush := func() error {
		if len(images) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, r := range extractor.ExtractStickers(ctx, ex, images, limit) {
			if r.Err != nil {
				logg.Warn("Sticker extraction failed", zap.String("file", r.Name), zap.Error(r.Err))
				continue
			}
			stickers = append(stickers, *r.Sticker)
		}
		images = nil
		return nil
	}

	for _, p := range paths {
		if extractor.IsDocumentFile(p) {
			img, err := extractor.ReadImageFile(p)
			if err != nil {
				return nil, err
			}
			images = append(images, img)
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		batch, err := extractor.DecodeStickers(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		stickers = append(stickers, batch...)
	}

	if err := flush(); err != nil {
		return nil, err
	}
	return stickers, nil
}

func writeReport(report *reconcile.Report, f export.Format, out string, stdout io.Writer) error {
	var buf bytes.Buffer
	if err := export.Write(&buf, report, f); err != nil {
		return err
	}
	if out == "" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	return os.WriteFile(out, buf.Bytes(), 0o644)
}
