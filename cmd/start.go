package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"challan-reconciler/core/config"
	"challan-reconciler/core/extractor"
	"challan-reconciler/core/loader"
	"challan-reconciler/core/logger"
	"challan-reconciler/core/middleware/auth"
	"challan-reconciler/core/middleware/rayid"
	"challan-reconciler/core/middleware/requestlog"
	"challan-reconciler/core/session"

	"challan-reconciler/feature/archive"
	"challan-reconciler/feature/inbound"
	"challan-reconciler/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "challan-reconciler/docs/swagger"
)

// @title Challan Reconciler API
// @version 1.0
// @description API for reconciling delivery challans against scanned product stickers.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

const janitorInterval = time.Minute

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the reconciliation server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Archive backends are optional
		db := openDatabase(cfg, logg)
		client := openStorage(ctx, cfg, logg)
		archiver := archive.NewService(db, client, cfg.Storage.Bucket, logg)
		if db != nil {
			if err := archiver.Migrate(); err != nil {
				logg.Fatal("Failed to migrate archive tables", zap.Error(err))
			}
		}

		var ex extractor.Extractor
		gemini, err := openExtractor(ctx, cfg, logg)
		if err != nil {
			logg.Fatal("Failed to create extractor", zap.Error(err))
		}
		if gemini != nil {
			defer gemini.Close()
			ex = gemini
			logg.Info("Extractor ready", zap.String("model", cfg.Extractor.Model), zap.String("region", cfg.Extractor.Region))
		}

		store := session.NewStore(cfg.Session)
		go store.RunJanitor(ctx, janitorInterval, logg)

		svc := inbound.NewService(store, ex, archiver, cfg.Extractor.Concurrency, logg)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             cfg.Server.BodyLimit(),
			ReadTimeout:           cfg.Server.ReadTimeout(),
		})

		mgr := loader.NewManager(logg)
		mgr.Register(inbound.NewFeature(svc, logg))
		mgr.Register(archive.NewFeature(archiver, logg))
		mgr.Register(integrity.NewFeature(client, cfg.Storage.Bucket, logg, db))

		// RayID must be first to trace everything
		app.Use(rayid.New())
		app.Use(requestlog.New(logg))

		// Swagger stays public
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: []string{"/swagger"}}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			errCh <- app.Listen(cfg.Server.Address())
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		case <-ctx.Done():
		}

		logg.Info("Shutting down server...", zap.Int("open_sessions", store.Len()))
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout()); err != nil {
			logg.Error("Server shutdown failed", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
