package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"record-collection/core/config"
	"record-collection/core/loader"
	"record-collection/core/logger"
	"record-collection/core/middleware/auth"
	"record-collection/core/middleware/rayid"
	"record-collection/core/transport"
	"record-collection/feature/records"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedFlag string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the record collection server",
	Long: `Starts the HTTP server hosting the configured collection. The collection is
seeded from --seed when given and fetched once through the transport when one
is configured.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		// 3. Build the collection and its transport
		coll, dispatcher, err := buildCollection(ctx, cfg, logg)
		if err != nil {
			logg.Fatal("Failed to build collection", zap.Error(err))
		}
		feature := records.NewFeature(coll, dispatcher, logg, records.WithDriftTTL(cfg.Collection.DriftTTL()))

		if seedFlag != "" {
			seed, err := loadSeed(seedFlag)
			if err != nil {
				logg.Fatal("Failed to load seed", zap.Error(err))
			}
			if _, err := feature.Service().Set(seed, records.SetFlags{Add: true, Remove: true, Merge: true, At: -1}); err != nil {
				logg.Fatal("Failed to apply seed", zap.Error(err))
			}
			logg.Info("Collection seeded", zap.String("file", seedFlag), zap.Int("records", coll.Len()))
		}

		if kind := strings.ToLower(cfg.Transport.Kind); kind != "" && kind != transport.KindNone {
			if err := feature.Service().Fetch(ctx, false); err != nil {
				logg.Warn("Initial fetch failed", zap.Error(err))
			}
		}

		// 4. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 5. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(feature)

		// RayID first so every later log line carries it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 6. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout()); err != nil {
			logg.Error("Server shutdown failed", zap.Error(err))
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&seedFlag, "seed", "", "YAML file with records to load at startup")
	RootCmd.AddCommand(serveCmd)
}
