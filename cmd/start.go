package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"attendance-reconciler/core/config"
	"attendance-reconciler/core/database"
	"attendance-reconciler/core/loader"
	"attendance-reconciler/core/logger"
	"attendance-reconciler/core/middleware/auth"
	"attendance-reconciler/core/middleware/rayid"
	"attendance-reconciler/core/storage"
	"attendance-reconciler/feature/integrity"
	"attendance-reconciler/feature/roster"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @title Attendance Reconciler API
// @version 1.0
// @description API for reconciling attendance workbooks.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the attendance reconciler server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
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

		// 3. Connect to Database (Optional, enables run history)
		var db *gorm.DB
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed, run history disabled", zap.Error(err))
		} else {
			db = conn
			logg.Info("Connected to history database", zap.String("database", cfg.Database.Name))
		}

		// 4. Initialize Storage
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             cfg.Server.BodyLimit(),
		})

		// 5. Register Features
		rosterFeature := roster.NewFeature(store, cfg.Storage, cfg.Reconcile, logg, db)
		mgr := loader.NewManager()
		mgr.Register(rosterFeature)
		mgr.Register(integrity.NewFeature(store, cfg.Storage, logg, db))

		if rosterFeature.Service().HistoryEnabled() {
			if err := rosterFeature.Service().MigrateHistory(context.Background()); err != nil {
				logg.Fatal("Failed to migrate history tables", zap.Error(err))
			}
		}

		// Middleware: ray id first so every log line is traceable
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

		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
