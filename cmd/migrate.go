package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Settj76/ecom/db"
	"github.com/Settj76/ecom/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCmd() *cobra.Command {
	var mongoURI string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy the activity log and carts from MongoDB into the SQLite store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cfg.DatabaseType != config.SQLite {
				return fmt.Errorf("migrate writes to SQLite; set DATABASE_TYPE=sqlite")
			}
			if mongoURI == "" {
				mongoURI = cfg.MongoURI
			}
			if mongoURI == "" {
				return fmt.Errorf("MONGODB_URI is not set")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			mongoClient, err := db.ConnectToMongo(ctx, mongoURI, logger)
			if err != nil {
				return err
			}
			defer mongoClient.Disconnect(context.Background())

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := db.Migrate(ctx,
				db.MongoSource{Client: mongoClient, Database: cfg.DatabaseName},
				a.factory.NewEventLogRepository(),
				a.factory.NewCartRepository(),
				logger)
			if err != nil {
				return err
			}
			logger.Info("SQLite store is ready", zap.String("path", cfg.SQLitePath))
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d event logs and %d cart lines (%d skipped)\n",
				stats.EventLogs, stats.CartLines, stats.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "source MongoDB URI (default MONGODB_URI)")
	return cmd
}
