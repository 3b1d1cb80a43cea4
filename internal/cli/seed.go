package cli

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"safety-training-service/internal/app"
	"safety-training-service/internal/config"
	pgstore "safety-training-service/internal/infra/postgres"
	"safety-training-service/internal/logger"
)

// NewSeedCmd loads the demo question set and the default achievement
// catalog into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var courseID string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed demo questions and default achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			log, err := logger.New(cfg.Log.Mode)
			if err != nil {
				return err
			}
			defer log.Sync()

			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}

			sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
			db := bun.NewDB(sqldb, pgdialect.New())
			defer db.Close()

			store := pgstore.NewStore(db)
			ctx := cmd.Context()
			if err := store.SeedQuestions(ctx, app.FallbackQuestions(courseID)); err != nil {
				return err
			}
			if _, err := store.Catalog(ctx, app.DefaultAchievements()); err != nil {
				return err
			}
			log.Info("seeded demo questions and achievements", "course_id", courseID)
			return nil
		},
	}
	cmd.Flags().StringVar(&courseID, "course", "course-1", "course to seed questions for")
	return cmd
}
