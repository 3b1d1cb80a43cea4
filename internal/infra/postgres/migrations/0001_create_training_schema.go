package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_training_schema.sql
var createTrainingSchemaSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createTrainingSchemaSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`
				DROP TABLE IF EXISTS user_achievements;
				DROP TABLE IF EXISTS achievements;
				DROP TABLE IF EXISTS certificates;
				DROP TABLE IF EXISTS test_results;
				DROP TABLE IF EXISTS tests;
				DROP TABLE IF EXISTS questions;
				DROP TABLE IF EXISTS users;
			`)
			return err
		},
	)
}
