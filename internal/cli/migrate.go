package cli

import (
	"database/sql"
	"fmt"

	"eventmanager/config"
	"eventmanager/internal/repository/postgres"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply the embedded SQL migrations to DATABASE_URL. Each migration runs once;
applied names are recorded in schema_migrations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := openDB(cfg.DBUrl)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := postgres.ApplyMigrations(cmd.Context(), db, postgres.Migrations())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				_, err = fmt.Fprintln(out, "database is up to date")
				return err
			}
			for _, name := range applied {
				if _, err := fmt.Fprintf(out, "applied %s\n", name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
