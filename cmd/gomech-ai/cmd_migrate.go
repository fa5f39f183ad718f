package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/DeyvidJesus/gomech-ai-service/internal/config"
	"github.com/DeyvidJesus/gomech-ai-service/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := store.Open(ctx, store.Options{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseURL}, newLogger())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	health := store.Inspect(ctx, db)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "✅ Schema up to date")
	names := make([]string, 0, len(health.Tables))
	for name := range health.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-22s %d\n", name, health.Tables[name])
	}
	if len(health.MissingTables) > 0 {
		return fmt.Errorf("tables still missing: %v", health.MissingTables)
	}
	return nil
}
