package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/bugzilla-recovery/internal/store"
)

func newSetupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the database and its schema",
		Long: `Create the SQLite database named by --db (or database.path) and apply
every schema migration. Running it again on an existing database only
applies migrations it is missing.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.cfg.Database.Path
			s, err := store.Bootstrap(path)
			if err != nil {
				return fmt.Errorf("bootstrapping %s: %w", path, err)
			}
			if err := s.Close(); err != nil {
				return err
			}

			a.logger.Info("database ready", zap.String("path", path))
			fmt.Fprintf(cmd.OutOrStdout(), "database ready at %s\n", path)
			return nil
		},
	}
}
