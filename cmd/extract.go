package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/bugzilla-recovery/internal/ingest"
	"github.com/nhle/bugzilla-recovery/internal/source"
	"github.com/nhle/bugzilla-recovery/internal/source/mbox"
)

func newExtractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <archive-or-directory>",
		Short: "Ingest an mbox archive or a directory of archives",
		Long: `Ingest notification emails from an mbox file, or from every regular file
of a directory in name order, into the database.

The database must already exist; create it with "bugrecover setup".

Example:
  bugrecover extract --db bugs.db split/`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			archives, err := openArchives(args[0])
			if err != nil {
				return err
			}

			driver := ingest.NewDriver(s, a.cfg.Ingest.BatchSize, a.logger)
			stats, runErr := driver.RunAll(cmd.Context(), archives)
			fmt.Fprint(cmd.OutOrStdout(), renderStats(stats))
			return runErr
		},
	}
}

// openArchives opens every archive file under path.
func openArchives(path string) ([]source.Archive, error) {
	files, err := mbox.Expand(path)
	if err != nil {
		return nil, err
	}

	archives := make([]source.Archive, 0, len(files))
	for _, f := range files {
		a, err := mbox.Open(f)
		if err != nil {
			for _, opened := range archives {
				_ = opened.Close()
			}
			return nil, err
		}
		archives = append(archives, a)
	}
	return archives, nil
}
