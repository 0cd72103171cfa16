package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/bugzilla-recovery/internal/survey"
)

func newTypesCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types <archive-or-directory>",
		Short: "List the notification categories present in archives",
		Long: `Report every distinct X-Bugzilla-Type value found in an mbox file or a
directory of archives, with its message count and ingestion policy.
Nothing is written to the database.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archives, err := openArchives(args[0])
			if err != nil {
				return err
			}
			defer func() {
				for _, a := range archives {
					_ = a.Close()
				}
			}()

			counts, err := survey.Categories(cmd.Context(), archives)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderCategories(counts))
			return nil
		},
	}
}
