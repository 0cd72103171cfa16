package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nhle/bugzilla-recovery/internal/source/mbox"
)

func newSplitCmd(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "split <mbox>",
		Short: "Split one large mbox into per-month archives",
		Long: `Copy every message of an mbox file into mail-YYMM files named after its
Date header. Messages without a usable date go to mail-broken. Existing
output files are appended to.

Example:
  bugrecover split --out split/ everything.mbox
  bugrecover extract split/`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := mbox.Open(args[0])
			if err != nil {
				return err
			}
			defer src.Close()

			counts, err := mbox.Split(cmd.Context(), src, outDir, a.logger)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(counts))
			for name := range counts {
				names = append(names, name)
			}
			sort.Strings(names)
			rows := make([]row, 0, len(names))
			for _, name := range names {
				rows = append(rows, row{label: name, value: counts[name]})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderPanel("split "+args[0], rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "split", "output directory")
	return cmd
}
