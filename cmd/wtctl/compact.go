package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/widetable/widetable-db/internal/compaction"
	"github.com/widetable/widetable-db/internal/store"
)

func newCompactCmd() *cobra.Command {
	var gcGrace int64

	cmd := &cobra.Command{
		Use:   "compact",
		Short: "merge every segment in the data directory into one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dataDir()
			if err != nil {
				return err
			}
			st, err := store.New(&store.Config{
				FamilyName: familyName(),
				Dir:        dir,
			})
			if err != nil {
				return err
			}
			if err := st.Start(); err != nil {
				return err
			}

			before := st.Readers()
			if len(before) < 2 {
				fmt.Fprintf(cmd.OutOrStdout(), "nothing to do: %d segment(s)\n", len(before))
				return nil
			}

			compactor, err := compaction.New(&compaction.Config{
				Store:          st,
				GCGraceSeconds: gcGrace,
			})
			if err != nil {
				return err
			}
			if err := compactor.Compact(before, compaction.MaxGCBefore(gcGrace)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "compacted %d segment(s) into %d\n",
				len(before), len(st.Readers()))
			return nil
		},
	}

	cmd.Flags().Int64Var(&gcGrace, "gc-grace", 86400,
		"seconds a tombstone must age before it may be purged")
	return cmd
}
