package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchsync/internal/app"
)

func newRebuildCmd(flags *globalFlags) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "rebuild [type...]",
		Short: "Rebuild search indexes from the record store",
		Long: `Rebuild reindexes every record of the given types, or of every
configured type when none are given. One dot is printed per record.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return flags.withApp(cmd.Context(), func(a *app.App) error {
				if !quiet {
					a.Rebuild.WithProgress(func(int) {
						_, _ = fmt.Fprint(out, ".")
					})
				}

				sums, err := a.RebuildAll(cmd.Context(), args)
				if !quiet && len(sums) > 0 {
					_, _ = fmt.Fprintln(out)
				}
				for _, s := range sums {
					if !s.Supported {
						_, _ = fmt.Fprintf(out, "%s: source does not support rebuild\n", s.Type)
						continue
					}
					_, _ = fmt.Fprintf(out, "%s: %d records in %s\n", s.Type, s.Indexed, s.Duration.Round(time.Millisecond))
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print progress dots")
	return cmd
}
