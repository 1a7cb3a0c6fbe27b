package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchsync/internal/app"
	"github.com/kailas-cloud/searchsync/internal/usecase/query"
)

func newCompleteCmd(flags *globalFlags) *cobra.Command {
	var limit int
	var conditions map[string]string

	cmd := &cobra.Command{
		Use:   "complete <type> <prefix>",
		Short: "Run a prefix-match query against a type's index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(cmd.Context(), func(a *app.App) error {
				docs, err := a.Query.PrefixMatch(cmd.Context(), args[0], args[1], query.Options{
					Limit:      limit,
					Conditions: conditions,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for i := range docs {
					d := &docs[i]
					line := fmt.Sprintf("%s\t%s\t%d", d.ID(), d.Title(), d.Score())
					if aliases := d.Aliases(); len(aliases) > 0 {
						line += "\t" + strings.Join(aliases, ",")
					}
					_, _ = fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", query.DefaultLimit, "Maximum number of results")
	cmd.Flags().StringToStringVar(&conditions, "cond", nil, "Condition filter field=value (repeatable)")
	return cmd
}
