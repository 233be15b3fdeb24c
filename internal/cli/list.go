package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mandalart/internal/model"
)

func newListCmd(app *App) *cobra.Command {
	var limit int
	var offset int
	var mine bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List public mandalarts, newest first (or your own with --mine)",
		Example: strings.TrimSpace(`
mandalart list
mandalart list --limit 10 --offset 10
mandalart list --mine
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()
			ctx := cmd.Context()

			if limit <= 0 {
				limit = e.cfg.List.PageSize
			}
			var ms []model.Mandalart
			if mine {
				u, err := e.cliUser(ctx)
				if err != nil {
					return writeErr(cmd, err)
				}
				ms, err = e.st.ListByUser(ctx, u.ID, limit, offset)
				if err != nil {
					return writeErr(cmd, err)
				}
			} else {
				ms, err = e.st.ListPublic(ctx, limit, offset)
				if err != nil {
					return writeErr(cmd, err)
				}
			}

			out := make([]model.MandalartSummary, 0, len(ms))
			for _, m := range ms {
				out = append(out, m.Summary())
			}
			hints := []string{}
			if len(out) > 0 {
				hints = append(hints, "mandalart show "+out[0].ID)
			}
			if len(out) == limit {
				next := offset + limit
				hints = append(hints, "mandalart list --limit "+strconv.Itoa(limit)+" --offset "+strconv.Itoa(next))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"mandalarts": out,
					"limit":      limit,
					"offset":     offset,
				},
				"_hints": hints,
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (default from config: list.page_size)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of mandalarts to skip")
	cmd.Flags().BoolVar(&mine, "mine", false, "List mandalarts created from this machine, including private ones")
	return cmd
}
