package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"mandalart/internal/mutate"
)

func newOGCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "og",
		Short: "Manage share (Open Graph) images",
	}

	var all bool
	var concurrency int
	regenCmd := &cobra.Command{
		Use:   "regenerate [id...]",
		Short: "Re-render share images",
		Example: strings.TrimSpace(`
mandalart og regenerate --all
mandalart og regenerate <id> <id> --concurrency 2
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return writeErr(cmd, errors.New("pass mandalart ids or --all"))
			}
			e, err := openEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			res, err := e.svc.RegenerateOGImages(cmd.Context(), args, concurrency)
			if err != nil {
				return writeErr(cmd, err)
			}
			hints := []string{}
			if len(res.Failed) > 0 {
				hints = append(hints, "mandalart --log-level debug og regenerate <id>")
			}
			return writeOut(cmd, app, map[string]any{"data": res, "_hints": hints})
		},
	}
	regenCmd.Flags().BoolVar(&all, "all", false, "Regenerate every mandalart")
	regenCmd.Flags().IntVar(&concurrency, "concurrency", mutate.DefaultRegenerateConcurrency, "Parallel renders")

	cmd.AddCommand(regenCmd)
	return cmd
}
