package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"mandalart/internal/format"
	"mandalart/internal/model"
)

func newUpdateCmd(app *App) *cobra.Command {
	var from string
	var name string
	var public bool
	var tags []string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a mandalart you created (owner only)",
		Example: strings.TrimSpace(`
mandalart update <id> --from goals.yaml
mandalart update <id> --public=false
mandalart update <id> --name "Sam" --tag health --tag focus
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.MandalartPatch
			if strings.TrimSpace(from) != "" {
				doc, err := format.ReadGridFile(from, cmd.InOrStdin())
				if err != nil {
					return writeErr(cmd, err)
				}
				g, err := doc.Grid()
				if err != nil {
					return writeErr(cmd, err)
				}
				patch.Grid = &g
				patch.IsPublic = doc.IsPublic
				if doc.DisplayName != "" {
					patch.UserDisplayName = &doc.DisplayName
				}
				if doc.Tags != nil {
					patch.Tags = &doc.Tags
				}
			}
			if cmd.Flags().Changed("public") {
				patch.IsPublic = &public
			}
			if cmd.Flags().Changed("name") {
				n := strings.TrimSpace(name)
				patch.UserDisplayName = &n
			}
			if cmd.Flags().Changed("tag") {
				patch.Tags = &tags
			}
			if patch.Empty() {
				return writeErr(cmd, errors.New("nothing to update (use --from, --public, --name or --tag)"))
			}

			e, err := openEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()
			ctx := cmd.Context()

			u, err := e.cliUser(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			m, err := e.svc.UpdateMandalart(ctx, u.ID, args[0], patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   m,
				"_hints": []string{"mandalart show " + m.ID},
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Replace the grid (and any metadata in the file) from a JSON/YAML document")
	cmd.Flags().BoolVar(&public, "public", true, "Show in the public gallery")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Replace the tags (repeatable)")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a mandalart you created (owner only)",
		Long: strings.TrimSpace(`
Deletes the mandalart and its share image. Mandalarts owned by someone else
can only be removed through a delete request (see request-delete).
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()
			ctx := cmd.Context()

			u, err := e.cliUser(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := e.svc.DeleteMandalart(ctx, u.ID, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"id": args[0], "deleted": true},
				"_hints": []string{"mandalart list --mine"},
			})
		},
	}
}
