package cli

import (
	"context"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"mandalart/internal/model"
	"mandalart/internal/mutate"
	"mandalart/internal/perm"
	"mandalart/internal/publish"
)

func newShowCmd(app *App) *cobra.Command {
	var asMarkdown bool
	var raw bool
	var includeEmpty bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a mandalart",
		Example: strings.TrimSpace(`
mandalart show 0b4a6c4e-8f0e-4c1e-9a57-8c1b3f0f5d21
mandalart show 0b4a6c4e-8f0e-4c1e-9a57-8c1b3f0f5d21 --markdown
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			m, err := e.visibleMandalart(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			if asMarkdown {
				md := publish.RenderMarkdown(m, publish.RenderOptions{
					IncludeEmpty: includeEmpty,
					BaseURL:      e.cfg.Server.BaseURL,
				})
				if !raw {
					r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
					if err != nil {
						return writeErr(cmd, err)
					}
					if md, err = r.Render(md); err != nil {
						return writeErr(cmd, err)
					}
				}
				_, err := cmd.OutOrStdout().Write([]byte(md))
				return err
			}

			return writeOut(cmd, app, map[string]any{
				"data": m,
				"_hints": []string{
					"mandalart show " + m.ID + " --markdown",
					"mandalart export " + m.ID + " --to ./" + m.ID,
				},
			})
		},
	}

	cmd.Flags().BoolVar(&asMarkdown, "markdown", false, "Print the outline as Markdown instead of the record")
	cmd.Flags().BoolVar(&raw, "raw", false, "With --markdown: print plain Markdown without terminal styling")
	cmd.Flags().BoolVar(&includeEmpty, "include-empty", false, "With --markdown: keep empty themes and details")
	return cmd
}

// visibleMandalart loads id and hides other users' private mandalarts.
func (e *env) visibleMandalart(ctx context.Context, id string) (model.Mandalart, error) {
	id, err := requireArg("mandalart id", id)
	if err != nil {
		return model.Mandalart{}, err
	}
	m, err := e.svc.GetMandalart(ctx, id)
	if err != nil {
		return model.Mandalart{}, err
	}
	u, err := e.cliUser(ctx)
	if err != nil {
		return model.Mandalart{}, err
	}
	if !perm.CanViewMandalart(u.ID, &m, false) {
		return model.Mandalart{}, mutate.NotFoundError{Kind: "mandalart", ID: id}
	}
	return m, nil
}
