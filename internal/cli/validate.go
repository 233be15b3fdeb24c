package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"mandalart/internal/format"
	"mandalart/internal/grid"
)

func newValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a grid document without saving it",
		Long: strings.TrimSpace(`
Reports every missing or too long field. Exits non-zero when the grid would be
rejected by create.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := format.ReadGridFile(args[0], cmd.InOrStdin())
			if err != nil {
				return writeErr(cmd, err)
			}
			g, err := doc.Grid()
			if err != nil {
				return writeErr(cmd, err)
			}
			errs := grid.Validate(g)
			problems := make([]grid.ValidationError, 0, len(errs))
			problems = append(problems, errs...)
			hints := []string{}
			if len(errs) == 0 {
				hints = append(hints, "mandalart create --from "+args[0])
			} else {
				hints = append(hints, "mandalart draft import "+args[0], "mandalart create")
			}
			if err := writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"valid":  len(errs) == 0,
					"errors": problems,
					"stats":  g.Stats(),
				},
				"_hints": hints,
			}); err != nil {
				return err
			}
			if err := errs.Err(); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
}
