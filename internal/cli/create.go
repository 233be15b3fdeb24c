package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"mandalart/internal/format"
	"mandalart/internal/grid"
	"mandalart/internal/mutate"
	"mandalart/internal/store"
	"mandalart/internal/tui"
)

// runEditor is replaced in tests.
var runEditor = tui.Run

func newCreateCmd(app *App) *cobra.Command {
	var from string
	var name string
	var private bool
	var tags []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a mandalart in the terminal editor or from a file",
		Long: strings.TrimSpace(`
Without --from, opens the full-screen editor. Work is kept in a draft between
sessions; ctrl+s saves the finished grid and clears the draft.

With --from, reads a JSON or YAML grid document ("-" reads stdin).
`),
		Example: strings.TrimSpace(`
mandalart create
mandalart create --from goals.yaml --private
cat goals.json | mandalart create --from - --name "Sam" --tag health --tag 2026
`),
		Args: cobra.NoArgs,
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
			in := mutate.CreateInput{
				UserID:      u.ID,
				IsPublic:    !private,
				DisplayName: strings.TrimSpace(name),
				Tags:        tags,
			}

			drafts := store.Drafts{Dir: e.cfg.DataDir}
			fromEditor := strings.TrimSpace(from) == ""
			if fromEditor {
				res, err := runEditor(ctx, grid.Grid{}, drafts)
				if err != nil {
					return writeErr(cmd, err)
				}
				if !res.Completed {
					return writeOut(cmd, app, map[string]any{
						"data": map[string]any{
							"completed": false,
							"draft":     drafts.Path(),
						},
						"_hints": []string{"mandalart create", "mandalart draft show"},
					})
				}
				in.Grid = res.Grid
			} else {
				doc, err := format.ReadGridFile(from, cmd.InOrStdin())
				if err != nil {
					return writeErr(cmd, err)
				}
				g, err := doc.Grid()
				if err != nil {
					return writeErr(cmd, err)
				}
				in.Grid = g
				if doc.IsPublic != nil && !cmd.Flags().Changed("private") {
					in.IsPublic = *doc.IsPublic
				}
				if in.DisplayName == "" {
					in.DisplayName = doc.DisplayName
				}
				if len(in.Tags) == 0 {
					in.Tags = doc.Tags
				}
			}

			m, err := e.svc.CreateMandalart(ctx, in)
			if err != nil {
				return writeErr(cmd, err)
			}
			if fromEditor {
				if err := drafts.Clear(); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{
				"data": m,
				"_hints": []string{
					"mandalart show " + m.ID,
					"mandalart export " + m.ID + " --to ./" + m.ID,
				},
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Read the grid from a JSON/YAML file instead of the editor (- for stdin)")
	cmd.Flags().StringVar(&name, "name", "", "Display name shown with the mandalart")
	cmd.Flags().BoolVar(&private, "private", false, "Hide from the public gallery")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Tag (repeatable)")
	return cmd
}

func newDraftCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Inspect or replace the editor draft",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the saved draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := draftsFor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			dr, err := drafts.Load()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"path":  drafts.Path(),
					"draft": dr,
					"stats": dr.Grid.Stats(),
				},
				"_hints": []string{"mandalart create"},
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := draftsFor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := drafts.Clear(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"path": drafts.Path(), "cleared": true},
			})
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the draft with a grid document (incomplete grids are fine)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := draftsFor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			doc, err := format.ReadGridFile(args[0], cmd.InOrStdin())
			if err != nil {
				return writeErr(cmd, err)
			}
			g, err := doc.Grid()
			if err != nil {
				return writeErr(cmd, err)
			}
			dr, err := drafts.Load()
			if err != nil {
				return writeErr(cmd, err)
			}
			dr.Grid = g
			if err := drafts.Save(dr); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"path": drafts.Path(), "draft": dr, "stats": g.Stats()},
				"_hints": []string{"mandalart create"},
			})
		},
	}

	cmd.AddCommand(showCmd)
	cmd.AddCommand(clearCmd)
	cmd.AddCommand(importCmd)
	return cmd
}

// draftsFor resolves the draft location without opening the database.
func draftsFor(app *App) (store.Drafts, error) {
	cfg, err := loadConfig(app)
	if err != nil {
		return store.Drafts{}, err
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return store.Drafts{}, errors.New("missing data dir")
	}
	return store.Drafts{Dir: cfg.DataDir}, nil
}
