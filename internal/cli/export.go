package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"mandalart/internal/mutate"
	"mandalart/internal/publish"
	"mandalart/internal/store"
)

func newExportCmd(app *App) *cobra.Command {
	var toDir string
	var overwrite bool
	var skipImages bool

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a mandalart as Markdown and PNG files",
		Long: strings.TrimSpace(`
Writes <id>.md (the outline), <id>.png (full grid), <id>_thumb.png and
<id>_og.png (share card) under --to. The files are derived artifacts; the
database stays canonical.
`),
		Example: strings.TrimSpace(`
mandalart export <id> --to ./out
mandalart export <id> --to ./out --skip-images
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
			opt := publish.WriteOptions{
				Overwrite:  overwrite,
				SkipImages: skipImages,
				BaseURL:    e.cfg.Server.BaseURL,
			}
			if m.OGImageURL != "" {
				if p, err := e.st.ObjectPath(store.OGImagesBucket, mutate.OGImageName(m.ID)); err == nil {
					opt.OGImageSource = p
				}
			}
			res, err := publish.Write(m, toDir, opt)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": res,
				"_hints": []string{
					"git status",
					"git add -A",
					"git commit -m \"Export mandalart " + m.ID + "\"",
				},
			})
		},
	}

	cmd.Flags().StringVar(&toDir, "to", "", "Output directory")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().BoolVar(&overwrite, "overwrite", true, "Overwrite existing files")
	cmd.Flags().BoolVar(&skipImages, "skip-images", false, "Only write the Markdown outline")
	return cmd
}
