package cli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mandalart/internal/grid"
)

func newCellCmd(app *App) *cobra.Command {
	var theme int
	var detail int
	var centerBlock bool

	cmd := &cobra.Command{
		Use:   "cell [index]",
		Short: "Map a flat grid index (0-80) to its address, or an address to its index",
		Example: strings.TrimSpace(`
# What is cell 30?
mandalart cell 30

# Where is theme 2's header, its copy around the center, and detail 5?
mandalart cell --theme 2
mandalart cell --theme 2 --center-block
mandalart cell --theme 2 --detail 5
`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			byAddress := cmd.Flags().Changed("theme") || cmd.Flags().Changed("detail") || centerBlock
			if len(args) == 1 && byAddress {
				return writeErr(cmd, errors.New("pass either an index or --theme/--detail, not both"))
			}

			var index int
			switch {
			case len(args) == 1:
				i, err := strconv.Atoi(strings.TrimSpace(args[0]))
				if err != nil {
					return writeErr(cmd, errors.New("index must be an integer"))
				}
				index = i
			case byAddress:
				a, err := addressFromFlags(cmd, theme, detail, centerBlock)
				if err != nil {
					return writeErr(cmd, err)
				}
				i, err := grid.ToIndex(a)
				if err != nil {
					return writeErr(cmd, err)
				}
				index = i
			default:
				index = grid.CenterIndex
			}

			loc, err := grid.Locate(index)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": loc})
		},
	}

	cmd.Flags().IntVar(&theme, "theme", 0, "Theme number (0-7)")
	cmd.Flags().IntVar(&detail, "detail", 0, "Detail number within the theme (0-7)")
	cmd.Flags().BoolVar(&centerBlock, "center-block", false, "With --theme: the copy around the center goal instead of the block header")
	return cmd
}

func addressFromFlags(cmd *cobra.Command, theme, detail int, centerBlock bool) (grid.Address, error) {
	if !cmd.Flags().Changed("theme") {
		return grid.Address{}, errors.New("missing --theme")
	}
	if cmd.Flags().Changed("detail") {
		if centerBlock {
			return grid.Address{}, errors.New("--center-block only applies to theme titles")
		}
		return grid.Detail(theme, detail), nil
	}
	if centerBlock {
		return grid.ThemePreview(theme), nil
	}
	return grid.ThemeTitle(theme), nil
}
