package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chupakbra/userboard/internal/theme"
)

func themeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the color theme",
	}
	cmd.AddCommand(themeShowCmd())
	cmd.AddCommand(themeToggleCmd())
	cmd.AddCommand(themeSetCmd())
	return cmd
}

type themeView struct {
	Mode   theme.Mode `json:"mode"`
	Stored bool       `json:"stored"`
}

// themeShowCmd prints the theme the TUI would start with.
func themeShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active theme",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBoard()
			if err != nil {
				return err
			}
			defer b.Close()

			_, stored, err := theme.Stored(b.KV)
			if err != nil {
				return err
			}
			mode := b.Theme()
			if flagOutput == "json" {
				return jsonOut(cmd, themeView{Mode: mode, Stored: stored})
			}
			if stored {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", mode)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (detected from the terminal)\n", mode)
			}
			return nil
		},
	}
}

// themeToggleCmd flips the theme and persists it.
func themeToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Switch between dark and light",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBoard()
			if err != nil {
				return err
			}
			defer b.Close()

			mode, err := theme.Toggle(b.KV, b.Theme())
			if err != nil {
				return err
			}
			if flagOutput == "json" {
				return jsonOut(cmd, themeView{Mode: mode, Stored: true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s.\n", mode)
			return nil
		},
	}
}

// themeSetCmd persists an explicit theme.
func themeSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "set <dark|light>",
		Short:     "Set the theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(theme.Dark), string(theme.Light)},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := theme.Parse(args[0])
			if err != nil {
				return err
			}
			b, err := openBoard()
			if err != nil {
				return err
			}
			defer b.Close()

			if err := theme.Set(b.KV, mode); err != nil {
				return err
			}
			if flagOutput == "json" {
				return jsonOut(cmd, themeView{Mode: mode, Stored: true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s.\n", mode)
			return nil
		},
	}
}
