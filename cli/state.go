package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chupakbra/userboard/internal/board"
	"github.com/chupakbra/userboard/internal/store"
)

func stateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or reset the persisted board state",
	}
	cmd.AddCommand(stateShowCmd())
	cmd.AddCommand(stateResetCmd())
	return cmd
}

// stateShowCmd prints every persisted namespace.
func stateShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the persisted board state",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBoard()
			if err != nil {
				return err
			}
			defer b.Close()

			snap := b.Snapshot()
			if flagOutput == "json" {
				return jsonOut(cmd, snap)
			}

			theme := string(snap.Theme)
			if theme == "" {
				theme = string(b.Theme()) + " (detected)"
			}
			modal := "closed"
			if snap.Toggle.Open {
				modal = snap.Toggle.Mode.String()
				if snap.Toggle.Data != nil {
					modal += fmt.Sprintf(" (%s, id %s)", snap.Toggle.Data.FullName(), snap.Toggle.Data.ID)
				}
			}
			tooltip := "hidden"
			if snap.Toggle.Tooltip.Visible {
				tooltip = snap.Toggle.Tooltip.ID
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Backend:\t%s\n", backendLabel(b))
			fmt.Fprintf(w, "Users:\t%d\n", len(snap.Users))
			fmt.Fprintf(w, "Page:\t%d of %d\n", snap.Pagination.CurrentPage, snap.Pagination.TotalPages)
			fmt.Fprintf(w, "Rows per page:\t%d\n", snap.Pagination.RowsPerPage)
			fmt.Fprintf(w, "Fetching:\t%s\n", yesNoBool(snap.Loading[store.LoadingUsers]))
			fmt.Fprintf(w, "Creating:\t%s\n", yesNoBool(snap.Loading[store.LoadingCreateUser]))
			fmt.Fprintf(w, "Deleting:\t%s\n", yesNoBool(snap.Loading[store.LoadingDeleteUser]))
			fmt.Fprintf(w, "Modal:\t%s\n", modal)
			fmt.Fprintf(w, "Tooltip:\t%s\n", tooltip)
			fmt.Fprintf(w, "Theme:\t%s\n", theme)
			return w.Flush()
		},
	}
}

func backendLabel(b *board.Board) string {
	backend := b.Settings.StateBackend
	if backend == "" {
		backend = "file"
	}
	if b.Settings.StatePath == "" {
		return backend
	}
	return backend + " (" + b.Settings.StatePath + ")"
}

// stateResetCmd restores namespaces to their initial state.
func stateResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [namespace...]",
		Short: "Reset persisted state",
		Long: fmt.Sprintf(`Reset persisted state to its initial values. With no arguments every
namespace is reset.

Namespaces: %s`, strings.Join(board.Namespaces, ", ")),
		Example: `  userboard state reset
  userboard state reset pagination toggle`,
		ValidArgs: board.Namespaces,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBoard()
			if err != nil {
				return err
			}
			defer b.Close()

			if err := b.Reset(args...); err != nil {
				return err
			}
			names := args
			if len(names) == 0 {
				names = board.Namespaces
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %s.\n", strings.Join(names, ", "))
			return nil
		},
	}
}
