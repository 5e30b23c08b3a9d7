package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chupakbra/userboard/internal/actions"
	"github.com/chupakbra/userboard/internal/store"
	"github.com/chupakbra/userboard/internal/user"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Browse and curate the users on the board",
	}
	cmd.AddCommand(usersListCmd())
	cmd.AddCommand(usersAddCmd())
	cmd.AddCommand(usersDeleteCmd())
	cmd.AddCommand(usersReloadCmd())
	return cmd
}

// pageView is the JSON shape of a listed page.
type pageView struct {
	Users      []user.User           `json:"users"`
	Pagination store.PaginationState `json:"pagination"`
	Filter     string                `json:"filter,omitempty"`
}

// usersListCmd prints one page of the board, fetching first when it is empty.
func usersListCmd() *cobra.Command {
	var (
		page   int
		rows   int
		filter string
		reload bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a page of active users",
		Long: `List a page of active users. The board is fetched from the endpoint the
first time it is listed; later runs show the persisted board until it is
reloaded. Page and page size changes are remembered between runs.`,
		Example: `  userboard users list
  userboard users list --page 2 --rows 10
  userboard users list --filter example.com
  userboard users list --reload -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBoard()
			if err != nil {
				return err
			}
			defer b.Close()
			d := b.Deps(cliNotifier(cmd))

			ctx := context.Background()
			s := startSpinner("Loading users...")
			if reload {
				err = actions.Reload(ctx, d)
			} else {
				err = actions.Bootstrap(ctx, d)
			}
			s.Stop()
			if err != nil && b.Users.Len() == 0 {
				return handleErr(err)
			}

			if cmd.Flags().Changed("rows") {
				if err := b.Pagination.SetRowsPerPage(rows); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("page") {
				b.Pagination.SetCurrentPage(page)
			}

			st := b.Pagination.State()
			list := b.Users.Users()
			if filter != "" {
				list = user.Filter(list, filter)
			} else {
				list = store.Page(list, st)
			}

			if flagOutput == "json" {
				return jsonOut(cmd, pageView{Users: list, Pagination: st, Filter: filter})
			}

			if len(list) == 0 {
				notice(cmd, "No users to show.")
				return nil
			}
			if err := printUsers(cmd, list); err != nil {
				return err
			}
			if filter != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d matching users\n", len(list))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d · %d users · %d per page\n",
					st.CurrentPage, st.TotalPages, st.TotalUsers, st.RowsPerPage)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to show (clamped to the available pages)")
	cmd.Flags().IntVar(&rows, "rows", store.DefaultRowsPerPage, "rows per page: 5, 7 or 10")
	cmd.Flags().StringVar(&filter, "filter", "", "show every user whose name or email contains this text")
	cmd.Flags().BoolVar(&reload, "reload", false, "fetch the users again before listing")
	return cmd
}

func printUsers(cmd *cobra.Command, list []user.User) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFIRST NAME\tLAST NAME\tEMAIL")
	for _, u := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.FirstName, u.LastName, u.Email)
	}
	return w.Flush()
}

// usersAddCmd appends a user to the board.
func usersAddCmd() *cobra.Command {
	var draft user.Draft
	cmd := &cobra.Command{
		Use:     "add",
		Aliases: []string{"create"},
		Short:   "Add a user to the board",
		Long: `Add a user to the board. The record only exists locally: it is kept in the
board state and is not sent to the endpoint.`,
		Example: `  userboard users add --first Ada --last Lovelace --email ada@example.com`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := draft.Validate(); err != nil {
				return fmt.Errorf("cannot add user: %w", err)
			}
			b, err := openBoard()
			if err != nil {
				return err
			}
			defer b.Close()

			created, err := actions.CreateUser(context.Background(), b.Deps(cliNotifier(cmd)), draft)
			if err != nil {
				return handleErr(err)
			}
			if flagOutput == "json" {
				return jsonOut(cmd, created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %q added (id %s).\n", created.FullName(), created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&draft.FirstName, "first", "", "first name (required)")
	cmd.Flags().StringVar(&draft.LastName, "last", "", "last name (required)")
	cmd.Flags().StringVar(&draft.Email, "email", "", "email address (required)")
	return cmd
}

// usersDeleteCmd removes a user from the board by id.
func usersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a user from the board",
		Example: `  userboard users delete 3`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBoard()
			if err != nil {
				return err
			}
			defer b.Close()

			id := user.ID(args[0])
			err = actions.DeleteUser(context.Background(), b.Deps(cliNotifier(cmd)), id)
			if errors.Is(err, actions.ErrNotFound) {
				return fmt.Errorf("no user with id %q on the board", id)
			}
			if err != nil {
				return handleErr(err)
			}
			if flagOutput == "json" {
				return jsonOut(cmd, map[string]any{"deleted": id, "remaining": b.Users.Len()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s removed, %d remaining.\n", id, b.Users.Len())
			return nil
		},
	}
}

// usersReloadCmd resets pagination and fetches the users again.
func usersReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Fetch the users again and go back to the first page",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBoard()
			if err != nil {
				return err
			}
			defer b.Close()

			s := startSpinner("Fetching users...")
			err = actions.Reload(context.Background(), b.Deps(cliNotifier(cmd)))
			s.Stop()
			if err != nil {
				return handleErr(err)
			}
			st := b.Pagination.State()
			if flagOutput == "json" {
				return jsonOut(cmd, st)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d active users, %d pages.\n", st.TotalUsers, st.TotalPages)
			return nil
		},
	}
}
