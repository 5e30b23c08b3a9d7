package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chupakbra/userboard/internal/board"
	"github.com/chupakbra/userboard/internal/config"
	clierrors "github.com/chupakbra/userboard/internal/errors"
	"github.com/chupakbra/userboard/internal/notify"
	"github.com/chupakbra/userboard/internal/storage"
	"github.com/chupakbra/userboard/tui"
)

// version is set at build time via -X github.com/chupakbra/userboard/cli.version=<ver>.
var version = "0.1.0"

var (
	// resolved in openBoard
	resolvedEndpointURL string

	// global flags
	flagEndpoint     string
	flagAPIURL       string
	flagStateBackend string
	flagStatePath    string
	flagEphemeral    bool
	flagRowsPerPage  int
	flagLocale       string
	flagLogFile      string
	flagTimeout      time.Duration
	flagOutput       string
	flagTUI          bool
)

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "userboard",
		Version: version,
		Short:   "A terminal board for browsing and curating a users collection",
		Long: `userboard shows the active users of a JSON users endpoint as a paginated
table, lets you add and remove records locally, and keeps its state between runs.

Configure an endpoint with:
  userboard endpoint add mock --url https://example.com/api/users
  userboard endpoint use mock

or point at one directly with USERBOARD_API_URL / --api-url.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagTUI {
				b, err := openBoard()
				if err != nil {
					return err
				}
				defer b.Close()
				return tui.LaunchTUI(b)
			}
			return cmd.Help()
		},
	}
	rootCmd.SetVersionTemplate("userboard {{.Version}}\n")

	// Local flags (root command only)
	rootCmd.Flags().BoolVar(&flagTUI, "tui", false, "launch interactive terminal UI")

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagEndpoint, "endpoint", "e", "", "named endpoint from config (overrides current-endpoint)")
	pf.StringVar(&flagAPIURL, "api-url", "", "users endpoint URL, one-shot, no config needed")
	pf.StringVar(&flagStateBackend, "state-backend", "", "state backend: file, sqlite or memory (default file)")
	pf.StringVar(&flagStatePath, "state-path", "", "state directory (file) or database path (sqlite)")
	pf.BoolVar(&flagEphemeral, "ephemeral", false, "keep state in memory for this run only")
	pf.IntVar(&flagRowsPerPage, "rows-per-page", 0, "default rows per page: 5, 7 or 10")
	pf.StringVar(&flagLocale, "locale", "", "message locale, e.g. en-US or es")
	pf.StringVar(&flagLogFile, "log-file", "", "append structured logs to this file")
	pf.DurationVar(&flagTimeout, "timeout", 0, "request timeout for the users endpoint (default 10s)")
	pf.StringVarP(&flagOutput, "output", "o", "table", "output format: table or json")

	// Sub-command groups
	rootCmd.AddCommand(endpointCmd())
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(stateCmd())
	rootCmd.AddCommand(themeCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// Execute wires the command tree and runs it.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// flagOverrides collects the global flags that override config and env.
func flagOverrides() config.Overrides {
	o := config.Overrides{
		APIURL:       flagAPIURL,
		Endpoint:     flagEndpoint,
		StateBackend: flagStateBackend,
		StatePath:    flagStatePath,
		RowsPerPage:  flagRowsPerPage,
		Locale:       flagLocale,
		LogFile:      flagLogFile,
		Timeout:      flagTimeout,
	}
	if flagEphemeral {
		o.StateBackend = storage.BackendMemory
	}
	return o
}

// resolveSettings layers flags over USERBOARD_* env over the config file.
func resolveSettings() (config.Settings, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Settings{}, fmt.Errorf("loading config: %w", err)
	}
	env, err := config.ParseEnv()
	if err != nil {
		return config.Settings{}, err
	}
	o := flagOverrides().Merge(env)
	if o.Endpoint != "" {
		// An explicitly named endpoint must exist.
		if _, _, err := cfg.ResolveEndpoint(o); err != nil {
			return config.Settings{}, err
		}
	}
	return cfg.Resolve(o)
}

// openBoard is called by command RunE functions that need board state.
func openBoard() (*board.Board, error) {
	s, err := resolveSettings()
	if err != nil {
		return nil, err
	}
	resolvedEndpointURL = s.Endpoint.URL
	return board.Open(s)
}

// cliNotifier prints notifications as single lines on stderr.
func cliNotifier(cmd *cobra.Command) notify.Sink {
	return notify.Writer{W: cmd.ErrOrStderr(), Color: stderrIsTerminal()}
}

// handleErr maps an error through the error handler with the resolved URL for
// connection error messages. Commands call this in their RunE return.
func handleErr(err error) error {
	return clierrors.Handle(resolvedEndpointURL, err)
}
