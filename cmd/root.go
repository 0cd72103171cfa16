// Package cmd provides the command-line interface for bugrecover.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nhle/bugzilla-recovery/internal/logging"
	"github.com/nhle/bugzilla-recovery/internal/model"
	"github.com/nhle/bugzilla-recovery/internal/store"
	"github.com/nhle/bugzilla-recovery/internal/theme"
)

// app carries the state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *model.AppConfig
	logger  *zap.Logger
}

// newRootCmd builds the full command tree.
func newRootCmd() *cobra.Command {
	a := &app{v: model.NewViper(), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "bugrecover",
		Short: "Rebuild a bug tracker database from its notification emails",
		Long: `bugrecover reads archived Bugzilla notification emails and rebuilds the
issues and comments they describe into a local SQLite database.

Archives are mbox files, directories of mbox files, or an IMAP mailbox.
Ingestion is idempotent: re-running over the same or overlapping archives
never duplicates comments, and issue metadata always reflects the newest
authoritative notification.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", model.DefaultConfigPath(), "config file")
	flags.String("db", "", "SQLite database path (default \"data.db\")")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: console or json")
	_ = a.v.BindPFlag("database.path", flags.Lookup("db"))
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))

	rootCmd.AddCommand(
		newSetupCmd(a),
		newExtractCmd(a),
		newIMAPCmd(a),
		newTypesCmd(a),
		newSplitCmd(a),
		newRunsCmd(a),
		newCredentialCmd(a),
	)

	return rootCmd
}

func (a *app) load() error {
	cfg, err := model.LoadConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// openStore opens the configured database, attaching the bootstrap hint
// when it is missing or malformed.
func (a *app) openStore() (*store.SQLiteStore, error) {
	s, err := store.Open(a.cfg.Database.Path)
	if err != nil {
		if store.IsSetupError(err) {
			return nil, &setupError{path: a.cfg.Database.Path, err: err}
		}
		return nil, err
	}
	return s, nil
}

// setupError is a store error that the user fixes by running setup.
type setupError struct {
	path string
	err  error
}

func (e *setupError) Error() string { return e.err.Error() }
func (e *setupError) Unwrap() error { return e.err }

func (e *setupError) Hint() string {
	return fmt.Sprintf("run \"bugrecover setup --db %s\" first", e.path)
}

// Execute runs the command tree against os.Args and reports any error
// on stderr.
func Execute() error {
	return execute(newRootCmd(), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(rootCmd *cobra.Command, args []string, stdout, stderr io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	fmt.Fprintln(stderr, theme.ErrorStyle.Render("error: "+err.Error()))
	var se *setupError
	if errors.As(err, &se) {
		fmt.Fprintln(stderr, theme.HelpStyle.Render(se.Hint()))
	}
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(stderr, ue.usage)
	}
	return err
}

// usageError is a command-line mistake; the command usage is printed
// after it.
type usageError struct {
	err   error
	usage string
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// exactArgs is cobra.ExactArgs with the usage attached to the error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err: err, usage: cmd.UsageString()}
		}
		return nil
	}
}
