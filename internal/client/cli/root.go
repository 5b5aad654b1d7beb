package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/sessionkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/telemetry"
	"github.com/spf13/cobra"
)

// rootState carries what PersistentPreRunE prepares for the subcommands.
type rootState struct {
	flags *config.Flags
	in    io.Reader
	out   io.Writer

	cfg      *config.Config
	log      logging.Logger
	shutdown telemetry.Shutdown
}

// NewRootCommand builds the sessionkeeper command tree. Without a subcommand
// it starts the interactive shell.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	st := &rootState{in: in, out: out}

	root := &cobra.Command{
		Use:   "sessionkeeper",
		Short: "Terminal shell for an abstratium session",
		Long: `sessionkeeper resolves the current session against the identity backend,
shows who is signed in, and signs out shortly before the token expires.`,
		SilenceUsage:       true,
		PersistentPreRunE:  st.setup,
		PersistentPostRunE: st.teardown,
		RunE:               st.runShell,
	}
	root.SetIn(in)
	root.SetOut(out)
	st.flags = config.NewFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "Start the interactive shell",
			RunE:  st.runShell,
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Show the signed-in user",
			RunE:  st.exec(func(a *App) func(context.Context) error { return a.Whoami }),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show authentication and expiry state",
			RunE:  st.exec(func(a *App) func(context.Context) error { return a.Status }),
		},
		newSignoutCommand(st),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree against the process's stdio.
func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stdin, os.Stdout).ExecuteContext(ctx)
}

func newSignoutCommand(st *rootState) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "signout",
		Short: "Sign out of the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.app()
			if err != nil {
				return err
			}
			if yes {
				a.confirm.interactive = func() bool { return false }
			}
			return a.Exec(cmd.Context(), a.Signout)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		// No config, logging or tracing needed.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}

func (st *rootState) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(st.flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := st.flags.Apply(cfg); err != nil {
		return fmt.Errorf("apply flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	shutdown, err := telemetry.Setup(cmd.Context(), telemetry.Options{
		Endpoint:       cfg.OTelEndpoint,
		Enabled:        cfg.OTelEnabled,
		ServiceName:    cfg.OTelServiceName,
		ServiceVersion: buildinfo.Version,
		SampleRatio:    cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Warn(cmd.Context(), "tracing disabled", "error", err)
	}

	st.cfg, st.log, st.shutdown = cfg, log, shutdown
	return nil
}

func (st *rootState) teardown(cmd *cobra.Command, _ []string) error {
	if st.shutdown == nil {
		return nil
	}
	if err := st.shutdown(context.WithoutCancel(cmd.Context())); err != nil {
		st.log.Warn(cmd.Context(), "flush traces", "error", err)
	}
	return nil
}

func (st *rootState) app() (*App, error) {
	return NewApp(st.cfg, st.log, st.in, st.out)
}

func (st *rootState) runShell(cmd *cobra.Command, _ []string) error {
	a, err := st.app()
	if err != nil {
		return err
	}
	return a.Run(cmd.Context())
}

func (st *rootState) exec(pick func(*App) func(context.Context) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := st.app()
		if err != nil {
			return err
		}
		return a.Exec(cmd.Context(), pick(a))
	}
}
