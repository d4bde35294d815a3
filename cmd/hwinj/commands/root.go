// Package commands implements the hwinj command line.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hwinj/hwinj/internal/cli"
	"github.com/hwinj/hwinj/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// App represents the application.
type App struct {
	cmd    *cobra.Command
	viper  *viper.Viper
	config appConfig

	ctx    context.Context
	cancel context.CancelFunc
}

// New registers commands and returns a new App.
func New() (*App, error) {
	a := App{viper: viper.New()}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	a.cmd = &cobra.Command{
		Use:   constants.CmdName + " COMMAND",
		Short: "Hardware injection tools",
		Long: `Validate hardware injection schedules, correct injection metadata and report
injections to the event database.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Command parsing has been successful. Returns to not print usage anymore.
			a.cmd.SilenceUsage = true
			cli.SetSlog(a.config.Verbosity, a.config.JSONLogs) // Set verbosity before loading config
			if err := cli.InitViperConfig(constants.CmdName, a.cmd, a.viper); err != nil {
				return err
			}
			if err := a.viper.Unmarshal(&a.config, viper.DecodeHook(decodeHook)); err != nil {
				return fmt.Errorf("unable to decode configuration into struct: %w", err)
			}
			if err := validate.Struct(a.config); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			cli.SetSlog(a.config.Verbosity, a.config.JSONLogs)
			slog.Debug("got app config", "config", a.config)

			return nil
		},
	}
	a.cmd.CompletionOptions.HiddenDefaultCmd = true

	installRootCmd(&a)
	cli.InstallConfigFlag(a.cmd)

	if err := a.viper.BindPFlags(a.cmd.PersistentFlags()); err != nil {
		return nil, err
	}
	// The usual grid environment names a client certificate.
	if err := a.viper.BindEnv("gracedb-cert", "HWINJ_GRACEDB_CERT", "X509_USER_CERT"); err != nil {
		return nil, err
	}
	if err := a.viper.BindEnv("gracedb-key", "HWINJ_GRACEDB_KEY", "X509_USER_KEY"); err != nil {
		return nil, err
	}

	installValidateCmd(&a)
	installMetadataCmd(&a)
	installReportCmd(&a)
	installAnnotateCmd(&a)
	installLabelCmd(&a)
	installStatesCmd(&a)

	return &a, nil
}

func installRootCmd(app *App) {
	cmd := app.cmd

	cmd.PersistentFlags().CountVarP(&app.config.Verbosity, "verbose", "v", "issue INFO (-v), DEBUG (-vv)")
	cmd.PersistentFlags().BoolVar(&app.config.JSONLogs, "json-logs", false, "write logs as JSON")
	cmd.PersistentFlags().StringSliceVar(&app.config.Instruments, "ifos", []string{"H1"}, "instruments taking part in the injections, the first one is used to build event files")
	cmd.PersistentFlags().StringVar(&app.config.States, "states", "", "injection state table file (TOML), defaults to the built-in table")

	installGraceDBFlags(cmd.PersistentFlags(), &app.config.GraceDB)

	if err := cmd.MarkPersistentFlagFilename("states", "toml"); err != nil {
		panic(fmt.Sprintf("failed to mark states flag as filename: %v", err))
	}
}

// Run executes the command and associated process, returning an error if any.
func (a App) Run() error {
	return a.cmd.ExecuteContext(a.ctx)
}

// UsageError returns if the error is a command parsing or runtime one.
func (a App) UsageError() bool {
	return !a.cmd.SilenceUsage
}

// Quit stops any running command, such as a schedule being watched.
func (a *App) Quit() {
	a.cancel()
}

// RootCmd returns the root command.
func (a App) RootCmd() cobra.Command {
	return *a.cmd
}
