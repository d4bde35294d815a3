package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hwinj/hwinj/internal/constants"
	"github.com/hwinj/hwinj/internal/metadata"
	"github.com/hwinj/hwinj/internal/schedule"
	"github.com/spf13/cobra"
)

type reportConfig struct {
	Schedule string
	Window   float64 `validate:"gt=0"`
	GPSTime  float64 `validate:"gte=0"`
	Pipeline string  `validate:"required"`
	Group    string
}

func installReportCmd(app *App) {
	var conf reportConfig

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report the imminent injection to the event database",
		Long: `Report the next injection of the schedule if it starts within the window.

An event is created in the group of the injection state, carrying the injection event file, and
the schedule line is added to its log. The event identifier is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.Struct(conf); err != nil {
				return fmt.Errorf("invalid arguments: %w", err)
			}
			return app.report(cmd.Context(), cmd.OutOrStdout(), conf)
		},
	}

	cmd.Flags().StringVarP(&conf.Schedule, "schedule", "s", "", "schedule file")
	cmd.Flags().Float64Var(&conf.Window, "window", constants.DefaultImminentSeconds, "how soon the injection must start, in seconds")
	cmd.Flags().Float64Var(&conf.GPSTime, "gps-time", 0, "current GPS time, defaults to now")
	cmd.Flags().StringVar(&conf.Pipeline, "pipeline", constants.DefaultPipeline, "event pipeline")
	cmd.Flags().StringVar(&conf.Group, "group", "", "event group, defaults to the group of the injection state")

	if err := cmd.MarkFlagRequired("schedule"); err != nil {
		panic(fmt.Sprintf("failed to mark schedule flag as required: %v", err))
	}
	if err := cmd.MarkFlagFilename("schedule"); err != nil {
		panic(fmt.Sprintf("failed to mark schedule flag as filename: %v", err))
	}

	app.cmd.AddCommand(cmd)
}

func (a App) report(ctx context.Context, w io.Writer, conf reportConfig) error {
	now := gpsNow(conf.GPSTime)
	injs, err := schedule.Read(conf.Schedule, schedule.WithNow(now))
	if err != nil {
		return err
	}

	inj, err := schedule.Imminent(injs, now, conf.Window)
	if err != nil {
		return err
	}
	slog.Info("Imminent injection", "time", inj.Time, "state", inj.State)

	group := conf.Group
	if group == "" {
		table, err := a.stateTable()
		if err != nil {
			return err
		}
		if group, err = table.Group(inj.State); err != nil {
			return err
		}
	}

	payload, err := metadata.ForInjection(inj, a.config.Instruments[0])
	if err != nil {
		return err
	}

	r, err := a.newReporter()
	if err != nil {
		return err
	}

	id, err := r.Report(ctx, payload, a.config.Instruments, conf.Pipeline, group)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, id)

	return r.Annotate(ctx, id, inj.String(), "")
}

func installAnnotateCmd(app *App) {
	var tag string

	cmd := &cobra.Command{
		Use:   "annotate EVENT_ID MESSAGE",
		Short: "Add a message to the log of an event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.newReporter()
			if err != nil {
				return err
			}
			return r.Annotate(cmd.Context(), args[0], args[1], tag)
		},
	}

	cmd.Flags().StringVar(&tag, "tag", constants.DefaultLogTag, "log message tag")

	app.cmd.AddCommand(cmd)
}

func installLabelCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "label EVENT_ID LABEL",
		Short: "Attach a label to an event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.newReporter()
			if err != nil {
				return err
			}
			return r.Label(cmd.Context(), args[0], args[1])
		},
	}

	app.cmd.AddCommand(cmd)
}
