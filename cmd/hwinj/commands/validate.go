package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hwinj/hwinj/internal/constants"
	"github.com/hwinj/hwinj/internal/metadata"
	"github.com/hwinj/hwinj/internal/schedule"
	"github.com/hwinj/hwinj/internal/waveform"
	"github.com/spf13/cobra"
)

type validateConfig struct {
	Schedule   string
	MinCadence float64 `validate:"gte=0"`
	SampleRate float64 `validate:"gt=0"`
	GPSTime    float64 `validate:"gte=0"`
	Watch      bool
}

func installValidateCmd(app *App) {
	var conf validateConfig

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an injection schedule",
		Long: `Validate the future injections of a schedule file.

Each waveform is read for every instrument and each metadata file is corrected. Injections must
start at least the minimum cadence apart. Injections starting shortly after the end of the
previous one are reported as warnings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.Struct(conf); err != nil {
				return fmt.Errorf("invalid arguments: %w", err)
			}
			return app.validateSchedule(cmd.Context(), cmd.OutOrStdout(), conf)
		},
	}

	cmd.Flags().StringVarP(&conf.Schedule, "schedule", "s", "", "schedule file")
	cmd.Flags().Float64Var(&conf.MinCadence, "min-cadence", 0, "minimum time between two injection starts, in seconds")
	cmd.Flags().Float64Var(&conf.SampleRate, "sample-rate", constants.DefaultSampleRate, "waveform sample rate, in Hz")
	cmd.Flags().Float64Var(&conf.GPSTime, "gps-time", 0, "GPS time before which injections are ignored, defaults to now")
	cmd.Flags().BoolVarP(&conf.Watch, "watch", "w", false, "validate again each time the schedule file changes")

	if err := cmd.MarkFlagRequired("schedule"); err != nil {
		panic(fmt.Sprintf("failed to mark schedule flag as required: %v", err))
	}
	if err := cmd.MarkFlagFilename("schedule"); err != nil {
		panic(fmt.Sprintf("failed to mark schedule flag as filename: %v", err))
	}

	app.cmd.AddCommand(cmd)
}

// validateSchedule checks the schedule once, or every time it changes until ctx is done when
// watching it.
func (a App) validateSchedule(ctx context.Context, w io.Writer, conf validateConfig) error {
	if !conf.Watch {
		return a.checkSchedule(w, conf)
	}

	changes, errs, err := schedule.NewWatcher(conf.Schedule).Watch(ctx)
	if err != nil {
		return err
	}

	if err := a.checkSchedule(w, conf); err != nil {
		slog.Error("Invalid schedule", "file", conf.Schedule, "err", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := a.checkSchedule(w, conf); err != nil {
				slog.Error("Invalid schedule", "file", conf.Schedule, "err", err)
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// checkSchedule validates every injection of the schedule then their cadence.
func (a App) checkSchedule(w io.Writer, conf validateConfig) error {
	injs, err := schedule.Read(conf.Schedule, schedule.WithNow(gpsNow(conf.GPSTime)))
	if err != nil {
		return err
	}

	var errs []error
	spans := make([]schedule.Span, 0, len(injs))
	for _, inj := range injs {
		span, err := a.checkInjection(inj, conf.SampleRate)
		if err != nil {
			errs = append(errs, fmt.Errorf("injection %q: %w", inj, err))
			continue
		}
		spans = append(spans, span)
	}

	gaps, err := schedule.CheckCadence(spans, conf.MinCadence)
	if err != nil {
		errs = append(errs, err)
	}
	for _, g := range gaps {
		slog.Warn("Injection starts shortly after the end of the previous one", "previous", g.Previous.Time, "next", g.Next.Time, "gap", g.Seconds)
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s: %d injections are valid, %d start shortly after the previous one\n", conf.Schedule, len(injs), len(gaps))
	return nil
}

// checkInjection reads the waveforms and metadata of inj for every instrument and returns its
// span, using the longest waveform.
func (a App) checkInjection(inj schedule.Injection, sampleRate float64) (schedule.Span, error) {
	var samples int
	for i, ifo := range a.config.Instruments {
		data, err := waveform.Read(inj.WaveformPath(ifo), waveform.ASCII)
		if err != nil {
			return schedule.Span{}, err
		}
		if i > 0 && len(data) != samples {
			slog.Warn("Waveform lengths differ between instruments", "injection", inj.Time, "ifo", ifo, "samples", len(data), "longest", samples)
		}
		samples = max(samples, len(data))

		if _, err := metadata.ForInjection(inj, ifo); err != nil {
			return schedule.Span{}, err
		}
	}

	return schedule.Span{Injection: inj, Duration: float64(samples) / sampleRate}, nil
}
