package commands

import (
	"errors"
	"fmt"

	"github.com/hwinj/hwinj/internal/fileutils"
	"github.com/hwinj/hwinj/internal/metadata"
	"github.com/hwinj/hwinj/internal/waveform"
	"github.com/spf13/cobra"
)

type metadataConfig struct {
	ScheduleTime  float64 `validate:"gt=0"`
	WaveformStart float64 `validate:"gte=0"`
	Waveform      string
	Output        string
}

func installMetadataCmd(app *App) {
	var conf metadataConfig

	cmd := &cobra.Command{
		Use:   "metadata [METADATA_FILE]",
		Short: "Print the event file of an injection",
		Long: `Print the event file reported for an injection scheduled at the given GPS time.

With a metadata file, its times are moved so that the waveform starts at the scheduled time.
The waveform start time is given directly or parsed from the waveform file name. Without a
metadata file, an empty document only carrying the scheduled time is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.Struct(conf); err != nil {
				return fmt.Errorf("invalid arguments: %w", err)
			}

			data, err := buildMetadata(args, conf)
			if err != nil {
				return err
			}

			if conf.Output != "" {
				return fileutils.AtomicWrite(conf.Output, data)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().Float64VarP(&conf.ScheduleTime, "schedule-time", "t", 0, "GPS time at which the injection is scheduled")
	cmd.Flags().Float64Var(&conf.WaveformStart, "waveform-start", 0, "GPS start time of the waveform")
	cmd.Flags().StringVar(&conf.Waveform, "waveform", "", "waveform file, named IFO-TAG-START-DURATION, giving the waveform start time")
	cmd.Flags().StringVarP(&conf.Output, "output", "o", "", "write the event file there instead of the standard output")

	if err := cmd.MarkFlagRequired("schedule-time"); err != nil {
		panic(fmt.Sprintf("failed to mark schedule-time flag as required: %v", err))
	}
	cmd.MarkFlagsMutuallyExclusive("waveform-start", "waveform")

	app.cmd.AddCommand(cmd)
}

func buildMetadata(args []string, conf metadataConfig) ([]byte, error) {
	if len(args) == 0 {
		return metadata.Empty(conf.ScheduleTime)
	}

	start := conf.WaveformStart
	if conf.Waveform != "" {
		n, err := waveform.ParseName(conf.Waveform)
		if err != nil {
			return nil, err
		}
		start = n.Start
	}
	if start == 0 {
		return nil, errors.New("a waveform start time is required to correct a metadata file")
	}

	return metadata.Correct(args[0], start, conf.ScheduleTime)
}
