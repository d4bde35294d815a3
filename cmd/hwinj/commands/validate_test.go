package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hwinj/hwinj/cmd/hwinj/commands"
	"github.com/hwinj/hwinj/internal/testutils"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		schedule string
		args     []string

		wantOut string
		wantErr bool
	}{
		"Valid schedule": {
			schedule: "valid.txt",
			wantOut:  "testdata/schedules/valid.txt: 2 injections are valid, 0 start shortly after the previous one\n",
		},
		"Valid schedule for two instruments": {
			schedule: "valid.txt",
			args:     []string{"--ifos", "H1,L1"},
			wantOut:  "testdata/schedules/valid.txt: 2 injections are valid, 0 start shortly after the previous one\n",
		},
		"Short gap between injections is only a warning": {
			schedule: "short_gap.txt",
			args:     []string{"--min-cadence", "8"},
			wantOut:  "testdata/schedules/short_gap.txt: 2 injections are valid, 1 start shortly after the previous one\n",
		},
		"Past injections are not checked": {
			schedule: "metadata_before_waveform.txt",
			args:     []string{"--gps-time", "3000"},
			wantOut:  "testdata/schedules/metadata_before_waveform.txt: 0 injections are valid, 0 start shortly after the previous one\n",
		},

		"Error on injections starting too close": {schedule: "too_close.txt", wantErr: true},
		"Error on missing waveform":              {schedule: "missing_waveform.txt", wantErr: true},
		"Error on invalid waveform":              {schedule: "bad_waveform.txt", wantErr: true},
		"Error on metadata before waveform":      {schedule: "metadata_before_waveform.txt", wantErr: true},
		"Error on malformed schedule":            {schedule: "malformed.txt", wantErr: true},
		"Error on missing schedule":              {schedule: "missing.txt", wantErr: true},
		"Error on zero sample rate":              {schedule: "valid.txt", args: []string{"--sample-rate", "0"}, wantErr: true},
		"Error on negative cadence":              {schedule: "valid.txt", args: []string{"--min-cadence", "-1"}, wantErr: true},
		"Error on no schedule":                   {wantErr: true},
		"Error on arguments instead of a flag":   {args: []string{"testdata/schedules/valid.txt"}, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			args := []string{"validate", "--gps-time", "1000", "--sample-rate", "1", "--min-cadence", "50"}
			if tc.schedule != "" {
				args = append(args, "--schedule", filepath.Join("testdata", "schedules", tc.schedule))
			}
			// Later flags take precedence.
			args = append(args, tc.args...)

			out, _, err := run(t, args...)
			if tc.wantErr {
				require.Error(t, err, "validate should fail")
				return
			}
			require.NoError(t, err, "validate should not fail")
			require.Equal(t, filepath.FromSlash(tc.wantOut), out, "Unexpected validation result")
		})
	}
}

func TestValidateWatch(t *testing.T) {
	t.Parallel()

	content, err := os.ReadFile(filepath.Join("testdata", "schedules", "valid.txt"))
	require.NoError(t, err, "Setup: could not read schedule")
	p := testutils.WriteFile(t, t.TempDir(), "schedule.txt", string(content))

	var out syncBuffer
	a := commands.NewForTests(t, &out, "validate", "--watch", "--schedule", p, "--gps-time", "1000", "--sample-rate", "1")

	done := make(chan error)
	go func() {
		done <- a.Run()
	}()

	validations := func() int { return strings.Count(out.String(), "injections are valid") }
	require.Eventually(t, func() bool { return validations() == 1 }, 5*time.Second, 50*time.Millisecond, "Schedule should be validated on start")

	require.NoError(t, os.WriteFile(p, content, 0600), "Setup: could not rewrite schedule")
	require.Eventually(t, func() bool { return validations() >= 2 }, 5*time.Second, 50*time.Millisecond, "Schedule should be validated again once modified")

	a.Quit()
	select {
	case err := <-done:
		require.NoError(t, err, "validate should stop without error once quit")
	case <-time.After(5 * time.Second):
		t.Fatal("validate should stop once quit")
	}
}

func TestValidateUnreadableSchedule(t *testing.T) {
	t.Parallel()

	if !testutils.IsUnixNonRoot() {
		t.Skip("Skipping test: permissions are not enforced on this platform or for root")
	}

	p := testutils.WriteFile(t, t.TempDir(), "schedule.txt", "")
	testutils.MakeUnreadable(t, p)

	_, _, err := run(t, "validate", "--schedule", p)
	require.Error(t, err, "validate should fail on an unreadable schedule")
}
