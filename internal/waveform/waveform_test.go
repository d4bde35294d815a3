package waveform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hwinj/hwinj/internal/waveform"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		file   string
		format waveform.Format

		want     []float64
		wantLine int
		wantErr  error
	}{
		"Single column":              {file: "H1-TEST-1000-16.txt", want: []float64{0, 1.5e-21, -2.5e-21, 3}},
		"Comments and blank lines":   {file: "comments.txt", want: []float64{0, 1.5e-21}},
		"Byte order mark is skipped": {file: "bom.txt", want: []float64{1, 2}},

		"Error on missing file":        {file: "does_not_exist.txt", wantErr: os.ErrNotExist},
		"Error on unknown format":      {file: "H1-TEST-1000-16.txt", format: "gwf", wantErr: waveform.ErrUnknownFormat},
		"Error on multiple columns":    {file: "two_columns.txt", wantLine: 2},
		"Error on non numeric sample":  {file: "not_numeric.txt", wantLine: 2},
		"Error on file without sample": {file: "empty.txt", wantErr: waveform.ErrNoSamples},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if tc.format == "" {
				tc.format = waveform.ASCII
			}

			got, err := waveform.Read(filepath.Join("testdata", tc.file), tc.format)
			if tc.want == nil {
				var readErr *waveform.ReadError
				require.ErrorAs(t, err, &readErr, "Read should return a ReadError")
				require.Equal(t, tc.wantLine, readErr.Line, "ReadError should point to the failing line")
				if tc.wantErr != nil {
					require.ErrorIs(t, err, tc.wantErr)
				}
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got, "Read should return all samples in order")
		})
	}
}

func TestParseName(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		path string

		want    waveform.Name
		wantErr bool
	}{
		"Integer start time": {
			path: "/waveforms/H1-HWINJ_CBC-1126259462-12.txt",
			want: waveform.Name{IFO: "H1", Tag: "HWINJ_CBC", Start: 1126259462, Duration: 12},
		},
		"Fractional start time": {
			path: "L1-BURST-1000.5-2.5.txt",
			want: waveform.Name{IFO: "L1", Tag: "BURST", Start: 1000.5, Duration: 2.5},
		},
		"No extension": {
			path: "H1-TEST-1000-16",
			want: waveform.Name{IFO: "H1", Tag: "TEST", Start: 1000, Duration: 16},
		},

		"Error on missing fields":    {path: "H1-1000-16.txt", wantErr: true},
		"Error on dash in tag":       {path: "H1-MY-TAG-1000-16.txt", wantErr: true},
		"Error on non numeric start": {path: "H1-TEST-start-16.txt", wantErr: true},
		"Error on non numeric span":  {path: "H1-TEST-1000-long.txt", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := waveform.ParseName(tc.path)
			if tc.wantErr {
				require.ErrorIs(t, err, waveform.ErrInvalidName)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got, "ParseName should decode all fields")
		})
	}
}
