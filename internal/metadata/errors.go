package metadata

import (
	"fmt"

	"github.com/hwinj/hwinj/internal/gps"
)

// ShapeError is returned when a metadata file does not hold exactly one sim_inspiral row.
type ShapeError struct {
	Rows int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("metadata must contain exactly one sim_inspiral row, found %d", e.Rows)
}

// TimeOrderError is returned when a metadata time is earlier than the start of its waveform.
type TimeOrderError struct {
	Field         string
	Time          gps.Time
	WaveformStart gps.Time
}

func (e *TimeOrderError) Error() string {
	return fmt.Sprintf("%s %s is before the waveform start time %s", e.Field, e.Time, e.WaveformStart)
}

// PrecisionError is returned when a corrected time has a fractional second but the table has no
// nanoseconds column to hold it.
type PrecisionError struct {
	Field string
	Time  gps.Time
}

func (e *PrecisionError) Error() string {
	return fmt.Sprintf("%s %s needs a nanoseconds column, the table has none", e.Field, e.Time)
}
