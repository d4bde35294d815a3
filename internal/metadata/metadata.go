// Package metadata produces the sim_inspiral documents reported for hardware injections.
//
// A prerecorded waveform comes with a metadata file describing the signal as it was generated.
// Correct moves the times of that description to the scheduled injection time. Empty builds a
// placeholder document for injections without metadata.
package metadata

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/hwinj/hwinj/internal/constants"
	"github.com/hwinj/hwinj/internal/gps"
	"github.com/hwinj/hwinj/internal/ligolw"
	"github.com/hwinj/hwinj/internal/schedule"
	"github.com/ubuntu/decorate"
)

// Correct reads the metadata file at path and returns it with its single sim_inspiral row moved
// from waveformStart to scheduleTime. Both times are GPS seconds.
//
// The document is returned with the rest of its content unchanged. It fails with a *ShapeError
// when the file does not hold exactly one row, with a *TimeOrderError when a time of the row
// is before waveformStart and with a *PrecisionError when a corrected time has a fractional
// second that the table has no nanoseconds column for.
func Correct(path string, waveformStart, scheduleTime float64) (data []byte, err error) {
	defer decorate.OnError(&err, "could not correct metadata")

	doc, err := ligolw.ReadFile(path)
	if err != nil {
		return nil, err
	}

	table, err := doc.Table(constants.SimInspiralTable)
	if errors.Is(err, ligolw.ErrTableNotFound) {
		return nil, &ShapeError{Rows: 0}
	}
	if err != nil {
		return nil, err
	}
	if len(table.Rows) != 1 {
		return nil, &ShapeError{Rows: len(table.Rows)}
	}

	rec, err := readRecord(table)
	if err != nil {
		return nil, err
	}

	corrected, err := rec.Corrected(gps.FromSeconds(waveformStart), gps.FromSeconds(scheduleTime))
	if err != nil {
		return nil, err
	}
	slog.Debug("Corrected metadata", "file", path, "simulation_id", rec.SimulationID,
		"waveform_start", waveformStart, "schedule_time", scheduleTime)

	if err := corrected.write(table); err != nil {
		return nil, err
	}

	return doc.Bytes()
}

// Empty returns a document with a single sim_inspiral row where only the geocentric end time
// is set, to scheduleTime.
//
// Numeric columns are null, text columns are empty and identifiers get fixed placeholder values.
func Empty(scheduleTime float64) ([]byte, error) {
	table := ligolw.NewTable(constants.SimInspiralTable, simInspiralColumns)

	t := gps.FromSeconds(scheduleTime)
	row := make([]ligolw.Cell, len(simInspiralColumns))
	for i, c := range simInspiralColumns {
		switch {
		case c.Name == colProcessID:
			row[i] = ligolw.ValueCell(emptyProcessID)
		case c.Name == colSimulationID:
			row[i] = ligolw.ValueCell(emptySimulationID)
		case c.Name == geocentEndTime.sec:
			row[i] = ligolw.ValueCell(strconv.FormatInt(t.Sec, 10))
		case c.Name == geocentEndTime.ns:
			row[i] = ligolw.ValueCell(strconv.FormatInt(t.NS, 10))
		case c.IsText():
			row[i] = ligolw.ValueCell("")
		default:
			row[i] = ligolw.NullCell()
		}
	}
	if err := table.Append(row); err != nil {
		return nil, err
	}

	doc := ligolw.New()
	doc.AddTable(table)
	return doc.Bytes()
}

// ForInjection returns the document to report for inj on instrument ifo: its corrected
// metadata file, or an empty document when it has none.
func ForInjection(inj schedule.Injection, ifo string) ([]byte, error) {
	path, ok := inj.MetadataPath(ifo)
	if !ok {
		slog.Debug("No metadata file, using an empty document", "schedule_time", inj.Time)
		return Empty(inj.Time)
	}

	start, err := inj.WaveformStartTime(ifo)
	if err != nil {
		return nil, err
	}
	return Correct(path, start, inj.Time)
}
