package metadata

import (
	"fmt"
	"math"
	"strconv"

	"github.com/hwinj/hwinj/internal/constants"
	"github.com/hwinj/hwinj/internal/gps"
	"github.com/hwinj/hwinj/internal/ligolw"
)

// Record is the part of a sim_inspiral row that depends on when the injection happens.
// Fields that are unset in the row stay unset through a correction.
type Record struct {
	ProcessID    string
	SimulationID string

	GeocentEndTime Optional[gps.Time]
	HEndTime       Optional[gps.Time]
	LEndTime       Optional[gps.Time]

	// Longitude is the right ascension in radians, in [0, 2π).
	Longitude Optional[float64]
}

// Corrected returns r with its times moved from the waveform epoch to the scheduled one.
//
// Every set time keeps its offset from waveformStart, now counted from scheduleTime. When the
// geocentric time and longitude are both set, the longitude is rotated by the sidereal angle
// covered by the geocentric time shift.
// A set time before waveformStart fails with a *TimeOrderError and r is left untouched.
func (r Record) Corrected(waveformStart, scheduleTime gps.Time) (Record, error) {
	fields := []struct {
		name string
		v    *Optional[gps.Time]
	}{
		{geocentEndTime.sec, &r.GeocentEndTime},
		{hEndTime.sec, &r.HEndTime},
		{lEndTime.sec, &r.LEndTime},
	}

	for _, f := range fields {
		t, ok := f.v.Get()
		if ok && t.Before(waveformStart) {
			return Record{}, &TimeOrderError{Field: f.name, Time: t, WaveformStart: waveformStart}
		}
	}

	origGeocent, hasGeocent := r.GeocentEndTime.Get()
	for _, f := range fields {
		t, ok := f.v.Get()
		if !ok {
			continue
		}
		*f.v = Some(scheduleTime.Add(t.Sub(waveformStart)))
	}

	ra, hasRA := r.Longitude.Get()
	if hasGeocent && hasRA {
		newGeocent, _ := r.GeocentEndTime.Get()
		r.Longitude = Some(rotateRA(ra, newGeocent.Sub(origGeocent).Seconds()))
	}

	return r, nil
}

// rotateRA returns the right ascension ra after the Earth rotated for shift seconds.
func rotateRA(ra, shift float64) float64 {
	return floorMod(ra+constants.TwoPi/constants.SiderealDay*floorMod(shift, constants.SiderealDay), constants.TwoPi)
}

// floorMod returns x modulo m with the sign of m.
func floorMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	// r+m rounds to m for tiny negative r.
	if r >= m {
		r = 0
	}
	return r
}

// readRecord extracts the record of the only row of t.
func readRecord(t *ligolw.Table) (r Record, err error) {
	if c, ok := t.Get(0, colProcessID); ok {
		r.ProcessID = c.Value
	}
	if c, ok := t.Get(0, colSimulationID); ok {
		r.SimulationID = c.Value
	}

	if r.GeocentEndTime, err = readTime(t, geocentEndTime); err != nil {
		return Record{}, err
	}
	if r.HEndTime, err = readTime(t, hEndTime); err != nil {
		return Record{}, err
	}
	if r.LEndTime, err = readTime(t, lEndTime); err != nil {
		return Record{}, err
	}

	c, ok := t.Get(0, colLongitude)
	if ok && !c.Null {
		ra, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return Record{}, fmt.Errorf("invalid %s value %q: %v", colLongitude, c.Value, err)
		}
		r.Longitude = Some(ra)
	}

	return r, nil
}

// readTime reads a time made of a seconds column and an optional nanoseconds column.
// The time is unset when the seconds column is missing or null.
func readTime(t *ligolw.Table, f timeField) (Optional[gps.Time], error) {
	c, ok := t.Get(0, f.sec)
	if !ok || c.Null {
		return None[gps.Time](), nil
	}
	sec, err := strconv.ParseInt(c.Value, 10, 64)
	if err != nil {
		return None[gps.Time](), fmt.Errorf("invalid %s value %q: %v", f.sec, c.Value, err)
	}

	var ns int64
	if c, ok := t.Get(0, f.ns); ok && !c.Null {
		if ns, err = strconv.ParseInt(c.Value, 10, 64); err != nil {
			return None[gps.Time](), fmt.Errorf("invalid %s value %q: %v", f.ns, c.Value, err)
		}
	}

	return Some(gps.New(sec, ns)), nil
}

// write stores the set fields of r into the only row of t.
// A fractional time for a field without a nanoseconds column fails with a *PrecisionError
// before t is modified.
func (r Record) write(t *ligolw.Table) error {
	times := []struct {
		field timeField
		v     Optional[gps.Time]
	}{
		{geocentEndTime, r.GeocentEndTime},
		{hEndTime, r.HEndTime},
		{lEndTime, r.LEndTime},
	}
	for _, f := range times {
		if tm, ok := f.v.Get(); ok && tm.NS != 0 && t.ColumnIndex(f.field.ns) < 0 {
			return &PrecisionError{Field: f.field.sec, Time: tm}
		}
	}

	for _, f := range times {
		if err := writeTime(t, f.field, f.v); err != nil {
			return err
		}
	}

	ra, ok := r.Longitude.Get()
	if !ok {
		return nil
	}
	bits := 64
	if i := t.ColumnIndex(colLongitude); i >= 0 && t.Columns[i].Type == "real_4" {
		bits = 32
	}
	return t.Set(0, colLongitude, ligolw.ValueCell(strconv.FormatFloat(ra, 'g', -1, bits)))
}

func writeTime(t *ligolw.Table, f timeField, v Optional[gps.Time]) error {
	tm, ok := v.Get()
	if !ok {
		return nil
	}
	if err := t.Set(0, f.sec, ligolw.ValueCell(strconv.FormatInt(tm.Sec, 10))); err != nil {
		return err
	}
	if t.ColumnIndex(f.ns) < 0 {
		return nil
	}
	return t.Set(0, f.ns, ligolw.ValueCell(strconv.FormatInt(tm.NS, 10)))
}
