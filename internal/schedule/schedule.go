// Package schedule reads the hardware injection schedule.
//
// A schedule is a text file with one injection per line, made of six space separated fields:
//
//	schedule_time schedule_state observation_mode scale_factor waveform_path metadata_path
//
// Blank lines and lines starting with # are ignored. metadata_path is None for injections
// without a metadata file. Paths may use {ifo} in place of the instrument code.
package schedule

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hwinj/hwinj/internal/constants"
	"github.com/hwinj/hwinj/internal/fileutils"
	"github.com/hwinj/hwinj/internal/gps"
	"github.com/ubuntu/decorate"
)

// fieldCount is the number of fields of a schedule line.
const fieldCount = 6

// FormatError is returned when a schedule line cannot be parsed.
type FormatError struct {
	// Line is the 1-based number of the offending line.
	Line int
	Text string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid schedule line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

type timeProvider interface {
	Now() gps.Time
}

type realTimeProvider struct{}

func (realTimeProvider) Now() gps.Time {
	return gps.Now()
}

type options struct {
	timeProvider timeProvider
}

// Options represents an optional function to override schedule reading default values.
type Options func(*options)

type fixedTime gps.Time

func (t fixedTime) Now() gps.Time {
	return gps.Time(t)
}

// WithNow makes the schedule discard injections up to t instead of the current GPS time.
func WithNow(t gps.Time) Options {
	return func(o *options) {
		o.timeProvider = fixedTime(t)
	}
}

// Read parses the schedule file at path.
//
// Injections are returned in file order. Only injections scheduled strictly after the current
// GPS time are kept. A malformed line rejects the whole file with a *FormatError.
func Read(path string, args ...Options) (injs []Injection, err error) {
	defer decorate.OnError(&err, "could not read schedule %s", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f, args...)
}

// Parse parses a schedule from r. See Read.
func Parse(r io.Reader, args ...Options) ([]Injection, error) {
	opts := options{
		timeProvider: realTimeProvider{},
	}
	for _, opt := range args {
		opt(&opts)
	}
	now := opts.timeProvider.Now().Seconds()

	var injs []Injection
	scanner := bufio.NewScanner(fileutils.NewTextReader(r))
	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		inj, err := parseLine(text)
		if err != nil {
			return nil, &FormatError{Line: n, Text: text, Err: err}
		}

		if inj.Time <= now {
			slog.Debug("Skipping past injection", "line", n, "time", inj.Time, "now", now)
			continue
		}
		injs = append(injs, inj)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return injs, nil
}

func parseLine(text string) (inj Injection, err error) {
	fields := strings.Fields(text)
	if len(fields) != fieldCount {
		return Injection{}, fmt.Errorf("expected %d fields, found %d", fieldCount, len(fields))
	}

	if inj.Time, err = parseFinite(fields[0]); err != nil {
		return Injection{}, fmt.Errorf("schedule_time: %v", err)
	}
	inj.State = fields[1]

	switch fields[2] {
	case "0":
	case "1":
		inj.ObservationMode = true
	default:
		return Injection{}, fmt.Errorf("observation_mode must be 0 or 1, got %q", fields[2])
	}

	if inj.ScaleFactor, err = parseFinite(fields[3]); err != nil {
		return Injection{}, fmt.Errorf("scale_factor: %v", err)
	}

	if inj.Waveform, err = ParseTemplate(fields[4]); err != nil {
		return Injection{}, fmt.Errorf("waveform_path: %w", err)
	}

	if fields[5] != constants.NoMetadataToken {
		m, err := ParseTemplate(fields[5])
		if err != nil {
			return Injection{}, fmt.Errorf("metadata_path: %w", err)
		}
		inj.Metadata = &m
	}

	inj.Line = strings.Join(fields, " ")
	return inj, nil
}

// parseFinite parses s as a float, rejecting NaN and infinities.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

// ErrNoImminent is returned when no injection is about to start.
var ErrNoImminent = errors.New("no imminent injection")

// Imminent returns the future injection starting soonest after now, provided it starts less
// than window seconds after now.
func Imminent(injs []Injection, now gps.Time, window float64) (Injection, error) {
	t := now.Seconds()

	var found *Injection
	for i, inj := range injs {
		if inj.Time <= t {
			continue
		}
		if found == nil || inj.Time < found.Time {
			found = &injs[i]
		}
	}

	if found == nil || found.Time-t >= window {
		return Injection{}, ErrNoImminent
	}
	return *found, nil
}
