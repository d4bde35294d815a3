// Package waveform reads the prerecorded time series played during hardware injections.
package waveform

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hwinj/hwinj/internal/fileutils"
)

// Format selects how a waveform file is decoded.
type Format string

const (
	// ASCII is a text file with one sample per line.
	ASCII Format = "ascii"
)

var (
	// ErrUnknownFormat is returned when reading a waveform in an unsupported format.
	ErrUnknownFormat = errors.New("unknown waveform format")
	// ErrNoSamples is returned when a waveform file holds no sample.
	ErrNoSamples = errors.New("waveform has no samples")
)

// ReadError is returned when a waveform file cannot be read or decoded.
type ReadError struct {
	Path string
	// Line is the 1-based line of the failure, 0 when the failure is not tied to a line.
	Line int
	Err  error
}

func (e *ReadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("could not read waveform %s, line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("could not read waveform %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Read returns all samples of the waveform file at path.
// Blank lines and lines starting with # are ignored.
func Read(path string, format Format) ([]float64, error) {
	if format != ASCII {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("%w: %q", ErrUnknownFormat, format)}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	var samples []float64
	scanner := bufio.NewScanner(fileutils.NewTextReader(f))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != 1 {
			return nil, &ReadError{Path: path, Line: line, Err: fmt.Errorf("expected a single column, found %d", len(fields))}
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, &ReadError{Path: path, Line: line, Err: err}
		}
		samples = append(samples, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	if len(samples) == 0 {
		return nil, &ReadError{Path: path, Err: ErrNoSamples}
	}

	slog.Debug("Read waveform", "file", path, "samples", len(samples))
	return samples, nil
}

// ErrInvalidName is returned when a waveform file name does not follow IFO-TAG-START-DURATION.EXT.
var ErrInvalidName = errors.New("invalid waveform file name")

// Name is the information carried by a waveform file name.
type Name struct {
	IFO string
	Tag string
	// Start is the GPS time the waveform was generated for.
	Start float64
	// Duration is the length of the waveform in seconds.
	Duration float64
}

// ParseName decodes the base name of path, formatted as IFO-TAG-START-DURATION.EXT.
func ParseName(path string) (Name, error) {
	base := filepath.Base(path)
	parts := strings.Split(base, "-")
	if len(parts) != 4 {
		return Name{}, fmt.Errorf("%w %q: expected 4 fields separated by -, found %d", ErrInvalidName, base, len(parts))
	}

	start, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Name{}, fmt.Errorf("%w %q: start time: %v", ErrInvalidName, base, err)
	}
	dur := strings.TrimSuffix(parts[3], filepath.Ext(parts[3]))
	duration, err := strconv.ParseFloat(dur, 64)
	if err != nil {
		return Name{}, fmt.Errorf("%w %q: duration: %v", ErrInvalidName, base, err)
	}

	return Name{IFO: parts[0], Tag: parts[1], Start: start, Duration: duration}, nil
}
