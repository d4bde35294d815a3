// Package constants is responsible for defining the constants used in the application.
// It also provides utility functions to get the default configuration path.
package constants

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
)

const (
	// CmdName is the name of the command line tool.
	CmdName = "hwinj"

	// DefaultAppFolder is the name of the default root folder.
	DefaultAppFolder = "hwinj"

	// DefaultLogLevel is the default log level selected without any verbosity flags.
	DefaultLogLevel = slog.LevelWarn

	// NoMetadataToken is the schedule file token meaning that an injection has no metadata file.
	NoMetadataToken = "None"

	// IfoPlaceholder is the substitution slot for the instrument code in waveform paths.
	IfoPlaceholder = "{ifo}"

	// SiderealDay is the rotation period of the Earth relative to distant stars, in seconds.
	SiderealDay = 86164.09054

	// TwoPi is one full turn in radians.
	TwoPi = 2 * math.Pi

	// SimInspiralTable is the name of the LIGO_LW table carrying injection metadata.
	SimInspiralTable = "sim_inspiral"

	// DefaultPipeline is the event database pipeline tag for hardware injections.
	DefaultPipeline = "HardwareInjection"

	// DefaultGroup is the event database group used when no state mapping applies.
	DefaultGroup = "Test"

	// DefaultLogTag is the tag attached to free text event log entries.
	DefaultLogTag = "analyst comments"

	// DefaultEventFileName is the file name given to the uploaded metadata payload.
	DefaultEventFileName = "hwinj.xml"

	// DefaultServerURL is the base URL of the event database REST API.
	DefaultServerURL = "https://gracedb.ligo.org/api/"

	// DefaultSampleRate is the sample rate in Hz of the excitation channel and waveform files.
	DefaultSampleRate = 16384

	// DefaultImminentSeconds is how far in advance an injection is considered imminent.
	DefaultImminentSeconds = 300

	// StatesFileName is the default base name of the injection state table.
	StatesFileName = "states.toml"
)

type options struct {
	baseDir func() (string, error)
}

type option func(*options)

// GetDefaultConfigPath is the default path to the configuration directory.
func GetDefaultConfigPath(opts ...option) string {
	o := options{baseDir: os.UserConfigDir}
	for _, opt := range opts {
		opt(&o)
	}

	return filepath.Join(getBaseDir(o.baseDir), DefaultAppFolder)
}

// getBaseDir is a helper function to handle the case where the baseDir function returns an error, and instead return an empty string.
func getBaseDir(baseDirFunc func() (string, error)) string {
	dir, err := baseDirFunc()
	if err != nil {
		return ""
	}
	return dir
}
