package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hwinj/hwinj/internal/constants"
	"github.com/hwinj/hwinj/internal/waveform"
)

// ErrInvalidTemplate is returned when a path template holds an unknown placeholder.
var ErrInvalidTemplate = errors.New("invalid path template")

// Template is a file path that may contain the {ifo} placeholder for an instrument code.
type Template string

// ParseTemplate checks that s holds no placeholder other than {ifo}.
func ParseTemplate(s string) (Template, error) {
	rest := strings.ReplaceAll(s, constants.IfoPlaceholder, "")
	if strings.ContainsAny(rest, "{}") {
		return "", fmt.Errorf("%w %q: only %s can be substituted", ErrInvalidTemplate, s, constants.IfoPlaceholder)
	}
	return Template(s), nil
}

// Resolve returns the path for the instrument ifo.
func (t Template) Resolve(ifo string) string {
	return strings.ReplaceAll(string(t), constants.IfoPlaceholder, ifo)
}

// Injection is one scheduled hardware injection.
type Injection struct {
	// Time is the GPS time at which the injection starts.
	Time float64 `yaml:"time"`
	// State is the injection state to enter for this injection.
	State string `yaml:"state"`
	// ObservationMode is true when injecting as if observing, false when commissioning.
	ObservationMode bool `yaml:"observation_mode"`
	// ScaleFactor multiplies the waveform amplitude.
	ScaleFactor float64  `yaml:"scale_factor"`
	Waveform    Template `yaml:"waveform"`
	// Metadata is nil when the injection has no metadata file.
	Metadata *Template `yaml:"metadata,omitempty"`

	// Line is the schedule line the injection was read from.
	Line string `yaml:"line"`
}

// WaveformPath returns the waveform file of the injection for instrument ifo.
func (inj Injection) WaveformPath(ifo string) string {
	return inj.Waveform.Resolve(ifo)
}

// WaveformStartTime returns the GPS time the waveform of instrument ifo was generated for,
// as encoded in its file name.
func (inj Injection) WaveformStartTime(ifo string) (float64, error) {
	name, err := waveform.ParseName(inj.WaveformPath(ifo))
	if err != nil {
		return 0, err
	}
	return name.Start, nil
}

// MetadataPath returns the metadata file of the injection for instrument ifo.
// The second value is false when the injection has no metadata file.
func (inj Injection) MetadataPath(ifo string) (string, bool) {
	if inj.Metadata == nil {
		return "", false
	}
	return inj.Metadata.Resolve(ifo), true
}

func (inj Injection) String() string {
	return inj.Line
}
