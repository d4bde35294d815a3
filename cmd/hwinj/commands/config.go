package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/hwinj/hwinj/internal/constants"
	"github.com/hwinj/hwinj/internal/gps"
	"github.com/hwinj/hwinj/internal/gracedb"
	"github.com/hwinj/hwinj/internal/reporter"
	"github.com/hwinj/hwinj/internal/states"
	"github.com/spf13/pflag"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeHook reads durations and comma separated lists given as strings by the environment
// or the configuration file.
var decodeHook = mapstructure.ComposeDecodeHookFunc(
	mapstructure.StringToTimeDurationHookFunc(),
	mapstructure.StringToSliceHookFunc(","),
)

// appConfig holds the configuration shared by all commands.
type appConfig struct {
	Verbosity   int           `mapstructure:"verbose"`
	JSONLogs    bool          `mapstructure:"json-logs"`
	Instruments []string      `mapstructure:"ifos" validate:"min=1,dive,len=2"`
	States      string        `mapstructure:"states"`
	GraceDB     gracedbConfig `mapstructure:",squash"`
}

// gracedbConfig holds the event database connection settings.
type gracedbConfig struct {
	URL     string        `mapstructure:"gracedb-url" validate:"required,url"`
	Cert    string        `mapstructure:"gracedb-cert" validate:"required_with=Key"`
	Key     string        `mapstructure:"gracedb-key" validate:"required_with=Cert"`
	Timeout time.Duration `mapstructure:"gracedb-timeout" validate:"gt=0"`
	DryRun  bool          `mapstructure:"dry-run"`
}

func installGraceDBFlags(fs *pflag.FlagSet, c *gracedbConfig) {
	fs.StringVar(&c.URL, "gracedb-url", constants.DefaultServerURL, "event database API base URL")
	fs.StringVar(&c.Cert, "gracedb-cert", "", "client certificate file, defaults to X509_USER_CERT")
	fs.StringVar(&c.Key, "gracedb-key", "", "client certificate key file, defaults to X509_USER_KEY")
	fs.DurationVar(&c.Timeout, "gracedb-timeout", 30*time.Second, "event database response timeout")
	fs.BoolVar(&c.DryRun, "dry-run", false, "do not send anything to the event database")
}

// newReporter returns a Reporter sending to the configured event database.
func (a App) newReporter() (*reporter.Reporter, error) {
	c := a.config.GraceDB

	opts := []gracedb.Options{
		gracedb.WithBaseServerURL(c.URL),
		gracedb.WithResponseTimeout(c.Timeout),
		gracedb.WithDryRun(c.DryRun),
	}
	if c.Cert != "" {
		opts = append(opts, gracedb.WithCertificate(c.Cert, c.Key))
	}

	client, err := gracedb.New(opts...)
	if err != nil {
		return nil, err
	}
	return reporter.New(client), nil
}

// stateTable returns the configured state table. Without one, the table in the user
// configuration directory is used if it exists, and the built-in table otherwise.
func (a App) stateTable() (states.Table, error) {
	p := a.config.States
	if p == "" {
		p = filepath.Join(constants.GetDefaultConfigPath(), constants.StatesFileName)
		if _, err := os.Stat(p); err != nil {
			slog.Debug("No state table file, using built-in states", "path", p)
			return states.Default(), nil
		}
	}

	slog.Info("Loading state table", "path", p)
	return states.Load(p)
}

// gpsNow returns the GPS time given as seconds, or the current GPS time if it is zero.
func gpsNow(seconds float64) gps.Time {
	if seconds > 0 {
		return gps.FromSeconds(seconds)
	}
	return gps.Now()
}
