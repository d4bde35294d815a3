// Package cli provides the helpers shared by the command line entry points.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// InitViperConfig loads the configuration file of cmdName into vip and binds its environment.
//
// The file given by the config flag is used when set. Otherwise a file named after cmdName is
// looked for in the current directory, /etc/<cmdName>, /usr/local/etc/<cmdName> and the
// directory of the executable. A missing file is not an error.
//
// Environment variables are prefixed with the upper cased command name. The rest of the name
// matches a configuration key where dots and dashes are replaced by underscores: HWINJ_GRACEDB_URL
// sets gracedb.url. Keys must be known to vip, through a default or a bound flag, to be matched.
func InitViperConfig(cmdName string, cmd *cobra.Command, vip *viper.Viper) error {
	if v, err := cmd.Flags().GetString("config"); err == nil && v != "" {
		vip.SetConfigFile(v)
	} else {
		vip.SetConfigName(cmdName)
		vip.AddConfigPath(".")
		vip.AddConfigPath("/etc/" + cmdName)
		vip.AddConfigPath("/usr/local/etc/" + cmdName)

		if binPath, err := os.Executable(); err != nil {
			slog.Warn("Failed to get current executable path, not adding it as a config dir", "error", err)
		} else {
			vip.AddConfigPath(filepath.Dir(binPath))
		}
	}

	if err := vip.ReadInConfig(); err != nil {
		var e viper.ConfigFileNotFoundError
		if !errors.As(err, &e) {
			return fmt.Errorf("invalid configuration file: %w", err)
		}
		slog.Info("No configuration file, using defaults, environment and flags only")
	} else {
		slog.Info("Using configuration file", "file", vip.ConfigFileUsed())
	}

	prefix := envName(cmdName) + "_"
	known := make(map[string]string)
	for _, k := range vip.AllKeys() {
		known[prefix+envName(k)] = k
	}

	for _, e := range os.Environ() {
		name, _, _ := strings.Cut(e, "=")
		if !strings.HasPrefix(name, prefix) {
			continue
		}

		k, ok := known[name]
		if !ok {
			slog.Warn("Ignoring environment variable matching no configuration key", "name", name)
			continue
		}
		if err := vip.BindEnv(k, name); err != nil {
			return fmt.Errorf("could not bind environment variable %s: %w", name, err)
		}
	}

	return nil
}

// envName returns the environment variable form of a configuration key.
func envName(key string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// InstallConfigFlag adds a config flag to the command.
func InstallConfigFlag(cmd *cobra.Command) *string {
	return cmd.PersistentFlags().String("config", "", "use a specific configuration file")
}
