// Package testutils provides helper functions for testing
package testutils

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

// FlagTestCase describes a flag expected on a cobra command.
type FlagTestCase struct {
	Name       string
	Short      string
	Default    string
	Required   bool
	Filename   bool
	Persistent bool
}

// AssertFlag checks that cmd carries the flag described by tc.
func AssertFlag(t *testing.T, cmd *cobra.Command, tc FlagTestCase) {
	t.Helper()

	var flag *pflag.Flag
	if tc.Persistent {
		flag = cmd.PersistentFlags().Lookup(tc.Name)
	} else {
		flag = cmd.Flags().Lookup(tc.Name)
	}
	if !assert.NotNil(t, flag, "Flag %s should exist", tc.Name) {
		return
	}

	assert.Equal(t, tc.Short, flag.Shorthand, "Unexpected shorthand for flag %s", tc.Name)
	assert.Equal(t, tc.Default, flag.DefValue, "Unexpected default value for flag %s", tc.Name)

	_, required := flag.Annotations[cobra.BashCompOneRequiredFlag]
	assert.Equal(t, tc.Required, required, "Unexpected required state for flag %s", tc.Name)

	_, filename := flag.Annotations[cobra.BashCompFilenameExt]
	assert.Equal(t, tc.Filename, filename, "Unexpected filename completion for flag %s", tc.Name)
}
