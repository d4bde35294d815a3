package commands

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type (
	AppConfig     = appConfig
	GraceDBConfig = gracedbConfig
)

// Config returns the configuration of the app.
func (a App) Config() AppConfig {
	return a.config
}

// NewForTests creates a new App running args and writing its results to out.
func NewForTests(t *testing.T, out io.Writer, args ...string) *App {
	t.Helper()

	a, err := New()
	require.NoError(t, err, "Setup: failed to create app")
	a.cmd.SetArgs(args)
	a.cmd.SetOut(out)
	a.cmd.SetErr(io.Discard)
	return a
}

// SetArgs set some arguments on root command for tests.
func (a *App) SetArgs(args ...string) {
	a.cmd.SetArgs(args)
}
