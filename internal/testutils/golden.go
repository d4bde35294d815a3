package testutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// updateGoldenEnv is the environment variable that, when set to a non empty value, rewrites golden files.
const updateGoldenEnv = "TESTS_UPDATE_GOLDEN"

type goldenOptions struct {
	path string
}

// GoldenOption is a supported option reference to change the golden files comparison.
type GoldenOption func(*goldenOptions)

// WithGoldenPath overrides the default path for golden files used.
func WithGoldenPath(path string) GoldenOption {
	return func(o *goldenOptions) {
		if path != "" {
			o.path = path
		}
	}
}

// GoldenPath returns the golden path for the provided test.
// Subtests are stored in a subdirectory named after their parent test.
func GoldenPath(t *testing.T) string {
	t.Helper()

	path := filepath.Join("testdata", "golden")
	parts := strings.Split(t.Name(), "/")
	for _, p := range parts {
		path = filepath.Join(path, normalizeName(p))
	}
	return path
}

func normalizeName(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	return strings.ToLower(name)
}

// LoadWithUpdateFromGolden loads the element from a plaintext golden file.
// It will update the file if the update environment variable is set prior to loading it.
func LoadWithUpdateFromGolden(t *testing.T, data string, opts ...GoldenOption) string {
	t.Helper()

	o := goldenOptions{path: GoldenPath(t)}
	for _, opt := range opts {
		opt(&o)
	}

	if os.Getenv(updateGoldenEnv) != "" {
		t.Logf("updating golden file %s", o.path)
		require.NoError(t, os.MkdirAll(filepath.Dir(o.path), 0750), "Cannot create directory for updating golden files")
		require.NoError(t, os.WriteFile(o.path, []byte(data), 0600), "Cannot write golden file")
	}

	want, err := os.ReadFile(o.path)
	require.NoError(t, err, "Cannot load golden file")

	return strings.ReplaceAll(string(want), "\r\n", "\n")
}

// LoadWithUpdateFromGoldenYAML load the generic element from a YAML serialized golden file.
// It will update the file if the update environment variable is set prior to loading it.
func LoadWithUpdateFromGoldenYAML[E any](t *testing.T, got E, opts ...GoldenOption) E {
	t.Helper()

	t.Logf("Serializing object for golden file")
	data, err := yaml.Marshal(got)
	require.NoError(t, err, "Cannot serialize provided object")
	want := LoadWithUpdateFromGolden(t, string(data), opts...)

	var wantDeserialized E
	err = yaml.Unmarshal([]byte(want), &wantDeserialized)
	require.NoError(t, err, "Cannot create expanded policy objects from golden file")

	return wantDeserialized
}
