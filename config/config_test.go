package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	require.NoError(t, config.Validate())
	assert.True(t, config.Analyzer.ContinueOnError)
	assert.True(t, config.Analyzer.TrackColumns)
	assert.Equal(t, 100*time.Millisecond, config.Analyzer.WatchDebounce)
	assert.NotEmpty(t, config.Project.Base)
}

func TestValidate(t *testing.T) {
	config := DefaultConfig()
	config.Project.Base = ""
	assert.Error(t, config.Validate())

	config = DefaultConfig()
	config.Project.Base = "not-an-iri"
	assert.Error(t, config.Validate())

	config = DefaultConfig()
	config.Analyzer.WatchDebounce = -time.Second
	assert.Error(t, config.Validate())
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "semlix.yaml")

	config := DefaultConfig()
	config.Project.Base = "https://example.com/code/"
	config.Project.Patterns = []string{"lib/**/*.ex"}
	config.Shapes.Paths = []string{"shapes/modules.yaml"}
	config.NATS.URL = "nats://localhost:4222"
	config.Hosting.Host = "gitlab.com"
	config.Hosting.Owner = "myorg"
	config.Hosting.Repo = "my_app"

	require.NoError(t, config.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/code/", loaded.Project.Base)
	assert.Equal(t, []string{"lib/**/*.ex"}, loaded.Project.Patterns)
	assert.Equal(t, []string{"shapes/modules.yaml"}, loaded.Shapes.Paths)
	assert.Equal(t, "nats://localhost:4222", loaded.NATS.URL)
	assert.Equal(t, "gitlab.com", loaded.Hosting.Host)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project: [not a map"), 0o644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.NATS.URL = "nats://base:4222"

	other := DefaultConfig()
	other.Project.Path = "/tmp/proj"
	other.Project.Base = "https://example.com/code/"
	other.Analyzer.WatchDebounce = 250 * time.Millisecond
	other.Shapes.Paths = []string{"shapes/a.yaml"}
	other.Hosting.Host = "bitbucket.org"

	base.Merge(other)

	assert.Equal(t, "/tmp/proj", base.Project.Path)
	assert.Equal(t, "https://example.com/code/", base.Project.Base)
	assert.Equal(t, 250*time.Millisecond, base.Analyzer.WatchDebounce)
	assert.Equal(t, []string{"shapes/a.yaml"}, base.Shapes.Paths)
	assert.Equal(t, "bitbucket.org", base.Hosting.Host)
	assert.Equal(t, "nats://base:4222", base.NATS.URL, "other's empty URL does not clear base")
}

func TestMergeNil(t *testing.T) {
	config := DefaultConfig()
	config.Merge(nil)
	require.NoError(t, config.Validate())
}

func TestMergeDefaultBaseDoesNotOverride(t *testing.T) {
	base := DefaultConfig()
	base.Project.Base = "https://example.com/code/"

	base.Merge(DefaultConfig())
	assert.Equal(t, "https://example.com/code/", base.Project.Base)
}
