package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRouterHostsEmptyPath(t *testing.T) {
	hosts, err := LoadRouterHosts("")
	require.NoError(t, err)
	assert.Empty(t, hosts)
}

func TestLoadRouterHostsParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hosts.yaml")
	content := "osrm:\n  host: localhost\n  port: 5000\nors:\n  host: localhost\n  port: 8080\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	hosts, err := LoadRouterHosts(path)
	require.NoError(t, err)
	require.Contains(t, hosts, "osrm")
	assert.Equal(t, "localhost", hosts["osrm"].Host)
	assert.Equal(t, 5000, hosts["osrm"].Port)
	assert.Equal(t, 8080, hosts["ors"].Port)
}

func TestLoadRouterHostsMissingFile(t *testing.T) {
	_, err := LoadRouterHosts("/nonexistent/path/hosts.yaml")
	assert.Error(t, err)
}
