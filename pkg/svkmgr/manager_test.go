package svkmgr

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/storageresearch/svk/pkg/svk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNewManagerDefaults(t *testing.T) {
	mgr, err := NewManager(map[string]interface{}{"logger": quietLogger()})
	require.NoError(t, err)
	defer mgr.Destroy()

	assert.Equal(t, "http://localhost:3000", mgr.Cfg.GetString("server.url"))
	assert.Equal(t, 30*time.Second, mgr.Cfg.GetDuration("server.timeout"))
	assert.Equal(t, "http", mgr.Cfg.GetString("default-provider"))
	assert.NotNil(t, mgr.Store)

	mode, err := mgr.RetrievalMode()
	require.NoError(t, err)
	assert.Equal(t, svk.Whole, mode)
}

func TestNewManagerOverrides(t *testing.T) {
	mgr, err := NewManager(map[string]interface{}{
		"logger":     quietLogger(),
		"server-url": "http://example.com:9000",
		"mode":       "download-chunked",
	})
	require.NoError(t, err)
	defer mgr.Destroy()

	assert.Equal(t, "http://example.com:9000", mgr.Cfg.GetString("server.url"))

	mode, err := mgr.RetrievalMode()
	require.NoError(t, err)
	assert.Equal(t, svk.Chunked, mode)
}

func TestNewManagerBadMode(t *testing.T) {
	mgr, err := NewManager(map[string]interface{}{
		"logger": quietLogger(),
		"mode":   "sideways",
	})
	require.NoError(t, err)
	defer mgr.Destroy()

	_, err = mgr.RetrievalMode()
	assert.Error(t, err)
}

func TestNewManagerConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "svk.yaml")
	cfg := "server:\n  url: http://filestore.internal:3000\n  timeout: 5s\nartifactDir: " + dir + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	mgr, err := NewManager(map[string]interface{}{
		"logger":      quietLogger(),
		"config-file": cfgPath,
	})
	require.NoError(t, err)
	defer mgr.Destroy()

	assert.Equal(t, "http://filestore.internal:3000", mgr.Cfg.GetString("server.url"))
	assert.Equal(t, 5*time.Second, mgr.Cfg.GetDuration("server.timeout"))
	assert.Equal(t, dir, mgr.ArtifactDir())
}

func TestNewManagerUnknownProvider(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "svk.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("default-provider: carrier-pigeon\n"), 0644))

	_, err := NewManager(map[string]interface{}{
		"logger":      quietLogger(),
		"config-file": cfgPath,
	})
	assert.Error(t, err)
}

func TestNewManagerBadOptionTypes(t *testing.T) {
	_, err := NewManager(map[string]interface{}{"config-file": 42})
	assert.Error(t, err)

	_, err = NewManager(map[string]interface{}{"logger": "not a logger"})
	assert.Error(t, err)
}
