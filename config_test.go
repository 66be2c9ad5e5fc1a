package smolweb_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/knowfox/smolweb"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	var cfg *smolweb.Config
	cfg = cfg.WithDefaults()
	require.Equal(t, "kennedy.gemi.dev", cfg.SearchHost)
	require.Equal(t, 1965, cfg.SearchPort)
	require.Equal(t, "gemini://gemini.circumlunar.space/", cfg.StartPage)
	require.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	require.Equal(t, 30*time.Second, cfg.ReadIdleTimeout)
	require.NotNil(t, cfg.InsecureSkipVerify)
	require.True(t, *cfg.InsecureSkipVerify)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smolweb.yaml")
	err := os.WriteFile(path, []byte(`
search_host: search.example
search_port: 1966
connect_timeout: 3s
read_idle_timeout: -1s
insecure_skip_verify: false
`), 0o600)
	require.NoError(t, err)

	cfg, err := smolweb.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "search.example", cfg.SearchHost)
	require.Equal(t, 1966, cfg.SearchPort)
	require.Equal(t, 3*time.Second, cfg.ConnectTimeout)
	require.Equal(t, -time.Second, cfg.ReadIdleTimeout)
	require.False(t, *cfg.InsecureSkipVerify)
	require.Equal(t, smolweb.DefaultStartPage, cfg.StartPage)

	_, err = smolweb.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
