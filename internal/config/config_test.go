package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adipundir/donatrade/internal/storage/relationaldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "", config.GetConfigPath())
	assert.Equal(t, "127.0.0.1:5005", config.Server.Listen)
	assert.Equal(t, 30*time.Second, config.Server.Timeout)
	assert.Equal(t, 65536, config.Server.ReplayWindow)
	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "memory", config.Storage.Backend)
	assert.False(t, config.Journal.Enabled)
	assert.Equal(t, relationaldb.DriverSQLite, config.Journal.Driver)
	assert.Equal(t, 10*time.Second, config.Journal.DefaultTimeout)
	assert.Equal(t, uint8(255), config.Engine.VaultBump)
	assert.Equal(t, "memory", config.Oracle.Type)
	assert.False(t, config.Oracle.AllowVolatile)
	assert.Equal(t, 13, config.Oracle.LogN)
	assert.False(t, config.Faucet.Enabled)
	assert.NoError(t, config.CheckNode())

	admin, err := config.Engine.PlatformAdminID()
	require.NoError(t, err)
	assert.Equal(t, [20]byte{}, admin)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join("testdata", DefaultConfigFile)
	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, path, config.GetConfigPath())
	assert.Equal(t, "127.0.0.1:6006", config.Server.Listen)
	assert.Equal(t, 15*time.Second, config.Server.Timeout)
	assert.Equal(t, 1024, config.Server.ReplayWindow)
	assert.Equal(t, 64, config.Server.SendQueueLimit)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "leveldb", config.Storage.Backend)
	assert.Equal(t, 128, config.Storage.CacheSize)

	db := config.Journal.JournalDatabase()
	assert.Equal(t, relationaldb.DriverPostgres, db.Driver)
	assert.Equal(t, "db.internal", db.Host)
	assert.Equal(t, 5433, db.Port)
	assert.Equal(t, "journal", db.Database)
	assert.Equal(t, 8, db.MaxOpenConns)
	assert.Equal(t, 5*time.Second, db.DefaultTimeout)
	assert.Equal(t, time.Hour, db.ConnMaxLifetime)

	admin, err := config.Engine.PlatformAdminID()
	require.NoError(t, err)
	var want [20]byte
	for i := range want {
		want[i] = 0x01
	}
	assert.Equal(t, want, admin)
	assert.Equal(t, uint8(254), config.Engine.VaultBump)

	auditors, err := config.Oracle.AuditorIDs()
	require.NoError(t, err)
	require.Len(t, auditors, 1)
	assert.Equal(t, byte(0x02), auditors[0][0])
	assert.True(t, config.Faucet.Enabled)
	assert.True(t, config.Oracle.AllowVolatile)
	assert.NoError(t, config.CheckNode())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DONATRADE_SERVER_LISTEN", "0.0.0.0:7000")
	t.Setenv("DONATRADE_STORAGE_BACKEND", "memory")
	t.Setenv("DONATRADE_SERVER_TIMEOUT", "2s")
	t.Setenv("DONATRADE_FAUCET_ENABLED", "true")

	config, err := LoadConfig(filepath.Join("testdata", DefaultConfigFile))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:7000", config.Server.Listen)
	assert.Equal(t, "memory", config.Storage.Backend)
	assert.Equal(t, 2*time.Second, config.Server.Timeout)
	assert.True(t, config.Faucet.Enabled)
	// untouched keys still come from the file
	assert.Equal(t, "debug", config.Log.Level)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "unknown backend",
			content: "[storage]\nbackend = \"rocksdb\"\n",
			errMsg:  "invalid backend",
		},
		{
			name:    "bad listen address",
			content: "[server]\nlisten = \"nohostport\"\n",
			errMsg:  "invalid listen address",
		},
		{
			name:    "bad log format",
			content: "[log]\nformat = \"xml\"\n",
			errMsg:  "invalid format",
		},
		{
			name:    "bad platform admin",
			content: "[engine]\nplatform_admin = \"not-an-address\"\n",
			errMsg:  "platform_admin",
		},
		{
			name:    "unknown oracle",
			content: "[oracle]\ntype = \"paillier\"\n",
			errMsg:  "invalid type",
		},
		{
			name:    "bgv ring too small",
			content: "[oracle]\ntype = \"bgv\"\nlog_n = 4\n",
			errMsg:  "log_n",
		},
		{
			name:    "journal driver",
			content: "[journal]\ndriver = \"mysql\"\n",
			errMsg:  "unsupported database driver",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultConfigFile)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfig_DisabledJournalSkipsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	content := "[journal]\nenabled = false\ndriver = \"mysql\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, config.Journal.Enabled)
}

func TestCheckNode(t *testing.T) {
	const admin = "D5EQRCnPMXmRvUoZwC7gu7fYspean3PQ9a"
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "memory store",
			content: "[storage]\nbackend = \"memory\"\n",
		},
		{
			name:    "persistent store without opt in",
			content: "[storage]\nbackend = \"pebble\"\npath = \"/tmp/x\"\n[engine]\nplatform_admin = \"" + admin + "\"\n",
			wantErr: ErrVolatileOracle,
		},
		{
			name:    "persistent store with bgv oracle",
			content: "[storage]\nbackend = \"bbolt\"\npath = \"/tmp/x\"\n[oracle]\ntype = \"bgv\"\n",
			wantErr: ErrVolatileOracle,
		},
		{
			name:    "persistent store without admin",
			content: "[storage]\nbackend = \"leveldb\"\npath = \"/tmp/x\"\n[oracle]\nallow_volatile = true\n",
			wantErr: ErrOpenBootstrap,
		},
		{
			name:    "persistent store opted in",
			content: "[storage]\nbackend = \"pebble\"\npath = \"/tmp/x\"\n[engine]\nplatform_admin = \"" + admin + "\"\n[oracle]\nallow_volatile = true\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultConfigFile)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			config, err := LoadConfig(path)
			require.NoError(t, err)
			if tt.wantErr == nil {
				assert.NoError(t, config.CheckNode())
				return
			}
			assert.ErrorIs(t, config.CheckNode(), tt.wantErr)
		})
	}
}

func TestConfigPathFromDir(t *testing.T) {
	assert.Equal(t, filepath.Join("etc", "donatrade.toml"), ConfigPathFromDir("etc"))
}
