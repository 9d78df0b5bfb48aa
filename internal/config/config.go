// Package config loads the donatraded configuration from a TOML file,
// DONATRADE_* environment variables and built-in defaults.
package config

import (
	"path/filepath"
	"time"

	addresscodec "github.com/adipundir/donatrade/internal/codec/address-codec"
	"github.com/adipundir/donatrade/internal/storage/relationaldb"
)

// Config represents the complete donatraded configuration
type Config struct {
	Server  ServerConfig  `toml:"server" mapstructure:"server"`
	Log     LogConfig     `toml:"log" mapstructure:"log"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	Journal JournalConfig `toml:"journal" mapstructure:"journal"`
	Engine  EngineConfig  `toml:"engine" mapstructure:"engine"`
	Oracle  OracleConfig  `toml:"oracle" mapstructure:"oracle"`
	Faucet  FaucetConfig  `toml:"faucet" mapstructure:"faucet"`

	configPath string `toml:"-" mapstructure:"-"`
}

// ServerConfig represents the [server] section
type ServerConfig struct {
	// Listen is the address serving JSON-RPC on "/" and WebSocket on "/ws"
	Listen  string        `toml:"listen" mapstructure:"listen"`
	Timeout time.Duration `toml:"timeout" mapstructure:"timeout"`

	// ReplayWindow is how many applied submissions are remembered
	ReplayWindow int `toml:"replay_window" mapstructure:"replay_window"`

	// SendQueueLimit bounds the per-connection WebSocket event queue
	SendQueueLimit int `toml:"send_queue_limit" mapstructure:"send_queue_limit"`
}

// LogConfig represents the [log] section
type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
}

// StorageConfig represents the [storage] section holding ledger state
type StorageConfig struct {
	Backend   string `toml:"backend" mapstructure:"backend"` // pebble, leveldb, bbolt or memory
	Path      string `toml:"path" mapstructure:"path"`
	CacheSize int    `toml:"cache_size" mapstructure:"cache_size"`
}

// JournalConfig represents the [journal] section. The database settings
// are those of relationaldb.Config.
type JournalConfig struct {
	Enabled             bool `toml:"enabled" mapstructure:"enabled"`
	relationaldb.Config `toml:",inline" mapstructure:",squash"`
}

// EngineConfig represents the [engine] section
type EngineConfig struct {
	// PlatformAdmin is the classic address allowed to bootstrap the platform
	PlatformAdmin string `toml:"platform_admin" mapstructure:"platform_admin"`
	VaultBump     uint8  `toml:"vault_bump" mapstructure:"vault_bump"`
}

// OracleConfig represents the [oracle] section
type OracleConfig struct {
	Type     string   `toml:"type" mapstructure:"type"` // memory or bgv
	Auditors []string `toml:"auditors" mapstructure:"auditors"`

	// AllowVolatile lets a node pair a persistent store with an oracle
	// whose keys and ciphertexts live in process memory. Both oracles do.
	AllowVolatile bool `toml:"allow_volatile" mapstructure:"allow_volatile"`

	// BGV parameters, only read when Type is "bgv"
	LogN             int    `toml:"log_n" mapstructure:"log_n"`
	LogQ             []int  `toml:"log_q" mapstructure:"log_q"`
	LogP             []int  `toml:"log_p" mapstructure:"log_p"`
	PlaintextModulus uint64 `toml:"plaintext_modulus" mapstructure:"plaintext_modulus"`
}

// FaucetConfig represents the [faucet] section
type FaucetConfig struct {
	Enabled bool `toml:"enabled" mapstructure:"enabled"`
}

// DefaultConfigFile is the configuration file name looked up in a directory
const DefaultConfigFile = "donatrade.toml"

// ConfigPathFromDir returns the configuration file path inside configDir
func ConfigPathFromDir(configDir string) string {
	return filepath.Join(configDir, DefaultConfigFile)
}

// GetConfigPath returns the path the configuration was read from, or ""
// when only defaults and the environment were used.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// PlatformAdminID decodes the platform admin address. An empty address
// yields the zero account, which leaves bootstrap open.
func (c *EngineConfig) PlatformAdminID() ([20]byte, error) {
	if c.PlatformAdmin == "" {
		return [20]byte{}, nil
	}
	return addresscodec.DecodeAccountID(c.PlatformAdmin)
}

// AuditorIDs decodes the auditor addresses.
func (c *OracleConfig) AuditorIDs() ([][20]byte, error) {
	ids := make([][20]byte, 0, len(c.Auditors))
	for _, a := range c.Auditors {
		id, err := addresscodec.DecodeAccountID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// JournalDatabase returns a copy of the journal database settings.
func (c *JournalConfig) JournalDatabase() *relationaldb.Config {
	db := c.Config
	return &db
}
