package config

import (
	"time"

	"github.com/adipundir/donatrade/internal/oracle/bgv"
	"github.com/spf13/viper"
)

// setDefaults registers a default for every key so environment overrides
// apply even when the file omits the key.
func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.listen", "127.0.0.1:5005")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.replay_window", 65536)
	v.SetDefault("server.send_queue_limit", 256)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Ledger state storage
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.path", "/var/lib/donatrade/state")
	v.SetDefault("storage.cache_size", 4096)

	// Operation journal
	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.connection_string", "")
	v.SetDefault("journal.host", "localhost")
	v.SetDefault("journal.port", 5432)
	v.SetDefault("journal.database", "/var/lib/donatrade/journal.db")
	v.SetDefault("journal.username", "donatrade")
	v.SetDefault("journal.password", "")
	v.SetDefault("journal.ssl_mode", "prefer")
	v.SetDefault("journal.max_open_conns", 1)
	v.SetDefault("journal.max_idle_conns", 1)
	v.SetDefault("journal.conn_max_lifetime", time.Hour)
	v.SetDefault("journal.default_timeout", 10*time.Second)

	// Engine
	v.SetDefault("engine.platform_admin", "")
	v.SetDefault("engine.vault_bump", 255)

	// Confidential value oracle
	bgvDefaults := bgv.DefaultConfig()
	v.SetDefault("oracle.type", "memory")
	v.SetDefault("oracle.auditors", []string{})
	v.SetDefault("oracle.allow_volatile", false)
	v.SetDefault("oracle.log_n", bgvDefaults.LogN)
	v.SetDefault("oracle.log_q", bgvDefaults.LogQ)
	v.SetDefault("oracle.log_p", bgvDefaults.LogP)
	v.SetDefault("oracle.plaintext_modulus", bgvDefaults.PlaintextModulus)

	// Settlement token faucet
	v.SetDefault("faucet.enabled", false)
}
