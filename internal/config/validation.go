package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/adipundir/donatrade/internal/storage/database/backend"
)

var (
	// ErrVolatileOracle rejects a persistent store paired with an oracle
	// that forgets its ciphertexts on restart.
	ErrVolatileOracle = errors.New("persistent storage needs oracle.allow_volatile")

	// ErrOpenBootstrap rejects a persistent store without a platform admin.
	ErrOpenBootstrap = errors.New("persistent storage needs engine.platform_admin")
)

// CheckNode validates the sections a running node combines. Handles
// committed to a persistent store cannot be evaluated or decrypted once the
// oracle that issued them is gone, so such a node starts only when the
// operator opts in with oracle.allow_volatile and names the platform admin.
// Offline commands that never start an oracle skip this check.
func (c *Config) CheckNode() error {
	if !backend.Persistent(c.Storage.Backend) {
		return nil
	}
	if !c.Oracle.AllowVolatile {
		return fmt.Errorf("%w: the %s store outlives the %s oracle's keys (use backend = %q for a devnet)",
			ErrVolatileOracle, c.Storage.Backend, c.Oracle.Type, backend.Memory)
	}
	if c.Engine.PlatformAdmin == "" {
		return fmt.Errorf("%w: bootstrap would be open to any signer", ErrOpenBootstrap)
	}
	return nil
}

// ValidateConfig performs comprehensive validation on the complete configuration
func ValidateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}
	if err := validateStorageConfig(&config.Storage); err != nil {
		return fmt.Errorf("storage config validation failed: %w", err)
	}
	if config.Journal.Enabled {
		if err := config.Journal.Config.Validate(); err != nil {
			return fmt.Errorf("journal config validation failed: %w", err)
		}
	}
	if _, err := config.Engine.PlatformAdminID(); err != nil {
		return fmt.Errorf("engine config validation failed: platform_admin: %w", err)
	}
	if err := validateOracleConfig(&config.Oracle); err != nil {
		return fmt.Errorf("oracle config validation failed: %w", err)
	}
	return nil
}

func validateServerConfig(server *ServerConfig) error {
	if server.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if _, _, err := net.SplitHostPort(server.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", server.Listen, err)
	}
	if server.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got %s", server.Timeout)
	}
	if server.ReplayWindow < 0 {
		return fmt.Errorf("replay_window must be non-negative, got %d", server.ReplayWindow)
	}
	if server.SendQueueLimit <= 0 {
		return fmt.Errorf("send_queue_limit must be positive, got %d", server.SendQueueLimit)
	}
	return nil
}

func validateLogConfig(l *LogConfig) error {
	switch strings.ToLower(l.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid level %q", l.Level)
	}
	switch l.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid format %q (valid: console, json)", l.Format)
	}
	return nil
}

func validateStorageConfig(s *StorageConfig) error {
	valid := false
	for _, name := range backend.Names() {
		if s.Backend == name {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid backend %q (valid: %s)", s.Backend, strings.Join(backend.Names(), ", "))
	}
	if s.Backend != backend.Memory && s.Path == "" {
		return fmt.Errorf("path is required for backend %q", s.Backend)
	}
	if s.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative, got %d", s.CacheSize)
	}
	return nil
}

func validateOracleConfig(o *OracleConfig) error {
	switch o.Type {
	case "memory":
	case "bgv":
		if o.LogN < 10 || o.LogN > 16 {
			return fmt.Errorf("log_n must be between 10 and 16, got %d", o.LogN)
		}
		if len(o.LogQ) == 0 {
			return fmt.Errorf("log_q must not be empty")
		}
	default:
		return fmt.Errorf("invalid type %q (valid: memory, bgv)", o.Type)
	}
	if _, err := o.AuditorIDs(); err != nil {
		return fmt.Errorf("auditors: %w", err)
	}
	return nil
}
