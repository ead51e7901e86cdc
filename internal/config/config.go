// Package config loads the deployment policy: which account types may
// be assigned work, which account types may create which asset kinds.
// The engine's rule listeners consult this instead of hard-coding the
// tables, so deployments can extend the account-type inventory without
// forking the engine.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/craftlore/craftlore-go/internal/model"
)

const envPrefix = "CRAFTLORE_"

// Config is the top-level deployment configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Policy   PolicyConfig   `koanf:"policy"`
}

// DatabaseConfig holds the PostgreSQL connection settings. An empty DSN
// selects the in-memory state store.
type DatabaseConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// PolicyConfig declares the account-type policy tables.
type PolicyConfig struct {
	// WorkOrderAssignees lists the account types a work order may be
	// assigned to.
	WorkOrderAssignees []string `koanf:"work_order_assignees"`
	// AssetCreators maps an account type to the asset kinds it may
	// create directly.
	AssetCreators map[string][]string `koanf:"asset_creators"`
}

// Default returns the policy shipped with the engine.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			MaxOpenConns: 25,
			MaxIdleConns: 5,
			AutoMigrate:  true,
		},
		Policy: PolicyConfig{
			WorkOrderAssignees: []string{string(model.AccountArtisan)},
			AssetCreators: map[string][]string{
				string(model.AccountSupplier): {
					string(model.AssetRawMaterial),
					string(model.AssetWorkOrder),
				},
				string(model.AccountArtisan): {
					string(model.AssetWorkOrder),
					string(model.AssetProductBatch),
					string(model.AssetPackaging),
					string(model.AssetSubAssignment),
				},
				string(model.AccountBuyer): {
					string(model.AssetWorkOrder),
				},
			},
		},
	}
}

// Load reads configuration from an optional YAML file and CRAFTLORE_*
// environment variables layered on top of the defaults. An empty path
// skips the file layer.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
		slog.Info("Loaded policy configuration", "path", path)
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env config: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects empty or malformed policy tables.
func (c Config) Validate() error {
	if len(c.Policy.WorkOrderAssignees) == 0 {
		return fmt.Errorf("policy.work_order_assignees must not be empty")
	}
	if len(c.Policy.AssetCreators) == 0 {
		return fmt.Errorf("policy.asset_creators must not be empty")
	}
	for accountType, kinds := range c.Policy.AssetCreators {
		if len(kinds) == 0 {
			return fmt.Errorf("policy.asset_creators.%s must not be empty", accountType)
		}
	}
	return nil
}

// AssigneePermitted reports whether the account type may be assigned
// work orders.
func (c Config) AssigneePermitted(t model.AccountType) bool {
	for _, allowed := range c.Policy.WorkOrderAssignees {
		if allowed == string(t) {
			return true
		}
	}
	return false
}

// CreatorPermitted reports whether the account type may directly create
// the asset kind.
func (c Config) CreatorPermitted(account model.AccountType, asset model.AssetType) bool {
	for _, kind := range c.Policy.AssetCreators[string(account)] {
		if kind == string(asset) {
			return true
		}
	}
	return false
}

// CreatorKnown reports whether the account type may create any assets.
func (c Config) CreatorKnown(account model.AccountType) bool {
	return len(c.Policy.AssetCreators[string(account)]) > 0
}
