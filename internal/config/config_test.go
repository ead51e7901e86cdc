package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/craftlore/craftlore-go/internal/model"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	require.True(t, cfg.AssigneePermitted(model.AccountArtisan))
	require.False(t, cfg.AssigneePermitted(model.AccountBuyer))

	require.True(t, cfg.CreatorPermitted(model.AccountSupplier, model.AssetRawMaterial))
	require.True(t, cfg.CreatorPermitted(model.AccountArtisan, model.AssetProductBatch))
	require.True(t, cfg.CreatorPermitted(model.AccountBuyer, model.AssetWorkOrder))
	require.False(t, cfg.CreatorPermitted(model.AccountBuyer, model.AssetRawMaterial))
	require.False(t, cfg.CreatorPermitted(model.AccountSupplier, model.AssetProductBatch))
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default().Policy.WorkOrderAssignees, cfg.Policy.WorkOrderAssignees)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "craftlore.yaml")
	content := `
policy:
  work_order_assignees:
    - artisan
    - supplier
database:
  dsn: "postgres://localhost:5432/craftlore?sslmode=disable"
  max_open_conns: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.True(t, cfg.AssigneePermitted(model.AccountSupplier))
	require.Equal(t, "postgres://localhost:5432/craftlore?sslmode=disable", cfg.Database.DSN)
	require.Equal(t, 10, cfg.Database.MaxOpenConns)
	// Untouched sections keep their defaults.
	require.True(t, cfg.CreatorPermitted(model.AccountSupplier, model.AssetRawMaterial))
}

func TestValidateRejectsEmptyTables(t *testing.T) {
	cfg := Default()
	cfg.Policy.WorkOrderAssignees = nil
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Policy.AssetCreators = map[string][]string{}
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Policy.AssetCreators["artisan"] = nil
	require.Error(t, cfg.Validate())
}
