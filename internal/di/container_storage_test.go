package di_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-cms-autotranslate/internal/di"
	ditesting "github.com/goliatone/go-cms-autotranslate/internal/di/testing"
	"github.com/goliatone/go-cms-autotranslate/internal/nodetypes"
	"github.com/goliatone/go-cms-autotranslate/internal/runtimeconfig"
	"github.com/goliatone/go-cms-autotranslate/pkg/testsupport"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func sqliteConfig() runtimeconfig.Config {
	cfg := ditesting.Config()
	cfg.Storage.Driver = runtimeconfig.StorageSQLite
	cfg.Storage.DSN = testsupport.SQLiteMemoryDSN("container_storage")
	return cfg
}

func TestContainerOpensSQLiteStoreFromConfig(t *testing.T) {
	container, _, err := ditesting.NewContainer(sqliteConfig())
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	publishTree(t, container)

	ctx := context.Background()
	if err := container.Repository().PersistPendingChanges(ctx); err != nil {
		t.Fatalf("persist: %v", err)
	}
	container.Repository().Clear()

	de, err := container.Repository().GetByPath(ctx, "live", "de", "/sites/home")
	if err != nil {
		t.Fatalf("expected de variant to be reloaded from sqlite: %v", err)
	}
	if title, _ := de.Property("title"); title != "[de] Home" {
		t.Fatalf("expected persisted translation, got %v", title)
	}
}

func TestContainerPersistsNodeTypesWithCache(t *testing.T) {
	sqlDB := testsupport.OpenSQLite(t)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)

	definitions := `nodeTypes:
  - name: article
    properties:
      headline:
        type: string
        automaticTranslation: true
`
	path := testsupport.WriteFixture(t, t.TempDir(), "node_types.yaml", definitions)

	cfg := ditesting.Config()
	cfg.NodeTypes.File = path
	cfg.NodeTypes.Persist = true

	container, _, err := ditesting.NewContainer(cfg, di.WithBunDB(db))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	registry, ok := container.Registry().(*nodetypes.BunRegistry)
	if !ok {
		t.Fatalf("expected bun registry, got %T", container.Registry())
	}
	ctx := context.Background()
	for _, name := range []string{"article", "page"} {
		if _, err := registry.Get(ctx, name); err != nil {
			t.Fatalf("expected %s to be registered: %v", name, err)
		}
	}
	if err := container.Close(); err != nil {
		t.Fatalf("close should leave caller-owned db alone: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("expected caller db to stay open: %v", err)
	}
}

func TestContainerRejectsUnknownNodeTypeFile(t *testing.T) {
	cfg := ditesting.Config()
	cfg.NodeTypes.File = filepath.Join(t.TempDir(), "missing.yaml")
	if _, _, err := ditesting.NewContainer(cfg); err == nil {
		t.Fatal("expected missing definition file to fail container construction")
	}
}
