package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	autotranslate "github.com/goliatone/go-cms-autotranslate"
	"github.com/goliatone/go-cms-autotranslate/internal/contentrepo"
	"github.com/goliatone/go-cms-autotranslate/internal/di"
	"github.com/goliatone/go-cms-autotranslate/internal/runtimeconfig"
	"github.com/google/uuid"
)

var moduleBuilder = func(cfg autotranslate.Config, opts ...di.Option) (*autotranslate.Module, error) {
	return autotranslate.New(cfg, opts...)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("autotranslate: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("autotranslate", flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", "", "Path to the YAML configuration (defaults apply when empty)")
	fixturePath := fs.String("fixture", "", "Path to the YAML fixture seeding the draft workspace")
	nodePath := fs.String("node", "", "Only publish fixture nodes at this path")
	manual := fs.Bool("manual", false, "Disable publish hooks and run a manual sync after publishing")
	translate := fs.Bool("translate", true, "Translate during a manual sync")
	dsn := fs.String("dsn", "", "Persist nodes in the sqlite database at this DSN")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*fixturePath) == "" {
		return fmt.Errorf("fixture is required")
	}

	cfg := autotranslate.DefaultConfig()
	if path := strings.TrimSpace(*configPath); path != "" {
		loaded, err := autotranslate.LoadConfigFile(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if value := strings.TrimSpace(*dsn); value != "" {
		cfg.Storage.Driver = runtimeconfig.StorageSQLite
		cfg.Storage.DSN = value
	}
	if *manual {
		cfg.Enabled = false
	}

	fixture, err := contentrepo.LoadFixtureFile(*fixturePath)
	if err != nil {
		return err
	}

	module, err := moduleBuilder(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	ctx := context.Background()
	repo := module.Repository()
	nodes, err := fixture.Apply(ctx, repo)
	if err != nil {
		return err
	}

	filter := contentrepo.NormalizePath(*nodePath)
	var published []uuid.UUID
	seen := map[uuid.UUID]struct{}{}
	for _, node := range nodes {
		if strings.TrimSpace(*nodePath) != "" && node.Path() != filter {
			continue
		}
		if err := repo.PublishNode(ctx, node); err != nil {
			return fmt.Errorf("publish %s: %w", node.Path(), err)
		}
		if _, ok := seen[node.Identifier()]; !ok {
			seen[node.Identifier()] = struct{}{}
			published = append(published, node.Identifier())
		}
		if *manual && node.DimensionValue(cfg.Dimension.Name) == cfg.Dimension.DefaultPreset {
			if err := module.SyncNode(ctx, node.Identifier(), cfg.LiveWorkspace, cfg.Dimension.DefaultPreset, *translate); err != nil {
				return fmt.Errorf("sync %s: %w", node.Path(), err)
			}
		}
	}
	if err := repo.PersistPendingChanges(ctx); err != nil {
		return err
	}

	for _, id := range published {
		variants, err := repo.Variants(ctx, cfg.LiveWorkspace, id)
		if err != nil {
			return err
		}
		for _, variant := range variants {
			fmt.Fprintln(out, contentrepo.Describe(variant, cfg.Dimension.Name))
		}
	}
	return nil
}
