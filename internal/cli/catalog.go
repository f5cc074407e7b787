package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"triage-service/internal/catalog"
	"triage-service/internal/config"
	"triage-service/internal/infra/postgres"
	infraredis "triage-service/internal/infra/redis"
	"triage-service/internal/logger"
)

// NewCatalogCmd groups the catalog maintenance subcommands.
func NewCatalogCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate and seed question catalogs",
	}
	cmd.AddCommand(newCatalogValidateCmd())
	cmd.AddCommand(newCatalogSeedCmd(configPath))
	return cmd
}

func newCatalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [paths...]",
		Short: "Validate catalog files or directories (built-in catalogs when no path is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			green := color.New(color.FgGreen)
			red := color.New(color.FgRed)
			out := cmd.OutOrStdout()

			var docs []namedDocument
			failed := 0
			if len(args) == 0 {
				builtin, err := catalog.Builtin()
				if err != nil {
					return err
				}
				for _, d := range builtin {
					docs = append(docs, namedDocument{source: "builtin:" + d.ID, doc: d})
				}
			}
			for _, path := range args {
				found, err := readDocuments(path)
				if err != nil {
					red.Fprintf(out, "FAIL %s: %v\n", path, err)
					failed++
					continue
				}
				docs = append(docs, found...)
			}

			for _, nd := range docs {
				cat, err := catalog.Compile(nd.doc)
				if err != nil {
					red.Fprintf(out, "FAIL %s: %v\n", nd.source, err)
					failed++
					continue
				}
				green.Fprintf(out, "ok   %s (%d questions)\n", nd.source, cat.Len())
			}
			if failed > 0 {
				return fmt.Errorf("%d catalog(s) failed validation", failed)
			}
			return nil
		},
	}
}

func newCatalogSeedCmd(configPath *string) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert the built-in catalogs (and --dir overrides) into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Catalog.Dir
			}
			log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer log.Sync()

			docs, err := loadDocuments(dir)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}
			db, err := openBun(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			list := make([]catalog.Document, 0, len(docs))
			for _, d := range docs {
				list = append(list, d)
			}
			sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
			if err := postgres.NewSeeder(db).Seed(cmd.Context(), list); err != nil {
				return err
			}
			log.Info("catalogs seeded", zap.Int("count", len(list)))

			if cfg.Redis.Addr == "" {
				return nil
			}
			client := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer client.Close()
			ids := make([]string, 0, len(list))
			for _, d := range list {
				ids = append(ids, d.ID)
			}
			if err := invalidateCatalogs(cmd.Context(), client, ids); err != nil {
				return fmt.Errorf("invalidate cached catalogs: %w", err)
			}
			log.Info("cached catalogs invalidated", zap.Int("count", len(ids)))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory of extra catalog documents (defaults to catalog.dir)")
	return cmd
}

// invalidateCatalogs deletes the Redis-cached documents of ids.
func invalidateCatalogs(ctx context.Context, client *redis.Client, ids []string) error {
	repo := infraredis.NewCatalogRepository(client, nil, 0)
	for _, id := range ids {
		if err := repo.Invalidate(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

type namedDocument struct {
	source string
	doc    catalog.Document
}

func readDocuments(path string) ([]namedDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		doc, err := catalog.ParseFile(path)
		if err != nil {
			return nil, err
		}
		return []namedDocument{{source: path, doc: doc}}, nil
	}
	docs, err := catalog.LoadDir(path)
	if err != nil {
		return nil, err
	}
	out := make([]namedDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, namedDocument{source: path + ":" + d.ID, doc: d})
	}
	return out, nil
}

// loadDocuments returns the built-in documents overlaid with those in dir.
func loadDocuments(dir string) (map[string]catalog.Document, error) {
	docs, err := catalog.BuiltinByID()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return docs, nil
	}
	extra, err := catalog.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load catalog dir %s: %w", dir, err)
	}
	for id, d := range catalog.ByID(extra) {
		docs[id] = d
	}
	return docs, nil
}
