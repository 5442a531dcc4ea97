package main

import (
	"context"
	"fmt"

	"github.com/mixview/mixview/internal/models"
	"github.com/mixview/mixview/internal/repositories"
	"github.com/mixview/mixview/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheStats reports row counts for the local graph cache.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	nodeRepo := repositories.NewNodeRepository(db)
	edgeRepo := repositories.NewEdgeRepository(db)

	artists, err := nodeRepo.Count(models.KindArtist)
	if err != nil {
		return err
	}
	albums, err := nodeRepo.Count(models.KindAlbum)
	if err != nil {
		return err
	}
	tracks, err := nodeRepo.Count(models.KindTrack)
	if err != nil {
		return err
	}
	edges, err := edgeRepo.Count()
	if err != nil {
		return err
	}
	schema, err := shared.SchemaVersion(db)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"artists": artists,
			"albums":  albums,
			"tracks":  tracks,
			"edges":   edges,
			"schema":  schema,
			"path":    r.config.Database.Path,
		}, true)
	}

	r.writePlainHeader("Cache Stats")
	r.writePlain("Artists: %d\n", artists)
	r.writePlain("Albums:  %d\n", albums)
	r.writePlain("Tracks:  %d\n", tracks)
	r.writePlain("Edges:   %d\n", edges)
	r.writePlain("Schema:  v%d\n", schema)
	r.writePlain("Path:    %s\n", r.config.Database.Path)
	return nil
}

// CacheClear drops and recreates the graph cache schema.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("force") {
		return fmt.Errorf("%w: pass --force to clear the cache", shared.ErrInvalidFlag)
	}

	db, closeDB, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	r.logger.Info("clearing graph cache", "path", r.config.Database.Path)

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	if _, err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("cache cleared but schema rebuild failed: %w", err)
	}

	r.writePlainln("✓ Graph cache cleared: %s", r.config.Database.Path)
	return nil
}

// cacheCommand inspects and resets the local graph cache
func cacheCommand(r *Runner) *cli.Command {
	jsonFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		}
	}

	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and manage the local graph cache",
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Show cached node and edge counts",
				Flags: []cli.Flag{
					jsonFlag(),
				},
				Action: r.CacheStats,
			},
			{
				Name:  "clear",
				Usage: "Delete all cached nodes and edges",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Confirm deletion",
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}
