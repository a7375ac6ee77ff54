package main

import (
	"math/rand/v2"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/hnsearch/algolia"
	"github.com/letmevibethatforyou/hnsearch/inmemory"
	"github.com/urfave/cli/v2"
)

const defaultSeedCount = 100

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Write the sample stories plus random ones to the Algolia index",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "count",
				Usage: "Number of random stories to generate",
				Value: defaultSeedCount,
			},
			&cli.StringSliceFlag{
				Name:  "delete",
				Usage: "Delete these object IDs from the index instead of seeding",
			},
		},
		Action: seedAction,
	}
}

func seedAction(c *cli.Context) error {
	ctx := c.Context

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Algolia.Index == "" {
		return errors.New("seed requires --algolia-index")
	}

	count := c.Int("count")
	if count < 0 {
		return errors.Newf("count cannot be negative: %d", count)
	}

	var deleteIDs []string
	if c.IsSet("delete") {
		for _, id := range c.StringSlice("delete") {
			if id = strings.TrimSpace(id); id != "" {
				deleteIDs = append(deleteIDs, id)
			}
		}
		if len(deleteIDs) == 0 {
			return errors.New("--delete requires at least one object ID")
		}
	}

	fetchSecrets, err := algoliaSecrets(ctx, cfg.Algolia)
	if err != nil {
		return err
	}
	indexer := algolia.NewIndexer(algolia.NewClient(fetchSecrets), cfg.Algolia.Index)

	logger, closeLog, err := newLogger(c, c.App.ErrWriter)
	if err != nil {
		return err
	}
	defer closeLog()

	if deleteIDs != nil {
		logger.InfoContext(ctx, "deleting from index", "index", cfg.Algolia.Index, "ids", len(deleteIDs))
		if err := indexer.DeleteItems(ctx, deleteIDs); err != nil {
			return errors.Wrap(err, "delete failed")
		}
		return nil
	}

	items := append(inmemory.Stories(), inmemory.Generate(count, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))...)

	logger.InfoContext(ctx, "seeding index", "index", cfg.Algolia.Index, "items", len(items))
	if err := indexer.SaveItems(ctx, items); err != nil {
		return errors.Wrap(err, "seed failed")
	}
	logger.InfoContext(ctx, "seeded index", "index", cfg.Algolia.Index, "items", len(items))
	return nil
}
