package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/hnsearch"
	"github.com/letmevibethatforyou/hnsearch/algolia"
	"github.com/letmevibethatforyou/hnsearch/dynamostore"
	"github.com/letmevibethatforyou/hnsearch/httpapi"
	"github.com/letmevibethatforyou/hnsearch/inmemory"
	"github.com/letmevibethatforyou/hnsearch/internal/config"
	"github.com/letmevibethatforyou/hnsearch/sqlitestore"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
)

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	applyOverrides(c, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(c *cli.Context, cfg *config.Config) {
	set := func(name string, dst *string) {
		if c.IsSet(name) {
			*dst = strings.TrimSpace(c.String(name))
		}
	}
	set("base-url", &cfg.BaseURL)
	set("transport", &cfg.Transport)
	set("algolia-index", &cfg.Algolia.Index)
	set("algolia-secret-arn", &cfg.Algolia.SecretARN)
	set("store", &cfg.Store.Type)
	set("db", &cfg.Store.Path)
	set("table", &cfg.Store.Table)

	if c.IsSet("timeout") {
		if timeout := c.Duration("timeout"); timeout > 0 {
			cfg.Timeout.Duration = timeout
		} else {
			slog.WarnContext(c.Context, "timeout must be positive; using configured value", "timeout", timeout, "configured", cfg.Timeout)
		}
	}
	if c.IsSet("generate") {
		cfg.Memory.Generate = c.Int("generate")
	}
}

// newSession wires the configured transport and store into a session. The
// returned func releases the store.
func newSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*hnsearch.Session, func(), error) {
	transport, err := newTransport(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	logStoredTerm(ctx, logger, store)

	session, err := hnsearch.NewSession(ctx, transport,
		hnsearch.WithBaseURL(cfg.BaseURL),
		hnsearch.WithStore(store),
		hnsearch.WithLogger(logger),
		hnsearch.WithTitleFilter(cfg.TitleFilter),
	)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	logger.InfoContext(ctx, "session started",
		"transport", cfg.Transport,
		"store", cfg.Store.Type,
		"base_url", cfg.BaseURL,
	)
	return session, closeStore, nil
}

// timestampedStore is a store that records when a key was last written.
type timestampedStore interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, bool, error)
}

// logStoredTerm logs how old the resumed search term is, for stores that
// track write times.
func logStoredTerm(ctx context.Context, logger *slog.Logger, store hnsearch.Store) {
	ts, ok := store.(timestampedStore)
	if !ok {
		return
	}
	updated, found, err := ts.UpdatedAt(ctx, hnsearch.StoreKey)
	if err != nil {
		logger.WarnContext(ctx, "failed to read stored term timestamp", "error", err)
		return
	}
	if !found {
		return
	}
	logger.InfoContext(ctx, "resuming stored search term",
		"stored_at", updated.Format(time.RFC3339),
		"age", time.Since(updated).Round(time.Second),
	)
}

func newTransport(ctx context.Context, cfg *config.Config, logger *slog.Logger) (hnsearch.Transport, error) {
	switch cfg.Transport {
	case config.TransportHTTP:
		opts := []httpapi.Option{
			httpapi.WithHitsPerPage(cfg.HTTP.HitsPerPage),
			httpapi.WithTags(cfg.HTTP.Tags),
		}
		if cfg.HTTP.RequestsPerSecond > 0 {
			opts = append(opts, httpapi.WithRateLimit(rate.Limit(cfg.HTTP.RequestsPerSecond), max(cfg.HTTP.Burst, 1)))
		}
		return httpapi.New(opts...), nil

	case config.TransportAlgolia:
		fetchSecrets, err := algoliaSecrets(ctx, cfg.Algolia)
		if err != nil {
			return nil, err
		}
		var opts []algolia.TransportOption
		if cfg.HTTP.HitsPerPage > 0 {
			opts = append(opts, algolia.WithHitsPerPage(cfg.HTTP.HitsPerPage))
		}
		return algolia.NewTransport(algolia.NewClient(fetchSecrets), cfg.Algolia.Index, opts...), nil

	case config.TransportMemory:
		t := inmemory.New(inmemory.WithLatency(cfg.Memory.Latency.Duration))
		t.Add(inmemory.Stories()...)
		if cfg.Memory.Generate > 0 {
			t.Add(inmemory.Generate(cfg.Memory.Generate, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))...)
		}
		logger.InfoContext(ctx, "in-memory transport ready", "items", t.Size())
		return t, nil
	}
	return nil, errors.Newf("unknown transport %q", cfg.Transport)
}

func algoliaSecrets(ctx context.Context, cfg config.AlgoliaConfig) (algolia.FetchSecrets, error) {
	if cfg.SecretARN == "" && cfg.Environment == "" {
		return algolia.EnvSecrets(), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}
	secretsClient := secretsmanager.NewFromConfig(awsCfg)

	if cfg.SecretARN != "" {
		slog.InfoContext(ctx, "using AWS Secrets Manager for Algolia credentials", "secret_arn", cfg.SecretARN)
		return algolia.AWSSecretsFromARN(ctx, secretsClient, cfg.SecretARN), nil
	}
	slog.InfoContext(ctx, "using AWS Secrets Manager for Algolia credentials", "environment", cfg.Environment)
	return algolia.AWSSecrets(ctx, secretsClient, cfg.Environment), nil
}

func newStore(ctx context.Context, cfg *config.Config) (hnsearch.Store, func(), error) {
	switch cfg.Store.Type {
	case config.StoreMemory:
		return &hnsearch.MapStore{}, func() {}, nil

	case config.StoreSQLite:
		if cfg.Store.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
				return nil, nil, errors.Wrap(err, "creating database directory")
			}
		}
		store, err := sqlitestore.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to open %s", cfg.Store.Path)
		}
		return store, func() { store.Close() }, nil

	case config.StoreDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to load AWS config")
		}
		client := dynamodb.NewFromConfig(awsCfg)
		return dynamostore.New(client, cfg.Store.Table, cfg.Store.Partition), func() {}, nil
	}
	return nil, nil, errors.Newf("unknown store %q", cfg.Store.Type)
}
