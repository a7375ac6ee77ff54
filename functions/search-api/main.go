package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/hnsearch"
	"github.com/letmevibethatforyou/hnsearch/algolia"
	"github.com/letmevibethatforyou/hnsearch/dynamostore"
	"github.com/letmevibethatforyou/hnsearch/httpapi"
	"github.com/segmentio/ksuid"
	"github.com/urfave/cli/v2"
)

const (
	defaultPages = 1
	maxPages     = 5
)

// SearchRequest is the Lambda input.
type SearchRequest struct {
	// SessionID selects the stored session; a new one is created when empty.
	SessionID string `json:"session_id"`
	// Query is the term to search for. When empty the session's stored term
	// is used.
	Query    string `json:"query"`
	Pages    int    `json:"pages"`
	Sort     string `json:"sort"`
	Reversed bool   `json:"reversed"`
}

// SearchResponse is the Lambda output.
type SearchResponse struct {
	SessionID string          `json:"session_id"`
	Query     string          `json:"query"`
	Items     []hnsearch.Item `json:"items"`
	Page      int             `json:"page"`
	HasMore   bool            `json:"has_more"`
}

type Handler struct {
	transport hnsearch.Transport
	newStore  func(sessionID string) hnsearch.Store
	timeout   time.Duration
}

func NewHandler(transport hnsearch.Transport, newStore func(sessionID string) hnsearch.Store, timeout time.Duration) *Handler {
	return &Handler{
		transport: transport,
		newStore:  newStore,
		timeout:   timeout,
	}
}

func (h *Handler) HandleSearch(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = ksuid.New().String()
	} else if _, err := ksuid.Parse(sessionID); err != nil {
		return SearchResponse{}, errors.Wrapf(err, "invalid session_id %q", sessionID)
	}

	key, err := hnsearch.ParseSortKey(req.Sort)
	if err != nil {
		return SearchResponse{}, err
	}

	pages := req.Pages
	if pages <= 0 {
		pages = defaultPages
	}
	if pages > maxPages {
		slog.WarnContext(ctx, "pages capped", "requested", pages, "max", maxPages)
		pages = maxPages
	}

	logger := slog.Default().With("request_session_id", sessionID)
	session, err := hnsearch.NewSession(ctx, h.transport,
		hnsearch.WithStore(h.newStore(sessionID)),
		hnsearch.WithLogger(logger),
	)
	if err != nil {
		return SearchResponse{}, err
	}

	if term := strings.TrimSpace(req.Query); term != "" {
		if err := session.SetSearchTerm(ctx, term); err != nil {
			return SearchResponse{}, err
		}
	}

	fetch := session.SubmitSearch()
	if fetch == nil {
		return SearchResponse{}, hnsearch.ErrEmptyTerm
	}

	slog.InfoContext(ctx, "Processing search", "session_id", sessionID, "query", fetch.Query.Term, "pages", pages)

	for i := 0; fetch != nil; i++ {
		if err := h.run(ctx, session, fetch); err != nil {
			return SearchResponse{}, err
		}
		if i+1 >= pages || !session.View().HasMore {
			break
		}
		fetch = session.LoadMore()
	}

	if key != hnsearch.SortNone {
		session.SortBy(key)
		if req.Reversed {
			session.SortBy(key)
		}
	}

	view := session.View()
	return SearchResponse{
		SessionID: sessionID,
		Query:     view.SearchTerm,
		Items:     view.Items,
		Page:      view.Page,
		HasMore:   view.HasMore,
	}, nil
}

func (h *Handler) run(ctx context.Context, session *hnsearch.Session, f *hnsearch.Fetch) error {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	return session.Run(ctx, f)
}

func main() {
	app := &cli.App{
		Name:  "hnsearch-api",
		Usage: "Serve Hacker News searches from AWS Lambda",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "table-name",
				Usage:    "DynamoDB table holding session state",
				EnvVars:  []string{"TABLE_NAME"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "algolia-index",
				Usage:   "Query this Algolia index instead of the public HTTP API",
				EnvVars: []string{"ALGOLIA_INDEX"},
			},
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Environment name for AWS Secrets Manager (takes precedence over API key/ID flags)",
				EnvVars: []string{"ENV", "ENVIRONMENT"},
			},
			&cli.StringFlag{
				Name:    "algolia-app-id",
				Usage:   "Algolia application ID",
				EnvVars: []string{"ALGOLIA_APP_ID"},
			},
			&cli.StringFlag{
				Name:    "algolia-api-key",
				Usage:   "Algolia API key",
				EnvVars: []string{"ALGOLIA_API_KEY"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "Timeout for each search request",
				EnvVars: []string{"SEARCH_TIMEOUT"},
				Value:   5 * time.Second,
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	tableName := c.String("table-name")
	indexName := c.String("algolia-index")

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	slog.InfoContext(ctx, "Starting search API", "table", tableName, "algolia_index", indexName)

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load AWS config", "error", err)
		return err
	}

	var transport hnsearch.Transport = httpapi.New()
	if indexName != "" {
		transport = algolia.NewTransport(algolia.NewClient(algoliaSecrets(c, cfg)), indexName)
	}

	dynamoClient := dynamodb.NewFromConfig(cfg)
	newStore := func(sessionID string) hnsearch.Store {
		return dynamostore.New(dynamoClient, tableName, sessionID)
	}

	handler := NewHandler(transport, newStore, c.Duration("timeout"))

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		slog.InfoContext(ctx, "Running in Lambda environment")
		lambda.Start(handler.HandleSearch)
	} else {
		slog.InfoContext(ctx, "Function cannot run outside of AWS Lambda environment")
	}

	return nil
}

func algoliaSecrets(c *cli.Context, cfg aws.Config) algolia.FetchSecrets {
	ctx := c.Context
	env := c.String("env")
	appID := c.String("algolia-app-id")
	apiKey := c.String("algolia-api-key")

	switch {
	case env != "":
		slog.InfoContext(ctx, "Using AWS Secrets Manager for credentials", "environment", env)
		return algolia.AWSSecrets(ctx, secretsmanager.NewFromConfig(cfg), env)
	case appID != "" && apiKey != "":
		slog.InfoContext(ctx, "Using static credentials from flags")
		return algolia.StaticSecrets(appID, apiKey)
	default:
		slog.InfoContext(ctx, "Using environment variables for credentials")
		return algolia.EnvSecrets()
	}
}
