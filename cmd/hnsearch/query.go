package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/hnsearch"
	"github.com/urfave/cli/v2"
)

const defaultPages = 1

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Run one search and print the results as JSON",
		ArgsUsage: "[term]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Term to search for; positional arg is a fallback",
			},
			&cli.IntFlag{
				Name:    "pages",
				Aliases: []string{"p"},
				Usage:   "Number of result pages to load",
				Value:   defaultPages,
			},
			&cli.StringFlag{
				Name:    "sort",
				Aliases: []string{"s"},
				Usage:   "Sort by none, title, author, comments or points",
			},
			&cli.BoolFlag{
				Name:    "reverse",
				Aliases: []string{"r"},
				Usage:   "Reverse the sorted order",
			},
		},
		Action: queryAction,
	}
}

func queryAction(c *cli.Context) error {
	ctx := c.Context

	term := strings.TrimSpace(c.String("query"))
	if term == "" && c.NArg() > 0 {
		term = strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	}
	if term == "" {
		return hnsearch.ErrEmptyTerm
	}

	pages := c.Int("pages")
	if pages <= 0 {
		pages = defaultPages
	}

	key, err := hnsearch.ParseSortKey(c.String("sort"))
	if err != nil {
		return err
	}
	spec := hnsearch.SortSpec{Key: key, Reversed: c.Bool("reverse")}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(c, c.App.ErrWriter)
	if err != nil {
		return err
	}
	defer closeLog()

	session, closeStore, err := newSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := search(ctx, session, term, pages, spec, cfg.Timeout.Duration); err != nil {
		return errors.Wrap(err, "search failed")
	}

	return printView(c.App.Writer, session.View())
}

// search submits term and loads up to pages pages, then applies spec.
func search(ctx context.Context, session *hnsearch.Session, term string, pages int, spec hnsearch.SortSpec, timeout time.Duration) error {
	if err := session.SetSearchTerm(ctx, term); err != nil {
		return err
	}

	run := func(f *hnsearch.Fetch) error {
		fetchCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return session.Run(fetchCtx, f)
	}

	if err := run(session.SubmitSearch()); err != nil {
		return err
	}
	for i := 1; i < pages && session.View().HasMore; i++ {
		if err := run(session.LoadMore()); err != nil {
			return err
		}
	}

	if spec.Key != hnsearch.SortNone {
		session.SortBy(spec.Key)
		if spec.Reversed {
			session.SortBy(spec.Key)
		}
	}
	return nil
}

func printView(w io.Writer, view hnsearch.View) error {
	payload := struct {
		Query   string          `json:"query"`
		Page    int             `json:"page"`
		HasMore bool            `json:"has_more"`
		Sort    string          `json:"sort"`
		Reverse bool            `json:"reversed"`
		Items   []hnsearch.Item `json:"items"`
	}{
		Query:   view.SearchTerm,
		Page:    view.Page,
		HasMore: view.HasMore,
		Sort:    view.Sort.Key.String(),
		Reverse: view.Sort.Reversed,
		Items:   view.Items,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal results")
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}
