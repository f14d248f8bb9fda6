package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	var (
		cfg   config
		limit int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of entries to list",
			Value:       20,
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "history",
		Usage:     "Show answered questions, newest first",
		ArgsUsage: "[history-id]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			w := c.Root().Writer

			if c.Args().Len() == 1 {
				history, err := repo.GetHistory(ctx, model.HistoryID(c.Args().First()))
				if err != nil {
					return goerr.Wrap(err, "failed to load history entry")
				}
				fmt.Fprintf(w, "%s  %s  scope=%s\n", history.CreatedAt.Format("2006-01-02 15:04:05"), history.VideoID, history.Scope)
				fmt.Fprintf(w, "Q: %s\n\n%s\n", history.Question, history.Answer)
				return nil
			}

			entries, err := repo.ListHistory(ctx, int(limit))
			if err != nil {
				return goerr.Wrap(err, "failed to list history")
			}
			if len(entries) == 0 {
				fmt.Fprintf(w, "No history\n")
				return nil
			}

			for _, h := range entries {
				fmt.Fprintf(w, "%s  %s  %s  scope=%s\n  %s\n",
					h.ID, h.CreatedAt.Format("2006-01-02 15:04"), h.VideoID, h.Scope, h.Question)
			}
			return nil
		},
	}
}
