package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func searchCommand() *cli.Command {
	var (
		cfg       config
		scopeName string
		topK      int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "scope",
			Aliases:     []string{"s"},
			Usage:       "Retrieval scope (one_video, seed_plus_tag, seed_plus_channel, any)",
			Value:       string(model.ScopeOneVideo),
			Destination: &scopeName,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of fragments to return",
			Value:       8,
			Destination: &topK,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "search",
		Usage:     "Retrieve transcript fragments without generating an answer",
		ArgsUsage: "<video-id> <query...>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() < 2 {
				return goerr.New("a video ID and a query are required")
			}
			videoID := model.VideoID(c.Args().First())
			query := strings.Join(c.Args().Slice()[1:], " ")

			scope, err := model.ParseScope(scopeName)
			if err != nil {
				return err
			}

			uc, opts, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}
			opts.ForceScope = scope

			rc, _, _, err := uc.PrepareContext(ctx, videoID, query, opts)
			if err != nil {
				return err
			}

			hits, err := uc.Search(ctx, query, int(topK), rc)
			if err != nil {
				return goerr.Wrap(err, "search failed")
			}

			w := c.Root().Writer
			if len(hits) == 0 {
				fmt.Fprintf(w, "No fragments found within scope %s\n", scope)
				return nil
			}

			for i, h := range hits {
				fmt.Fprintf(w, "%d. [%s] %s\n", i+1, h.Fragment.ID(), h.Fragment.Video.Title)
				fmt.Fprintf(w, "   similarity=%.4f combined=%.4f\n", h.Similarity, h.Combined)
				fmt.Fprintf(w, "   %s\n\n", h.Fragment.Text)
			}
			return nil
		},
	}
}
