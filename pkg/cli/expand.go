package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/usecase/rag"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func expandCommand() *cli.Command {
	var (
		cfg       config
		scopeName string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "scope",
			Aliases:     []string{"s"},
			Usage:       "Expansion scope (seed_plus_tag, seed_plus_channel, any)",
			Value:       string(model.ScopeAny),
			Destination: &scopeName,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "expand",
		Usage:     "Discover and index videos related to a seed video",
		ArgsUsage: "<video-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one video ID is required")
			}
			videoID := model.VideoID(c.Args().First())

			scope, err := model.ParseScope(scopeName)
			if err != nil {
				return err
			}

			uc, _, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			meta, err := uc.Index(ctx, videoID)
			if err != nil {
				return goerr.Wrap(err, "failed to index seed video")
			}

			report := uc.Expand(ctx, rag.ExpandInput{
				Scope:         scope,
				SeedVideoID:   meta.ID,
				SeedTags:      meta.Tags,
				SeedChannelID: meta.ChannelID,
			})

			w := c.Root().Writer
			fmt.Fprintf(w, "Expansion under scope %s: %d indexed, %d failed\n",
				report.Scope, report.Indexed(), report.Failed())
			for _, o := range report.Outcomes {
				if o.Err != nil {
					fmt.Fprintf(w, "  %s  FAILED: %v\n", o.VideoID, o.Err)
					continue
				}
				fmt.Fprintf(w, "  %s  ok\n", o.VideoID)
			}
			return nil
		},
	}
}
