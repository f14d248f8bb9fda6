package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func ingestCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "ingest",
		Usage:     "Fetch, chunk and index the transcript of a video",
		ArgsUsage: "<video-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one video ID is required")
			}
			videoID := model.VideoID(c.Args().First())

			uc, _, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			meta, err := uc.Index(ctx, videoID)
			if err != nil {
				return goerr.Wrap(err, "failed to index video")
			}

			fmt.Fprintf(c.Root().Writer, "Indexed %q (%s)\n%s\n", meta.Title, meta.Channel, meta.ID.WatchURL())
			return nil
		},
	}
}
