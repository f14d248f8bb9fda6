package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/tool/corpus"
	"github.com/m-mizutani/burrow/pkg/usecase/rag"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func askCommand() *cli.Command {
	var (
		cfg        config
		forceScope string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "scope",
			Aliases:     []string{"s"},
			Usage:       "Force a retrieval scope instead of inferring it (one_video, seed_plus_tag, seed_plus_channel, any)",
			Destination: &forceScope,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Answer a question about a video, grounded in indexed transcripts",
		ArgsUsage: "<video-id> <question...>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() < 2 {
				return goerr.New("a video ID and a question are required")
			}
			videoID := model.VideoID(c.Args().First())
			question := strings.Join(c.Args().Slice()[1:], " ")

			uc, opts, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			if forceScope != "" {
				parsed, err := model.ParseScope(forceScope)
				if err != nil {
					return err
				}
				opts.ForceScope = parsed
			}

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
				spinner.WithSuffix(" preparing retrieval..."))
			sp.Start()

			rc, meta, rationale, err := uc.PrepareContext(ctx, videoID, question, opts)
			if err != nil {
				sp.Stop()
				return err
			}

			sp.Suffix = " answering..."
			history, err := uc.Answer(ctx, rag.AnswerInput{
				Question:  question,
				Seed:      meta,
				Context:   rc,
				Rationale: rationale,
				Registry:  corpus.NewRegistry(uc, rc),
			})
			sp.Stop()
			if err != nil {
				return goerr.Wrap(err, "failed to answer question")
			}

			fmt.Fprintf(c.Root().Writer, "Scope: %s (%s)\n\n%s\n", history.Scope, rationale, history.Answer)
			return nil
		},
	}
}
