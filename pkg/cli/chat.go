package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/tool/corpus"
	"github.com/m-mizutani/burrow/pkg/usecase/rag"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "chat",
		Usage:     "Interactive question session about a video",
		ArgsUsage: "<video-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one video ID is required")
			}
			videoID := model.VideoID(c.Args().First())

			uc, opts, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			rl, err := readline.New("burrow> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			fmt.Fprintf(c.Root().Writer, "Chat session for %s. Type 'exit' to quit.\n", videoID.WatchURL())

			for {
				line, err := rl.Readline()
				if err != nil {
					// Ctrl-C on an empty line or Ctrl-D ends the session
					if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
						break
					}
					return goerr.Wrap(err, "failed to read input")
				}

				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}

				// Scope is re-inferred per question; the fragment index and
				// the discovery cache keep repeat preparation cheap.
				rc, meta, rationale, err := uc.PrepareContext(ctx, videoID, line, opts)
				if err != nil {
					fmt.Fprintf(c.Root().Writer, "error: %v\n", err)
					continue
				}

				history, err := uc.Answer(ctx, rag.AnswerInput{
					Question:  line,
					Seed:      meta,
					Context:   rc,
					Rationale: rationale,
					Registry:  corpus.NewRegistry(uc, rc),
				})
				if err != nil {
					fmt.Fprintf(c.Root().Writer, "error: %v\n", err)
					continue
				}

				fmt.Fprintf(c.Root().Writer, "[%s] %s\n\n", history.Scope, history.Answer)
			}

			fmt.Fprintf(c.Root().Writer, "\nChat session completed\n")
			return nil
		},
	}
}
