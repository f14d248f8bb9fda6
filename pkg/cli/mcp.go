package cli

import (
	"context"

	"github.com/m-mizutani/burrow/pkg/service/mcpserver"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func mcpCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the retrieval capabilities as an MCP stdio server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, opts, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			if err := mcpserver.New(uc, opts).Run(ctx); err != nil {
				return goerr.Wrap(err, "MCP server stopped")
			}
			return nil
		},
	}
}
