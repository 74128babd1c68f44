package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/app"
	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/scheduler"
)

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import the links of a Homepage services.yaml or bookmarks.yaml",
		Long: `Import the links of a Homepage (gethomepage.dev) services.yaml or
bookmarks.yaml into the configured collection. Links already saved are
skipped. Configuration is read from the same environment as serve.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg := config.Load()
			loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
			defer func() { _ = loggerClient.Sync() }()

			a, err := app.New(ctx, cfg, loggerClient)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := scheduler.NewHomepageImporter(args[0], a.Bookmarks(), loggerClient, cfg.HomepageInterval).Run(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d bookmarks\n", n)
			return err
		},
	}
}
