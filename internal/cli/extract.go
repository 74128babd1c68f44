package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/bookmark"
	"github.com/MrSnakeDoc/shelf/internal/extract"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/page"
)

type extractOptions struct {
	url        string
	htmlFile   string
	target     string
	timeout    time.Duration
	maxBytes   int64
	retryDelay time.Duration
}

func newExtractCommand() *cobra.Command {
	opts := extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Print the extraction for a URL without saving it",
		Long: `Run the source extraction on a page and print the result as JSON.
The page is fetched from --url unless a saved copy is given with --file.`,
		Example: `  shelf extract --url https://www.youtube.com/watch?v=dQw4w9WgXcQ
  shelf extract --url https://x.com/home --file timeline.html --target '#post-3'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runExtract(ctx, cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "page URL (required)")
	cmd.Flags().StringVar(&opts.htmlFile, "file", "", "saved HTML of the page, skips the fetch")
	cmd.Flags().StringVar(&opts.target, "target", "", "CSS selector of the element to extract")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "page fetch timeout")
	cmd.Flags().Int64Var(&opts.maxBytes, "max-bytes", 5<<20, "largest page body read")
	cmd.Flags().DurationVar(&opts.retryDelay, "retry-delay", 500*time.Millisecond, "wait before retrying a page that was not ready")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func runExtract(ctx context.Context, cmd *cobra.Command, opts extractOptions) error {
	req := bookmark.Request{URL: opts.url, Target: opts.target}
	if opts.htmlFile != "" {
		data, err := os.ReadFile(opts.htmlFile)
		if err != nil {
			return fmt.Errorf("failed to read html file: %w", err)
		}
		req.HTML = string(data)
	}

	log := logger.Nop()
	svc := bookmark.NewService(bookmark.Options{
		Loader:     page.NewFetcher(opts.timeout, opts.maxBytes),
		Dispatcher: extract.NewDispatcher(log, nil),
		RetryDelay: opts.retryDelay,
		Log:        log,
	})

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(svc.Extract(ctx, req))
}
