// Package cli holds the shelf command line: the server and a few one-shot
// commands sharing its pipeline.
package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// NewRootCommand returns the shelf command tree. Without a subcommand it
// runs the server.
func NewRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "shelf",
		Short: "Bookmark organizer with per-source extraction and topic tagging",
		Long: `shelf saves links together with what they point at: the title, a content
excerpt, the author and a thumbnail, extracted with rules specific to each
source (videos, short posts, feeds, articles). Every bookmark is tagged with
a topic by keyword matching and can be searched, filtered and grouped.

Run without a subcommand to start the HTTP server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	root.AddCommand(
		newServeCommand(),
		newExtractCommand(),
		newClassifyCommand(),
		newImportCommand(),
		newVersionCommand(),
	)
	return root
}
