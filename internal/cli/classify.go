package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/sources/taxonomy"
)

func newClassifyCommand() *cobra.Command {
	var taxonomyFile string

	cmd := &cobra.Command{
		Use:   "classify TEXT...",
		Short: "Print the topic assigned to a text",
		Example: `  shelf classify "Intro to deep learning"
  shelf classify --taxonomy topics.yaml "marathon training plan"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tax, err := taxonomy.LoadOrDefault(taxonomyFile)
			if err != nil {
				return fmt.Errorf("failed to load taxonomy: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tax.Classify(strings.Join(args, " ")))
			return err
		},
	}
	cmd.Flags().StringVar(&taxonomyFile, "taxonomy", "", "YAML taxonomy file, built-in topics when empty")

	return cmd
}
