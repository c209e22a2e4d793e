package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/salinityengine/salinity/internal/core/document"
)

func newQueryCommand(_ *options) *cobra.Command {
	return &cobra.Command{
		Use:     "query JSONPATH FILE",
		Short:   "Evaluate a JSONPath expression against a document",
		Example: `  salinity query '$..children[?(@.category == "prefab")].name' scene.yaml`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.ReadFile(args[1])
			if err != nil {
				return err
			}
			results, err := document.Query(doc, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		},
	}
}
