package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/salinityengine/salinity/internal/core/document"
	"github.com/salinityengine/salinity/internal/injector"
)

func newStoreCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage documents in the project database",
	}
	cmd.AddCommand(
		newStorePutCommand(opts),
		newStoreGetCommand(opts),
		newStoreListCommand(opts),
		newStoreDeleteCommand(opts),
	)
	return cmd
}

func newStorePutCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "put KEY FILE",
		Short: "Store a document under KEY",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.ReadFile(args[1])
			if err != nil {
				return err
			}
			store, cleanup, err := injector.InitializeStore(opts.cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			written, err := store.Put(cmd.Context(), args[0], doc)
			if err != nil {
				return err
			}
			if written {
				fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "unchanged %s\n", args[0])
			}
			return nil
		},
	}
}

func newStoreGetCommand(opts *options) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print or export a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := injector.InitializeStore(opts.cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			f := opts.cfg.DocumentFormat()
			if format != "" {
				if f, err = document.ParseFormat(format); err != nil {
					return err
				}
			}
			if out != "" {
				if format == "" {
					f = ""
				}
				return document.WriteFile(out, doc, f)
			}
			return document.Encode(cmd.OutOrStdout(), doc, f)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (default from config, or the --out extension)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newStoreListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := injector.InitializeStore(opts.cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tNAME\tSIZE\tFINGERPRINT\tUPDATED")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%016x\t%s\n",
					e.Key, e.Name, e.Size, e.Fingerprint, e.UpdatedAt.UTC().Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}

func newStoreDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete KEY",
		Short: "Remove a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := injector.InitializeStore(opts.cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			return store.Delete(cmd.Context(), args[0])
		},
	}
}
