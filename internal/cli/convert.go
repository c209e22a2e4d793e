package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/salinityengine/salinity/internal/core/document"
)

func newConvertCommand(opts *options) *cobra.Command {
	var (
		to     string
		outDir string
		jobs   int
	)
	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Re-encode documents into another format",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := opts.cfg.DocumentFormat()
			if to != "" {
				var err error
				if format, err = document.ParseFormat(to); err != nil {
					return err
				}
			}
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return err
				}
			}

			var mu sync.Mutex
			out := cmd.OutOrStdout()
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(jobs, 1))
			for _, src := range args {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					dst := convertedPath(src, outDir, format)
					if err := convertFile(src, dst, format); err != nil {
						return fmt.Errorf("%s: %w", src, err)
					}
					mu.Lock()
					fmt.Fprintf(out, "%s -> %s\n", src, dst)
					mu.Unlock()
					return nil
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVarP(&to, "to", "t", "", "Target format: json, yaml or cbor (default from config)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default: next to each input)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "Files converted in parallel")
	return cmd
}

func convertedPath(src, outDir string, format document.Format) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + "." + format.String()
	if outDir == "" {
		return filepath.Join(filepath.Dir(src), base)
	}
	return filepath.Join(outDir, base)
}

func convertFile(src, dst string, format document.Format) error {
	doc, err := document.ReadFile(src)
	if err != nil {
		return err
	}
	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil
	}
	return document.WriteFile(dst, doc, format)
}
