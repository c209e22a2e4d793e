package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salinityengine/salinity/internal/core/assets"
	"github.com/salinityengine/salinity/internal/core/document"
	"github.com/salinityengine/salinity/internal/core/entity"
	"github.com/salinityengine/salinity/internal/injector"
)

var errInvalid = errors.New("invalid documents")

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check that documents decode and reference only registered types",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := opts.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				problems, summary := validateFile(rt, path)
				if len(problems) == 0 {
					fmt.Fprintf(out, "ok\t%s\t%s\n", path, summary)
					continue
				}
				failed++
				for _, p := range problems {
					fmt.Fprintf(out, "FAIL\t%s\t%s\n", path, p)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", errInvalid, failed, len(args))
			}
			return nil
		},
	}
}

func validateFile(rt *injector.Runtime, path string) ([]string, string) {
	doc, err := document.ReadFile(path)
	if err != nil {
		return []string{err.Error()}, ""
	}

	var problems []string
	walkRecords(doc.Root, func(r entity.Record) {
		if _, ok := rt.Types.Resolve(r.Meta.Type); !ok {
			problems = append(problems, fmt.Sprintf("entity %s: unknown type %q", r.ID, r.Meta.Type))
		}
		for _, c := range r.Components {
			if _, ok := rt.Components.Lookup(c.Meta.Type); !ok {
				problems = append(problems, fmt.Sprintf("entity %s: unknown component %q", r.ID, c.Meta.Type))
			}
		}
	})
	if len(problems) > 0 {
		return problems, ""
	}

	root, err := doc.Restore(rt.Env, assets.NewRegistry(rt.Logger))
	if err != nil {
		return []string{err.Error()}, ""
	}
	defer root.Dispose()

	entities, components := 0, 0
	for e := range root.All() {
		entities++
		components += len(e.Components())
	}
	fp, _ := document.Fingerprint(doc)
	return nil, fmt.Sprintf("entities=%d components=%d fingerprint=%016x", entities, components, fp)
}

func walkRecords(r entity.Record, fn func(entity.Record)) {
	fn(r)
	for _, child := range r.Children {
		walkRecords(child, fn)
	}
}
