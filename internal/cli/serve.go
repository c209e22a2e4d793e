package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salinityengine/salinity/internal/core/document"
	"github.com/salinityengine/salinity/internal/core/entity"
	"github.com/salinityengine/salinity/internal/core/observability/log"
	"github.com/salinityengine/salinity/internal/injector"
	"github.com/salinityengine/salinity/internal/server"
)

func newServeCommand(opts *options) *cobra.Command {
	var (
		addr string
		key  string
	)
	cmd := &cobra.Command{
		Use:   "serve [FILE]",
		Short: "Serve a scene to the live inspector",
		Long: "Serve loads FILE, a stored document (--key), or an empty world, and exposes it\n" +
			"over HTTP with a websocket event stream until interrupted.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, cleanup, err := opts.runtime(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			live, err := loadLive(ctx, opts, rt, args, key)
			if err != nil {
				return err
			}

			cfg := injector.ProvideServerConfig(opts.cfg)
			if addr != "" {
				cfg.Addr = addr
			}
			srv, err := server.NewServer(cfg, live, rt.Events, rt.Logger)
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()

			if err := srv.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "serving on http://%s\n", srv.Addr())

			<-ctx.Done()
			return srv.Stop(context.WithoutCancel(ctx))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringVarP(&key, "key", "k", "", "Serve a document from the store")
	return cmd
}

func loadLive(ctx context.Context, opts *options, rt *injector.Runtime, args []string, key string) (*server.Live, error) {
	var (
		doc document.Document
		err error
	)
	switch {
	case len(args) == 1:
		doc, err = document.ReadFile(args[0])
	case key != "":
		store, cleanup, serr := injector.InitializeStore(opts.cfg)
		if serr != nil {
			return nil, serr
		}
		defer cleanup()
		doc, err = store.Get(ctx, key)
	default:
		return server.NewLive("untitled", rt.Env, rt.Assets, entity.NewWorld(rt.Env, "World")), nil
	}
	if err != nil {
		return nil, err
	}

	live := server.NewLive(doc.Name, rt.Env, rt.Assets, nil)
	if err := live.Replace(doc); err != nil {
		return nil, err
	}
	rt.Logger.Info("scene loaded", log.String("name", doc.Name), log.String("root", doc.Root.ID))
	return live, nil
}
