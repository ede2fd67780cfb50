package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archdraw/internal/server"
	"github.com/matzehuels/archdraw/pkg/errors"
	"github.com/matzehuels/archdraw/pkg/storage"
)

// Diagram store backends for the serve command.
const (
	storeNone   = "none"
	storeMemory = "memory"
	storeFile   = "file"
	storeMongo  = "mongo"
)

type serveOpts struct {
	addr     string
	store    string
	dataDir  string
	mongoURI string
	noCache  bool
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout and rendering API over HTTP",
		Long: `Serve the layout and rendering API over HTTP.

Endpoints:
  POST /v1/layout         records -> rectangles
  POST /v1/render         records -> draw.io document
  POST /v1/merge          two documents -> merged document
  POST /v1/reconstruct    document -> records
  /v1/diagrams[/{id}]     saved diagrams (needs --store)
  GET  /healthz

The server shuts down gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") && c.config.Server.Addr != "" {
				opts.addr = c.config.Server.Addr
			}
			if !cmd.Flags().Changed("store") && c.config.Server.Store != "" {
				opts.store = c.config.Server.Store
			}
			if !cmd.Flags().Changed("mongo-uri") && c.config.Mongo.URI != "" {
				opts.mongoURI = c.config.Mongo.URI
			}
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&opts.store, "store", storeMemory, "diagram store: memory, file, mongo, none")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "file store directory (default: ~/.local/share/archdraw/diagrams)")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB connection string for --store mongo")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	store, err := c.newStore(ctx, opts)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	srv := server.New(runner, store, loggerFromContext(ctx), server.Config{Addr: opts.addr})
	printInfo("Listening on %s", StyleLink.Render("http://"+opts.addr))
	return srv.ListenAndServe(ctx)
}

// newStore opens the diagram store named by opts. The "none" store returns
// a nil Store.
func (c *CLI) newStore(ctx context.Context, opts serveOpts) (storage.Store, error) {
	switch opts.store {
	case storeNone:
		return nil, nil
	case storeMemory, "":
		return storage.NewMemoryStore(), nil
	case storeFile:
		return storage.NewFileStore(opts.dataDir)
	case storeMongo:
		cfg := c.config.Mongo.storeConfig()
		cfg.URI = opts.mongoURI
		return storage.NewMongoStore(ctx, cfg)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store %q (use memory, file, mongo, or none)", opts.store)
}
