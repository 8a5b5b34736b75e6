// Package servecmder provides the serve command that runs the clerk API.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/clerk/api"
	"github.com/papercomputeco/clerk/api/mcp"
	"github.com/papercomputeco/clerk/pkg/analysis"
	"github.com/papercomputeco/clerk/pkg/assistant"
	"github.com/papercomputeco/clerk/pkg/completion"
	completionutils "github.com/papercomputeco/clerk/pkg/completion/utils"
	"github.com/papercomputeco/clerk/pkg/config"
	"github.com/papercomputeco/clerk/pkg/credentials"
	"github.com/papercomputeco/clerk/pkg/embeddings"
	embeddingutils "github.com/papercomputeco/clerk/pkg/embeddings/utils"
	eventstreamutils "github.com/papercomputeco/clerk/pkg/eventstream/utils"
	"github.com/papercomputeco/clerk/pkg/logger"
	"github.com/papercomputeco/clerk/pkg/records"
	"github.com/papercomputeco/clerk/pkg/retrieval"
	"github.com/papercomputeco/clerk/pkg/session"
	"github.com/papercomputeco/clerk/pkg/session/local"
	"github.com/papercomputeco/clerk/pkg/vector"
	vectorutils "github.com/papercomputeco/clerk/pkg/vector/utils"
	"github.com/papercomputeco/clerk/pkg/worker"
)

type serveCommander struct {
	listen string

	vectorProvider   string
	vectorTarget     string
	vectorCollection string

	embeddingProvider string
	embeddingTarget   string
	embeddingModel    string
	embeddingDims     uint

	completionProvider string
	completionTarget   string
	completionModel    string

	eventProvider string
	eventBrokers  string
	eventTopic    string

	workers     uint
	searchLimit uint

	logFile string
	debug   bool

	configDir string
	logger    *slog.Logger
}

// serveFlags lists every registry flag the serve command exposes.
var serveFlags = []string{
	config.FlagAPIListen,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagVectorCollection,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagCompletionProv,
	config.FlagCompletionTgt,
	config.FlagCompletionModel,
	config.FlagEventStreamProv,
	config.FlagEventStreamBroker,
	config.FlagEventStreamTopic,
	config.FlagWorkers,
	config.FlagSearchLimit,
}

const serveLongDesc string = `Run the clerk API server.

The server analyzes uploaded invoice batches against a reimbursement policy,
stores the results in the configured record store and answers hybrid search
and chat requests over them. An MCP endpoint is served at /mcp.

Settings come from flags, CLERK_* environment variables, config.toml and
defaults, in that order. API keys are read from GOOGLE_API_KEY,
OPENAI_API_KEY, ANTHROPIC_API_KEY and QDRANT_API_KEY or from keys stored
with "clerk auth".

Examples:
  clerk serve
  clerk serve --completion-provider openai --completion-model gpt-4o-mini
  clerk serve --vector-store-provider qdrant --vector-store-target localhost:6334
  clerk serve --event-stream-provider kafka --event-stream-brokers localhost:9092`

const serveShortDesc string = "Run the clerk API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)
			cmder.applyViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreProv, &cmder.vectorProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreTgt, &cmder.vectorTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorCollection, &cmder.vectorCollection)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &cmder.embeddingProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &cmder.embeddingTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &cmder.embeddingDims)
	config.AddStringFlag(cmd, config.Flags, config.FlagCompletionProv, &cmder.completionProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagCompletionTgt, &cmder.completionTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagCompletionModel, &cmder.completionModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventStreamProv, &cmder.eventProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventStreamBroker, &cmder.eventBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventStreamTopic, &cmder.eventTopic)
	config.AddUintFlag(cmd, config.Flags, config.FlagWorkers, &cmder.workers)
	config.AddUintFlag(cmd, config.Flags, config.FlagSearchLimit, &cmder.searchLimit)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

// applyViper copies the resolved values (flag > env > config file > default)
// onto the commander.
func (c *serveCommander) applyViper(v *viper.Viper) {
	c.listen = v.GetString("api.listen")
	c.vectorProvider = v.GetString("vector_store.provider")
	c.vectorTarget = v.GetString("vector_store.target")
	c.vectorCollection = v.GetString("vector_store.collection")
	c.embeddingProvider = v.GetString("embedding.provider")
	c.embeddingTarget = v.GetString("embedding.target")
	c.embeddingModel = v.GetString("embedding.model")
	c.embeddingDims = v.GetUint("embedding.dimensions")
	c.completionProvider = v.GetString("completion.provider")
	c.completionTarget = v.GetString("completion.target")
	c.completionModel = v.GetString("completion.model")
	c.eventProvider = v.GetString("event_stream.provider")
	c.eventBrokers = v.GetString("event_stream.brokers")
	c.eventTopic = v.GetString("event_stream.topic")
	c.workers = v.GetUint("analysis.workers")
	c.searchLimit = v.GetUint("search.limit")
}

func (c *serveCommander) newLogger() (*slog.Logger, func(), error) {
	console := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))
	if c.logFile == "" {
		return console, func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(logger.WithDebug(c.debug), logger.WithJSON(true), logger.WithWriter(f))
	return logger.Multi(console, file), func() { _ = f.Close() }, nil
}

func (c *serveCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		closeLog func()
		err      error
	)
	c.logger, closeLog, err = c.newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	creds, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	vectorDriver, err := c.newVectorDriver(ctx, creds)
	if err != nil {
		return err
	}
	defer vectorDriver.Close()

	embedder, err := c.newEmbedder(ctx, creds)
	if err != nil {
		return err
	}
	defer embedder.Close()

	provider, err := c.newCompletionProvider(ctx, creds)
	if err != nil {
		return err
	}
	defer provider.Close()

	publisher, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: c.eventProvider,
		Brokers:      c.eventBrokers,
		Topic:        c.eventTopic,
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer publisher.Close()

	events, err := worker.NewPool(&worker.Config{
		Publisher: publisher,
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating event worker pool: %w", err)
	}
	defer events.Close()

	store := records.NewStore(records.Config{
		Driver:   vectorDriver,
		Embedder: embedder,
		Logger:   c.logger,
	})
	retriever := retrieval.NewRetriever(store, c.logger)

	var sessions session.Store = local.NewDriver(local.Config{MaxTurns: session.MaxTurns})

	chat := assistant.New(assistant.Config{
		Provider:    provider,
		Retriever:   retriever,
		Sessions:    sessions,
		SearchLimit: int(c.searchLimit),
		Logger:      c.logger,
	})

	batch := analysis.NewBatch(analysis.BatchConfig{
		Analyzer: analysis.NewAnalyzer(provider, c.logger),
		Store:    store,
		Events:   events,
		Workers:  int(c.workers),
		Logger:   c.logger,
	})

	mcpServer, err := mcp.NewServer(mcp.Config{
		Retriever: retriever,
		Sessions:  sessions,
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	apiServer, err := api.NewServer(api.Config{
		ListenAddr:  c.listen,
		SearchLimit: int(c.searchLimit),
		Retriever:   retriever,
		Assistant:   chat,
		Batch:       batch,
		Sessions:    sessions,
		MCPHandler:  mcpServer.Handler(),
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.logger.Info("clerk configured",
		"vector_store", c.vectorProvider,
		"embedding", c.embeddingProvider,
		"completion", c.completionProvider,
		"event_stream", c.eventProvider,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return apiServer.Shutdown()
	}
}

func (c *serveCommander) newVectorDriver(ctx context.Context, creds *credentials.Manager) (vector.Driver, error) {
	var apiKey string
	if c.vectorProvider == vectorutils.ProviderQdrant {
		var err error
		apiKey, err = creds.ResolveKey("qdrant")
		if err != nil {
			return nil, fmt.Errorf("resolving qdrant key: %w", err)
		}
	}

	driver, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
		ProviderType: c.vectorProvider,
		Target:       c.vectorTarget,
		Collection:   c.vectorCollection,
		Dimensions:   c.embeddingDims,
		APIKey:       apiKey,
		Logger:       c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating record store: %w", err)
	}
	return driver, nil
}

func (c *serveCommander) newEmbedder(ctx context.Context, creds *credentials.Manager) (embeddings.Embedder, error) {
	apiKey, err := creds.ResolveKey(c.embeddingProvider)
	if err != nil {
		return nil, fmt.Errorf("resolving embedding key: %w", err)
	}

	embedder, err := embeddingutils.NewEmbedder(ctx, &embeddingutils.NewEmbedderOpts{
		ProviderType: c.embeddingProvider,
		TargetURL:    c.embeddingTarget,
		Model:        c.embeddingModel,
		Dimensions:   int(c.embeddingDims),
		APIKey:       apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return embedder, nil
}

func (c *serveCommander) newCompletionProvider(ctx context.Context, creds *credentials.Manager) (completion.Provider, error) {
	apiKey, err := creds.ResolveKey(c.completionProvider)
	if err != nil {
		return nil, fmt.Errorf("resolving completion key: %w", err)
	}
	if apiKey == "" && c.completionProvider != "ollama" {
		return nil, fmt.Errorf("no API key for completion provider %s: set %s or run clerk auth",
			c.completionProvider, credentials.EnvVarForProvider(c.completionProvider))
	}

	provider, err := completionutils.NewProvider(ctx, &completionutils.NewProviderOpts{
		ProviderType: c.completionProvider,
		TargetURL:    c.completionTarget,
		Model:        c.completionModel,
		APIKey:       apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating completion provider: %w", err)
	}
	return provider, nil
}
