// Package servecmder provides the serve command that hosts conversations for
// an editor extension.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/rubberduck/api"
	"github.com/papercomputeco/rubberduck/api/mcp"
	"github.com/papercomputeco/rubberduck/api/ws"
	"github.com/papercomputeco/rubberduck/cmd/rubberduck/setup"
	"github.com/papercomputeco/rubberduck/pkg/config"
	"github.com/papercomputeco/rubberduck/pkg/eventstream"
	"github.com/papercomputeco/rubberduck/pkg/eventstream/kafka"
	"github.com/papercomputeco/rubberduck/pkg/eventstream/nop"
	"github.com/papercomputeco/rubberduck/pkg/logger"
	"github.com/papercomputeco/rubberduck/pkg/panel"
	"github.com/papercomputeco/rubberduck/pkg/projection"
	"github.com/papercomputeco/rubberduck/pkg/projection/filehost"
	"github.com/papercomputeco/rubberduck/pkg/worker"
)

const shutdownTimeout = 5 * time.Second

type ServeCommander struct {
	listen         string
	eventsListen   string
	projectionDir  string
	eventStream    string
	kafkaBrokers   string
	eventTopic     string
	publishWorkers uint

	model     string
	baseURL   string
	maxTokens uint
	timeout   uint

	noMCP     bool
	debug     bool
	configDir string

	logger *slog.Logger
}

var serveFlags = []string{
	config.FlagListen,
	config.FlagEventsListen,
	config.FlagProjectionDir,
	config.FlagEventStream,
	config.FlagKafkaBrokers,
	config.FlagEventTopic,
	config.FlagPublishWorkers,
	config.FlagModel,
	config.FlagBaseURL,
	config.FlagMaxTokens,
	config.FlagTimeout,
}

const serveLongDesc string = `Run the rubberduck services for an editor extension.

Starts together:
  HTTP API            create conversations, post replies, read state (--listen)
  MCP endpoint        /mcp on the HTTP API (disable with --no-mcp)
  Websocket bridge    /events streams conversation events (--events-listen)

Conversation events are also published to the configured event stream
(--eventstream nop|kafka). Code produced by generate-test and refine is
written to the projection directory.`

const serveShortDesc string = "Run the rubberduck services"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)

			return cmder.run(config.FromViper(v))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsListen, &cmder.eventsListen)
	config.AddStringFlag(cmd, config.Flags, config.FlagProjectionDir, &cmder.projectionDir)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventStream, &cmder.eventStream)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventTopic, &cmder.eventTopic)
	config.AddUintFlag(cmd, config.Flags, config.FlagPublishWorkers, &cmder.publishWorkers)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &cmder.baseURL)
	config.AddUintFlag(cmd, config.Flags, config.FlagMaxTokens, &cmder.maxTokens)
	config.AddUintFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Serve /mcp without tools")

	return cmd
}

func (c *ServeCommander) run(cfg *config.Config) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithJSON(true))

	gw, err := setup.NewGateway(cfg, c.configDir, c.logger)
	if err != nil {
		return err
	}

	dir, err := setup.ResolveProjectionDir(cfg.Projection.Dir, c.configDir)
	if err != nil {
		return err
	}
	host, err := filehost.New(filehost.Config{
		Dir: dir,
		OnOpen: func(path string, _ projection.Placement) {
			c.logger.Info("document projected", "path", path)
		},
		Logger: c.logger,
	})
	if err != nil {
		return err
	}

	p, err := panel.New(panel.Config{
		Strategies: setup.NewStrategyFactory(gw, host, c.logger),
		Logger:     c.logger,
	})
	if err != nil {
		return err
	}

	publisher, err := newPublisher(cfg.EventStream)
	if err != nil {
		return err
	}
	defer publisher.Close()

	pool, err := worker.NewPool(&worker.Config{
		Publisher:  publisher,
		NumWorkers: cfg.Worker.NumWorkers,
		QueueSize:  cfg.Worker.QueueSize,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Close()
	p.Subscribe(pool.Subscriber())

	mcpServer, err := mcp.NewServer(mcp.Config{
		Panel:  p,
		Noop:   c.noMCP,
		Logger: c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	apiServer, err := api.NewServer(api.Config{
		ListenAddr: cfg.API.Listen,
		MCPHandler: mcpServer.Handler(),
	}, p, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	wsServer, err := ws.NewServer(ws.Config{
		ListenAddr: cfg.API.EventsListen,
		Panel:      p,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating websocket bridge: %w", err)
	}

	c.logger.Info("starting rubberduck services",
		"api_addr", cfg.API.Listen,
		"events_addr", cfg.API.EventsListen,
		"model", gw.Model(),
		"projection_dir", dir,
		"eventstream", cfg.EventStream.Provider,
	)

	// Channel to capture errors from goroutines
	errChan := make(chan error, 2)

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	go func() {
		if err := wsServer.Run(); err != nil {
			errChan <- fmt.Errorf("websocket bridge error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case runErr = <-errChan:
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := wsServer.Shutdown(ctx); err != nil {
		c.logger.Warn("websocket bridge shutdown failed", "error", err)
	}
	if err := apiServer.Shutdown(); err != nil {
		c.logger.Warn("API server shutdown failed", "error", err)
	}

	return runErr
}

// newPublisher selects the event stream backend.
func newPublisher(cfg config.EventStreamConfig) (eventstream.Publisher, error) {
	switch cfg.Provider {
	case "", "nop":
		return nop.NewPublisher(), nil
	case "kafka":
		pub, err := kafka.NewPublisher(kafka.Config{
			Brokers: kafka.ParseBrokers(cfg.Brokers),
			Topic:   cfg.Topic,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("unknown eventstream provider: %q (supported: nop, kafka)", cfg.Provider)
	}
}
