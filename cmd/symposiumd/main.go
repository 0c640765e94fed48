// Command symposiumd runs the seminar API server: multi-agent discussions
// over a configurable model backend, with live websocket updates.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	openaisdk "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/symposium-ai/symposium"
	"github.com/symposium-ai/symposium/agent"
	"github.com/symposium-ai/symposium/auth"
	"github.com/symposium-ai/symposium/inference"
	"github.com/symposium-ai/symposium/inference/anthropic"
	"github.com/symposium-ai/symposium/inference/huggingface"
	"github.com/symposium-ai/symposium/inference/openai"
	"github.com/symposium-ai/symposium/logging"
	"github.com/symposium-ai/symposium/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		backend    string
	)

	rootCmd := &cobra.Command{
		Use:          "symposiumd",
		Short:        "Multi-agent seminar API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if backend != "" {
				cfg.Backend.Provider = backend
			}
			return run(cmd.Context(), cfg)
		},
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	rootCmd.Flags().StringVar(&backend, "backend", "", "model backend: huggingface, openai or anthropic (overrides config)")
	return rootCmd
}

func run(ctx context.Context, cfg Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cfg)

	completer, err := newCompleter(cfg)
	if err != nil {
		return err
	}

	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	prompts := agent.StaticPrompts{}
	if cfg.PromptsDir != "" {
		prompts, err = agent.LoadPromptDir(cfg.PromptsDir)
		if err != nil {
			return err
		}
		logger.Info("loaded persona prompts", "dir", cfg.PromptsDir, "count", len(prompts))
	}

	sym, err := symposium.New(completer, func(o *symposium.Options) {
		o.Registry = registry
		o.Prompts = prompts
		o.IdleTimeout = cfg.Conversation.IdleTimeout
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	var authMgr *auth.Manager
	if cfg.Auth.Secret != "" {
		authMgr = auth.NewManager(cfg.Auth.Secret, func(o *auth.ManagerOptions) { o.Logger = logger })
	}

	api := server.New(sym.Scheduler(), registry, sym.Memory(), sym.Transcripts(), sym.Hub(), func(o *server.Options) {
		o.Auth = authMgr
		o.Logger = logger
		o.RequestsPerHour = cfg.RateLimit.RequestsPerHour
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Addr, "backend", cfg.Backend.Provider)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sym.Hub().RunHeartbeat(ctx)
		return nil
	})
	if cfg.Conversation.IdleTimeout > 0 {
		g.Go(func() error {
			sym.Transcripts().RunSweeper(ctx)
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newLogger(cfg Config) logging.Logger {
	level := logging.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	return logging.New(level, cfg.Log.Format, os.Stderr)
}

func newCompleter(cfg Config) (inference.Completer, error) {
	switch cfg.Backend.Provider {
	case "huggingface", "":
		return huggingface.New(cfg.Backend.APIKey, func(o *huggingface.Options) {
			if cfg.Backend.Model != "" {
				o.Model = cfg.Backend.Model
			}
			if cfg.Backend.BaseURL != "" {
				o.BaseURL = cfg.Backend.BaseURL
			}
		}), nil
	case "openai":
		var clientOpts []openaiopt.RequestOption
		if cfg.Backend.APIKey != "" {
			clientOpts = append(clientOpts, openaiopt.WithAPIKey(cfg.Backend.APIKey))
		}
		if cfg.Backend.BaseURL != "" {
			clientOpts = append(clientOpts, openaiopt.WithBaseURL(cfg.Backend.BaseURL))
		}
		client := openaisdk.NewClient(clientOpts...)
		return openai.NewFromClient(&client, func(o *openai.Options) {
			if cfg.Backend.Model != "" {
				o.Model = cfg.Backend.Model
			}
		}), nil
	case "anthropic":
		var clientOpts []anthropicopt.RequestOption
		if cfg.Backend.APIKey != "" {
			clientOpts = append(clientOpts, anthropicopt.WithAPIKey(cfg.Backend.APIKey))
		}
		if cfg.Backend.BaseURL != "" {
			clientOpts = append(clientOpts, anthropicopt.WithBaseURL(cfg.Backend.BaseURL))
		}
		client := anthropicsdk.NewClient(clientOpts...)
		return anthropic.NewFromClient(&client, func(o *anthropic.Options) {
			if cfg.Backend.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Backend.Model)
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown backend provider %q", cfg.Backend.Provider)
	}
}

func newRegistry(cfg Config) (*agent.Registry, error) {
	if cfg.AgentsFile != "" {
		return agent.LoadFile(cfg.AgentsFile)
	}
	if cfg.Backend.Model != "" {
		return agent.NewRegistry(func(o *agent.RegistryOptions) {
			o.Defaults.Model = cfg.Backend.Model
		})
	}
	return agent.NewRegistry()
}
