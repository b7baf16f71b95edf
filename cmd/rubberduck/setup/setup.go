// Package setup builds the components shared by the rubberduck commands from
// resolved configuration.
package setup

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/papercomputeco/rubberduck/pkg/action"
	"github.com/papercomputeco/rubberduck/pkg/completion"
	"github.com/papercomputeco/rubberduck/pkg/config"
	"github.com/papercomputeco/rubberduck/pkg/conversation"
	"github.com/papercomputeco/rubberduck/pkg/credentials"
	"github.com/papercomputeco/rubberduck/pkg/dotdir"
	"github.com/papercomputeco/rubberduck/pkg/gateway"
	"github.com/papercomputeco/rubberduck/pkg/panel"
	"github.com/papercomputeco/rubberduck/pkg/projection"
)

const documentsDir = "documents"

// ResolveProjectionDir returns override when set, otherwise the documents
// directory inside the resolved .rubberduck/ directory.
func ResolveProjectionDir(override, configDir string) (string, error) {
	if dir := strings.TrimSpace(override); dir != "" {
		return dir, nil
	}

	dir, err := dotdir.NewManager().Subdir(configDir, documentsDir)
	if err != nil {
		return "", fmt.Errorf("resolving projection dir: %w", err)
	}
	return dir, nil
}

// NewGateway builds the completion gateway. API keys are resolved from the
// credentials store in configDir on every call.
func NewGateway(cfg *config.Config, configDir string, log *slog.Logger) (*gateway.Client, error) {
	keys, err := credentials.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	return gateway.New(gateway.Config{
		Model:     cfg.Gateway.Model,
		BaseURL:   cfg.Gateway.BaseURL,
		MaxTokens: int(cfg.Gateway.MaxTokens),
		Timeout:   time.Duration(cfg.Gateway.TimeoutSeconds) * time.Second,
		Keys:      keys,
		Logger:    log,
	})
}

// NewStrategyFactory binds action.New to its dependencies.
func NewStrategyFactory(c completion.Completer, host projection.Host, log *slog.Logger) panel.StrategyFactory {
	deps := action.Deps{Completer: c, Host: host, Logger: log}
	return func(trigger conversation.Trigger) (conversation.Strategy, error) {
		return action.New(trigger, deps)
	}
}
