// Package mcp parses MCP command flags and serves the ledger tools on stdio
// or HTTP.
package mcp

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/buildledger/internal/platform/cmd"
	"github.com/louisbranch/buildledger/internal/services/ledger/app"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
	storagesqlite "github.com/louisbranch/buildledger/internal/services/ledger/storage/sqlite"
	mcpservice "github.com/louisbranch/buildledger/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath       string   `env:"BUILDLEDGER_DB_PATH"           envDefault:"data/ledger.db"`
	RulesetPath  string   `env:"BUILDLEDGER_RULESET_PATH"`
	Locale       string   `env:"BUILDLEDGER_LOCALE"            envDefault:"en-US"`
	HTTPAddr     string   `env:"BUILDLEDGER_MCP_HTTP_ADDR"     envDefault:"localhost:8081"`
	Transport    string   `env:"BUILDLEDGER_MCP_TRANSPORT"     envDefault:"stdio"`
	AllowedHosts []string `env:"BUILDLEDGER_MCP_ALLOWED_HOSTS" envSeparator:","`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "ledger database path")
	fs.StringVar(&cfg.RulesetPath, "ruleset", cfg.RulesetPath, "optional ruleset YAML")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for user-facing messages")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens the ledger store and starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		rules, err := ruleset.LoadFile(cfg.RulesetPath)
		if err != nil {
			return err
		}
		store, err := storagesqlite.Open(ctx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open ledger store: %w", err)
		}
		defer store.Close()

		svc, err := app.NewService(app.Config{
			Rules:      rules,
			Characters: store,
			Content:    store,
			Locale:     cfg.Locale,
		})
		if err != nil {
			return err
		}
		return mcpservice.Run(ctx, mcpservice.Config{
			Transport:    mcpservice.TransportKind(cfg.Transport),
			HTTPAddr:     cfg.HTTPAddr,
			AllowedHosts: cfg.AllowedHosts,
		}, svc)
	})
}
