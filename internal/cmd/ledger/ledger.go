// Package ledger parses ledger command flags and inspects, reconciles or
// repairs one stored character.
package ledger

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	entrypoint "github.com/louisbranch/buildledger/internal/platform/cmd"
	i18ncatalog "github.com/louisbranch/buildledger/internal/platform/i18n/catalog"
	"github.com/louisbranch/buildledger/internal/services/ledger/app"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/budget"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
	storagesqlite "github.com/louisbranch/buildledger/internal/services/ledger/storage/sqlite"
	"golang.org/x/text/message"
)

// Config holds ledger command configuration.
type Config struct {
	DBPath      string `env:"BUILDLEDGER_DB_PATH"      envDefault:"data/ledger.db"`
	RulesetPath string `env:"BUILDLEDGER_RULESET_PATH"`
	Locale      string `env:"BUILDLEDGER_LOCALE"       envDefault:"en-US"`
	CharacterID string
	// ReconcileOnly reports what loading would change without opening a session.
	ReconcileOnly bool
	// Write saves the reconciled character back.
	Write bool
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
	fs.StringVar(&cfg.CharacterID, "character", "", "character id")
	fs.BoolVar(&cfg.ReconcileOnly, "reconcile-only", false, "report reconciliation without printing budgets")
	fs.BoolVar(&cfg.Write, "write", false, "save the reconciled character")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.CharacterID) == "" {
		return Config{}, errors.New("character is required")
	}
	if cfg.ReconcileOnly && cfg.Write {
		return Config{}, errors.New("reconcile-only and write are mutually exclusive")
	}
	return cfg, nil
}

// Run loads the character and writes a report to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceLedger, func(ctx context.Context) error {
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
		return report(ctx, svc, cfg, out)
	})
}

func report(ctx context.Context, svc *app.Service, cfg Config, out io.Writer) error {
	if cfg.ReconcileOnly {
		loaded, err := svc.Load(ctx, cfg.CharacterID)
		if err != nil {
			return err
		}
		for _, notice := range svc.Notices(loaded.Result) {
			fmt.Fprintln(out, notice)
		}
		for _, corr := range loaded.Result.Corrections {
			fmt.Fprintf(out, "%s: %d -> %d\n", corr.Skill, corr.From, corr.To)
		}
		for _, field := range loaded.Result.MigratedFields {
			fmt.Fprintf(out, "migrated %s\n", field)
		}
		return nil
	}

	sess, err := svc.Open(ctx, cfg.CharacterID)
	if err != nil {
		return err
	}
	for _, notice := range sess.Notices() {
		fmt.Fprintln(out, notice)
	}
	snap, err := sess.Snapshot()
	if err != nil {
		return err
	}
	printer := i18ncatalog.Default().Printer(svc.Locale())
	fmt.Fprintf(out, "%s (%s)\n", snap.Name, snap.CharacterID)
	for _, pool := range budget.Pools {
		b, _ := snap.Budget(pool)
		fmt.Fprintln(out, printer.Sprintf("ledger.budget.line", poolLabel(printer, pool), b.Spent, b.Base+b.Bonus, b.Remaining))
	}
	for _, skill := range snap.Skills {
		fmt.Fprintf(out, "  %-22s %2d  %s\n", skill.Key, skill.Talent, skill.Dice)
	}

	if cfg.Write {
		return svc.Save(ctx, sess)
	}
	return nil
}

func poolLabel(printer *message.Printer, pool budget.Pool) string {
	switch pool {
	case budget.PoolAttribute:
		return printer.Sprintf("ledger.pool.attribute")
	case budget.PoolTalent:
		return printer.Sprintf("ledger.pool.talent")
	case budget.PoolModule:
		return printer.Sprintf("ledger.pool.module")
	default:
		return string(pool)
	}
}
