// Package build is the character build ledger: it owns one character
// aggregate and applies attribute, skill and module commands to it under the
// point budgets.
//
// Every command validates against the current state, applies its mutation to
// a clone and swaps the clone in only on success, so a rejected command
// leaves the ledger untouched. A Ledger is not safe for concurrent use.
package build

import (
	"time"

	"github.com/louisbranch/buildledger/internal/services/ledger/domain/budget"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/catalog"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/character"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
)

// Ledger owns one character under edit.
type Ledger struct {
	rules *ruleset.Ruleset
	index *catalog.Index
	char  *character.Character
	now   func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the clock used to stamp option selections.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// New returns a ledger over a copy of c.
func New(rules *ruleset.Ruleset, index *catalog.Index, c *character.Character, opts ...Option) *Ledger {
	l := &Ledger{
		rules: rules,
		index: index,
		char:  c.Clone(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Rules returns the ruleset the ledger enforces.
func (l *Ledger) Rules() *ruleset.Ruleset { return l.rules }

// Index returns the resolved catalog.
func (l *Ledger) Index() *catalog.Index { return l.index }

// Character returns a copy of the current character.
func (l *Ledger) Character() *character.Character { return l.char.Clone() }

// Record renders the current character for persistence, including cached
// pool totals and effective talents.
func (l *Ledger) Record() character.Record {
	rec := character.ToRecord(l.char, func(key string) int {
		return l.skillView(l.char, key).Talent
	})
	budgets := l.budgets(l.char)
	rec.TotalAttributePoints = budgets[budget.PoolAttribute].Total()
	rec.SpentAttributePoints = budgets[budget.PoolAttribute].Spent
	rec.TotalTalentPoints = budgets[budget.PoolTalent].Total()
	rec.SpentTalentPoints = budgets[budget.PoolTalent].Spent
	rec.TotalModulePoints = budgets[budget.PoolModule].Total()
	rec.SpentModulePoints = budgets[budget.PoolModule].Spent
	return rec
}

// Budget returns the current state of pool.
func (l *Ledger) Budget(pool budget.Pool) budget.Budget {
	return l.budget(l.char, pool)
}

// Budgets returns every pool.
func (l *Ledger) Budgets() map[budget.Pool]budget.Budget {
	return l.budgets(l.char)
}

func (l *Ledger) budget(c *character.Character, pool budget.Pool) budget.Budget {
	return budget.Compute(pool, l.rules, c, budget.SourcesFor(l.index, c))
}

func (l *Ledger) budgets(c *character.Character) map[budget.Pool]budget.Budget {
	return budget.ComputeAll(l.rules, c, budget.SourcesFor(l.index, c))
}

// commit applies mutate to a clone and keeps it only when mutate succeeds.
func (l *Ledger) commit(mutate func(next *character.Character) error) (Snapshot, error) {
	next := l.char.Clone()
	if err := mutate(next); err != nil {
		return Snapshot{}, err
	}
	l.char = next
	return l.Snapshot(), nil
}
