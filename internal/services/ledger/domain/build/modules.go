package build

import (
	"strconv"

	apperrors "github.com/louisbranch/buildledger/internal/platform/errors"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/budget"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/catalog"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/character"
)

// OptionStatus is the selection state of one module option.
type OptionStatus string

const (
	OptionUnavailable OptionStatus = "unavailable"
	OptionAvailable   OptionStatus = "available"
	OptionSelected    OptionStatus = "selected"
)

// OptionState describes one option of a module for the current character.
type OptionState struct {
	Location     string       `json:"location"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Status       OptionStatus `json:"status"`
	Cost         int          `json:"cost"`
	Affordable   bool         `json:"affordable"`
	Deselectable bool         `json:"deselectable"`
	// Reason explains an unavailable or non-deselectable option.
	Reason string `json:"reason,omitempty"`
}

// CanSelect reports whether Select would succeed.
func (l *Ledger) CanSelect(moduleID, location string) bool {
	def, loc, err := l.lookup(moduleID, location)
	if err != nil {
		return false
	}
	if mod, ok := l.char.Module(moduleID); ok && mod.Has(loc) {
		return false
	}
	return l.selectable(def, loc) == nil
}

// Select records an option. Selecting a tier-1 option attaches its module for
// free; any other option costs one module point. Selecting an option that is
// already selected is a no-op.
func (l *Ledger) Select(moduleID, location string) (Snapshot, error) {
	def, loc, err := l.lookup(moduleID, location)
	if err != nil {
		return Snapshot{}, err
	}
	if mod, ok := l.char.Module(moduleID); ok && mod.Has(loc) {
		return l.Snapshot(), nil
	}
	if err := l.selectable(def, loc); err != nil {
		return Snapshot{}, err
	}
	return l.commit(func(next *character.Character) error {
		next.Attach(moduleID)
		next.AddOption(moduleID, loc, l.now())
		return nil
	})
}

// CanDeselect reports whether Deselect would succeed.
func (l *Ledger) CanDeselect(moduleID, location string) bool {
	def, loc, err := l.lookup(moduleID, location)
	if err != nil {
		return false
	}
	return l.checkDeselect(def, loc) == nil
}

// Deselect removes an option and refunds its point. Deselecting a tier-1
// option detaches the module. Only leaves of the selection can be removed.
func (l *Ledger) Deselect(moduleID, location string) (Snapshot, error) {
	def, loc, err := l.lookup(moduleID, location)
	if err != nil {
		return Snapshot{}, err
	}
	if err := l.checkDeselect(def, loc); err != nil {
		return Snapshot{}, err
	}
	return l.commit(func(next *character.Character) error {
		if loc.IsTierOne() {
			next.Detach(moduleID)
			return nil
		}
		next.RemoveOption(moduleID, loc)
		return nil
	})
}

// SwapPersonality replaces the attached personality module with moduleID,
// refunding every point the old module held and attaching the new one at its
// tier-1 option. With no personality attached it simply attaches moduleID.
func (l *Ledger) SwapPersonality(moduleID string) (Snapshot, error) {
	def, ok := l.index.Module(moduleID)
	if !ok {
		return Snapshot{}, moduleNotFound(moduleID)
	}
	if !def.IsPersonality() {
		return Snapshot{}, apperrors.WithMetadata(apperrors.CodeLedgerNotPersonality,
			"module "+moduleID+" is not a personality module", map[string]string{"ModuleID": moduleID})
	}
	tierOne, ok := def.TierOne()
	if !ok {
		return Snapshot{}, optionNotFound(moduleID, "1")
	}
	current, attached := l.personality(l.char)
	if attached && current == moduleID {
		return l.Snapshot(), nil
	}
	return l.commit(func(next *character.Character) error {
		if attached {
			next.Detach(current)
		}
		next.Attach(moduleID)
		next.AddOption(moduleID, tierOne.Location, l.now())
		return nil
	})
}

// Options lists every option of moduleID with its state.
func (l *Ledger) Options(moduleID string) ([]OptionState, error) {
	def, ok := l.index.Module(moduleID)
	if !ok {
		return nil, moduleNotFound(moduleID)
	}
	mod, _ := l.char.Module(moduleID)
	remaining := l.Budget(budget.PoolModule)

	states := make([]OptionState, 0, len(def.Options))
	for _, opt := range def.Options {
		state := OptionState{
			Location:    opt.Location.String(),
			Name:        opt.Name,
			Description: opt.Description,
			Cost:        optionCost(opt.Location),
		}
		state.Affordable = remaining.Propose(state.Cost) == nil
		switch {
		case mod.Has(opt.Location):
			state.Status = OptionSelected
			if err := l.checkDeselect(def, opt.Location); err != nil {
				state.Reason = apperrors.MetadataOf(err)["Reason"]
			} else {
				state.Deselectable = true
			}
		default:
			if err := l.selectable(def, opt.Location); err != nil {
				state.Status = OptionUnavailable
				state.Reason = apperrors.MetadataOf(err)["Reason"]
				if apperrors.HasCode(err, apperrors.CodeLedgerInsufficientBudget) {
					state.Reason = "not enough module points"
				}
			} else {
				state.Status = OptionAvailable
			}
		}
		states = append(states, state)
	}
	return states, nil
}

func (l *Ledger) lookup(moduleID, location string) (catalog.Definition, catalog.Location, error) {
	def, ok := l.index.Module(moduleID)
	if !ok {
		return catalog.Definition{}, catalog.Location{}, moduleNotFound(moduleID)
	}
	loc, err := catalog.ParseLocation(location)
	if err != nil {
		return catalog.Definition{}, catalog.Location{}, err
	}
	if _, ok := def.Option(loc); !ok {
		return catalog.Definition{}, catalog.Location{}, optionNotFound(moduleID, location)
	}
	return def, loc, nil
}

// selectable runs every Select check for an option that is not yet selected.
func (l *Ledger) selectable(def catalog.Definition, loc catalog.Location) error {
	if err := l.checkSelect(def, loc); err != nil {
		return err
	}
	return l.Budget(budget.PoolModule).Propose(optionCost(loc))
}

// checkSelect applies the structural rules for selecting loc, budget aside:
// the personality singleton first, then tier prerequisites.
func (l *Ledger) checkSelect(def catalog.Definition, loc catalog.Location) error {
	mod, attached := l.char.Module(def.ID)
	if def.IsPersonality() && !attached {
		if current, ok := l.personality(l.char); ok {
			return apperrors.WithMetadata(apperrors.CodeLedgerForbidden,
				"personality module "+current+" is already attached",
				map[string]string{
					"ModuleID": def.ID,
					"Current":  current,
					"Reason":   "only one personality module can be attached; swap it instead",
				})
		}
	}
	if !attached {
		if !loc.IsTierOne() {
			return prerequisiteUnmet(def.ID, loc, "select the tier 1 option first")
		}
		return nil
	}
	if _, taken := mod.InTier(loc.Tier); taken {
		return prerequisiteUnmet(def.ID, loc, "tier "+strconv.Itoa(loc.Tier)+" already has a selection")
	}
	if loc.Tier > 1 {
		if _, ok := mod.InTier(loc.Tier - 1); !ok {
			return prerequisiteUnmet(def.ID, loc, "select a tier "+strconv.Itoa(loc.Tier-1)+" option first")
		}
	}
	return nil
}

func (l *Ledger) checkDeselect(def catalog.Definition, loc catalog.Location) error {
	mod, attached := l.char.Module(def.ID)
	if !attached {
		return apperrors.WithMetadata(apperrors.CodeLedgerModuleNotAttached,
			"module "+def.ID+" is not attached",
			map[string]string{"ModuleID": def.ID, "Reason": "module is not attached"})
	}
	if !mod.Has(loc) {
		return apperrors.WithMetadata(apperrors.CodeLedgerOptionNotSelected,
			"option "+loc.String()+" of "+def.ID+" is not selected",
			map[string]string{"ModuleID": def.ID, "Location": loc.String(), "Reason": "option is not selected"})
	}
	if loc.IsTierOne() && def.IsPersonality() {
		return apperrors.WithMetadata(apperrors.CodeLedgerForbidden,
			"personality module "+def.ID+" cannot be detached",
			map[string]string{"ModuleID": def.ID, "Reason": "a personality module can only be swapped for another"})
	}
	if _, ok := mod.InTier(loc.Tier + 1); ok {
		dependent := strconv.Itoa(loc.Tier + 1)
		return apperrors.WithMetadata(apperrors.CodeLedgerDependentsExist,
			"tier "+dependent+" of "+def.ID+" depends on "+loc.String(),
			map[string]string{"ModuleID": def.ID, "Location": loc.String(), "DependentTier": dependent, "Reason": "tier " + dependent + " depends on it"})
	}
	return nil
}

// personality returns the attached personality module, if any.
func (l *Ledger) personality(c *character.Character) (string, bool) {
	for _, m := range c.Modules {
		if def, ok := l.index.Module(m.ModuleID); ok && def.IsPersonality() {
			return m.ModuleID, true
		}
	}
	return "", false
}

func optionCost(loc catalog.Location) int {
	if loc.IsTierOne() {
		return 0
	}
	return 1
}

func prerequisiteUnmet(moduleID string, loc catalog.Location, reason string) error {
	return apperrors.WithMetadata(apperrors.CodeLedgerPrerequisiteUnmet,
		"option "+loc.String()+" of "+moduleID+" is locked: "+reason,
		map[string]string{"ModuleID": moduleID, "Location": loc.String(), "Reason": reason})
}

func moduleNotFound(moduleID string) error {
	return apperrors.WithMetadata(apperrors.CodeNotFound,
		"module "+moduleID+" not found", map[string]string{"Kind": "module", "ID": moduleID})
}

func optionNotFound(moduleID, location string) error {
	return apperrors.WithMetadata(apperrors.CodeNotFound,
		"option "+location+" of module "+moduleID+" not found",
		map[string]string{"Kind": "option", "ID": moduleID + "/" + location})
}
