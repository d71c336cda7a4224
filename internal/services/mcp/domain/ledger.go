package domain

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/louisbranch/buildledger/internal/platform/errors"
	"github.com/louisbranch/buildledger/internal/services/ledger/app"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/build"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/reconcile"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CharacterInput addresses an open or stored character.
type CharacterInput struct {
	CharacterID string `json:"character_id" jsonschema:"character identifier"`
}

// SnapshotResult is the state of a character after a query or command.
type SnapshotResult struct {
	Snapshot build.Snapshot `json:"snapshot" jsonschema:"derived character state"`
}

// OpenResult is the output of ledger_open.
type OpenResult struct {
	Snapshot          build.Snapshot         `json:"snapshot" jsonschema:"derived character state"`
	Notices           []string               `json:"notices,omitempty" jsonschema:"localized load notices"`
	CorrectionApplied bool                   `json:"correction_applied" jsonschema:"whether talents were reduced to fit the budget"`
	PointsRemoved     int                    `json:"points_removed" jsonschema:"talent points removed by the correction"`
	Corrections       []reconcile.Correction `json:"corrections,omitempty" jsonschema:"per-skill corrections in removal order"`
	MigratedFields    []string               `json:"migrated_fields,omitempty" jsonschema:"legacy fields upgraded on load"`
}

// CreateInput is the input of ledger_create.
type CreateInput struct {
	Name       string   `json:"name" jsonschema:"character name"`
	AncestryID string   `json:"ancestry_id,omitempty" jsonschema:"optional ancestry id"`
	CultureID  string   `json:"culture_id,omitempty" jsonschema:"optional culture id"`
	TraitIDs   []string `json:"trait_ids,omitempty" jsonschema:"optional trait ids"`
}

// SetAttributeInput is the input of ledger_set_attribute.
type SetAttributeInput struct {
	CharacterID string `json:"character_id" jsonschema:"character identifier"`
	Attribute   string `json:"attribute" jsonschema:"attribute name, e.g. physique"`
	Value       int    `json:"value" jsonschema:"new attribute value"`
}

// SetSkillTalentInput is the input of ledger_set_skill_talent.
type SetSkillTalentInput struct {
	CharacterID string `json:"character_id" jsonschema:"character identifier"`
	Skill       string `json:"skill" jsonschema:"weapon, magic or crafting skill key"`
	BaseTalent  int    `json:"base_talent" jsonschema:"purchased talent rank"`
}

// OptionInput addresses one module option.
type OptionInput struct {
	CharacterID string `json:"character_id" jsonschema:"character identifier"`
	ModuleID    string `json:"module_id" jsonschema:"module identifier"`
	Location    string `json:"location" jsonschema:"option location, e.g. 1, 2, 3a"`
}

// ModuleInput addresses one module.
type ModuleInput struct {
	CharacterID string `json:"character_id" jsonschema:"character identifier"`
	ModuleID    string `json:"module_id" jsonschema:"module identifier"`
}

// ModuleOptionsResult lists a module's options for the character.
type ModuleOptionsResult struct {
	ModuleID string              `json:"module_id"`
	Options  []build.OptionState `json:"options"`
}

// ListCharactersInput is the input of ledger_list_characters.
type ListCharactersInput struct {
	PageSize  int    `json:"page_size,omitempty" jsonschema:"maximum characters to return"`
	PageToken string `json:"page_token,omitempty" jsonschema:"token from a previous page"`
}

// CharacterSummary identifies one stored character.
type CharacterSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ListCharactersResult is one page of stored characters.
type ListCharactersResult struct {
	Characters    []CharacterSummary `json:"characters"`
	NextPageToken string             `json:"next_page_token,omitempty"`
}

// SaveResult is the output of ledger_save.
type SaveResult struct {
	CharacterID string `json:"character_id"`
	Saved       bool   `json:"saved"`
}

func LedgerOpenTool() *mcp.Tool {
	return &mcp.Tool{Name: "ledger_open", Description: "Loads and reconciles a character for editing"}
}

func LedgerCreateTool() *mcp.Tool {
	return &mcp.Tool{Name: "ledger_create", Description: "Creates a new character at the ruleset minimums"}
}

func LedgerSnapshotTool() *mcp.Tool {
	return &mcp.Tool{Name: "ledger_snapshot", Description: "Returns the derived state of a character"}
}

func LedgerSetAttributeTool() *mcp.Tool {
	return &mcp.Tool{Name: "ledger_set_attribute", Description: "Sets an attribute, spending or refunding attribute points"}
}

func LedgerSetSkillTalentTool() *mcp.Tool {
	return &mcp.Tool{Name: "ledger_set_skill_talent", Description: "Sets the purchased talent of a specialized skill"}
}

func LedgerSelectOptionTool() *mcp.Tool {
	return &mcp.Tool{Name: "ledger_select_option", Description: "Selects a module option"}
}

func LedgerDeselectOptionTool() *mcp.Tool {
	return &mcp.Tool{Name: "ledger_deselect_option", Description: "Deselects a module option"}
}

func LedgerSwapPersonalityTool() *mcp.Tool {
	return &mcp.Tool{Name: "ledger_swap_personality", Description: "Replaces the personality module"}
}

func LedgerModuleOptionsTool() *mcp.Tool {
	return &mcp.Tool{Name: "ledger_module_options", Description: "Lists a module's options with availability and cost"}
}

func LedgerListCharactersTool() *mcp.Tool {
	return &mcp.Tool{Name: "ledger_list_characters", Description: "Lists stored characters"}
}

func LedgerSaveTool() *mcp.Tool {
	return &mcp.Tool{Name: "ledger_save", Description: "Writes the character back to storage"}
}

// session opens the character if no session exists yet.
func session(ctx context.Context, svc *app.Service, characterID string) (*app.Session, error) {
	characterID = strings.TrimSpace(characterID)
	if characterID == "" {
		return nil, apperrors.WithMetadata(apperrors.CodeNotFound, "character_id is required",
			map[string]string{"Kind": "character", "ID": characterID})
	}
	return svc.Open(ctx, characterID)
}

// command runs a ledger command on the character's session.
func command(ctx context.Context, svc *app.Service, characterID string, run func(*build.Ledger) (build.Snapshot, error)) (SnapshotResult, error) {
	sess, err := session(ctx, svc, characterID)
	if err != nil {
		return SnapshotResult{}, toolError(svc.Locale(), err)
	}
	var snap build.Snapshot
	err = sess.Do(func(l *build.Ledger) error {
		var runErr error
		snap, runErr = run(l)
		return runErr
	})
	if err != nil {
		return SnapshotResult{}, toolError(svc.Locale(), err)
	}
	return SnapshotResult{Snapshot: snap}, nil
}

// LedgerOpenHandler opens a character and reports what reconciliation did.
func LedgerOpenHandler(svc *app.Service) mcp.ToolHandlerFor[CharacterInput, OpenResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterInput) (*mcp.CallToolResult, OpenResult, error) {
		sess, err := session(ctx, svc, input.CharacterID)
		if err != nil {
			return nil, OpenResult{}, toolError(svc.Locale(), err)
		}
		snap, err := sess.Snapshot()
		if err != nil {
			return nil, OpenResult{}, toolError(svc.Locale(), err)
		}
		res := sess.Reconcile()
		return nil, OpenResult{
			Snapshot:          snap,
			Notices:           sess.Notices(),
			CorrectionApplied: res.CorrectionApplied,
			PointsRemoved:     res.PointsRemoved,
			Corrections:       res.Corrections,
			MigratedFields:    res.MigratedFields,
		}, nil
	}
}

// LedgerCreateHandler creates and opens a character.
func LedgerCreateHandler(svc *app.Service) mcp.ToolHandlerFor[CreateInput, SnapshotResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CreateInput) (*mcp.CallToolResult, SnapshotResult, error) {
		sess, err := svc.Create(ctx, app.CreateInput{
			Name:       input.Name,
			AncestryID: input.AncestryID,
			CultureID:  input.CultureID,
			TraitIDs:   input.TraitIDs,
		})
		if err != nil {
			return nil, SnapshotResult{}, toolError(svc.Locale(), err)
		}
		snap, err := sess.Snapshot()
		if err != nil {
			return nil, SnapshotResult{}, toolError(svc.Locale(), err)
		}
		return nil, SnapshotResult{Snapshot: snap}, nil
	}
}

func LedgerSnapshotHandler(svc *app.Service) mcp.ToolHandlerFor[CharacterInput, SnapshotResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterInput) (*mcp.CallToolResult, SnapshotResult, error) {
		result, err := command(ctx, svc, input.CharacterID, func(l *build.Ledger) (build.Snapshot, error) {
			return l.Snapshot(), nil
		})
		return nil, result, err
	}
}

func LedgerSetAttributeHandler(svc *app.Service) mcp.ToolHandlerFor[SetAttributeInput, SnapshotResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SetAttributeInput) (*mcp.CallToolResult, SnapshotResult, error) {
		attr := ruleset.Attribute(strings.ToLower(strings.TrimSpace(input.Attribute)))
		result, err := command(ctx, svc, input.CharacterID, func(l *build.Ledger) (build.Snapshot, error) {
			return l.SetAttribute(attr, input.Value)
		})
		return nil, result, err
	}
}

func LedgerSetSkillTalentHandler(svc *app.Service) mcp.ToolHandlerFor[SetSkillTalentInput, SnapshotResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SetSkillTalentInput) (*mcp.CallToolResult, SnapshotResult, error) {
		result, err := command(ctx, svc, input.CharacterID, func(l *build.Ledger) (build.Snapshot, error) {
			return l.SetSkillBaseTalent(strings.TrimSpace(input.Skill), input.BaseTalent)
		})
		return nil, result, err
	}
}

func LedgerSelectOptionHandler(svc *app.Service) mcp.ToolHandlerFor[OptionInput, SnapshotResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input OptionInput) (*mcp.CallToolResult, SnapshotResult, error) {
		result, err := command(ctx, svc, input.CharacterID, func(l *build.Ledger) (build.Snapshot, error) {
			return l.Select(input.ModuleID, input.Location)
		})
		return nil, result, err
	}
}

func LedgerDeselectOptionHandler(svc *app.Service) mcp.ToolHandlerFor[OptionInput, SnapshotResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input OptionInput) (*mcp.CallToolResult, SnapshotResult, error) {
		result, err := command(ctx, svc, input.CharacterID, func(l *build.Ledger) (build.Snapshot, error) {
			return l.Deselect(input.ModuleID, input.Location)
		})
		return nil, result, err
	}
}

func LedgerSwapPersonalityHandler(svc *app.Service) mcp.ToolHandlerFor[ModuleInput, SnapshotResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ModuleInput) (*mcp.CallToolResult, SnapshotResult, error) {
		result, err := command(ctx, svc, input.CharacterID, func(l *build.Ledger) (build.Snapshot, error) {
			return l.SwapPersonality(input.ModuleID)
		})
		return nil, result, err
	}
}

func LedgerModuleOptionsHandler(svc *app.Service) mcp.ToolHandlerFor[ModuleInput, ModuleOptionsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ModuleInput) (*mcp.CallToolResult, ModuleOptionsResult, error) {
		sess, err := session(ctx, svc, input.CharacterID)
		if err != nil {
			return nil, ModuleOptionsResult{}, toolError(svc.Locale(), err)
		}
		var options []build.OptionState
		err = sess.Do(func(l *build.Ledger) error {
			var optErr error
			options, optErr = l.Options(input.ModuleID)
			return optErr
		})
		if err != nil {
			return nil, ModuleOptionsResult{}, toolError(svc.Locale(), err)
		}
		return nil, ModuleOptionsResult{ModuleID: input.ModuleID, Options: options}, nil
	}
}

// LedgerSaveHandler persists the character. A failed save leaves the session
// intact so the caller can retry.
func LedgerSaveHandler(svc *app.Service) mcp.ToolHandlerFor[CharacterInput, SaveResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterInput) (*mcp.CallToolResult, SaveResult, error) {
		sess, ok := svc.Session(strings.TrimSpace(input.CharacterID))
		if !ok {
			err := apperrors.WithMetadata(apperrors.CodeNotFound, "character is not open",
				map[string]string{"Kind": "character", "ID": input.CharacterID})
			return nil, SaveResult{}, toolError(svc.Locale(), err)
		}
		if err := svc.Save(ctx, sess); err != nil {
			return nil, SaveResult{}, toolError(svc.Locale(), err)
		}
		return nil, SaveResult{CharacterID: sess.ID(), Saved: true}, nil
	}
}

func LedgerListCharactersHandler(svc *app.Service) mcp.ToolHandlerFor[ListCharactersInput, ListCharactersResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListCharactersInput) (*mcp.CallToolResult, ListCharactersResult, error) {
		list, err := svc.List(ctx, input.PageSize, input.PageToken)
		if err != nil {
			return nil, ListCharactersResult{}, toolError(svc.Locale(), err)
		}
		result := ListCharactersResult{
			Characters:    make([]CharacterSummary, 0, len(list.Characters)),
			NextPageToken: list.NextPageToken,
		}
		for _, c := range list.Characters {
			summary := CharacterSummary{ID: c.ID, Name: c.Name}
			if !c.UpdatedAt.IsZero() {
				summary.UpdatedAt = c.UpdatedAt.UTC().Format(time.RFC3339)
			}
			result.Characters = append(result.Characters, summary)
		}
		return nil, result, nil
	}
}
