package service

import (
	"fmt"

	"github.com/louisbranch/buildledger/internal/services/ledger/app"
	"github.com/louisbranch/buildledger/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, any) error
}

type mcpRegistrationModule struct {
	name     string
	register func(mcpRegistrationTarget) error
}

const (
	mcpLedgerToolsModuleName  = "ledger-tools"
	mcpCatalogToolsModuleName = "catalog-tools"
)

type mcpServerRegistrationAdapter struct {
	server *mcp.Server
}

func (r mcpServerRegistrationAdapter) AddTool(tool *mcp.Tool, handler any) error {
	return addMCPTool(r.server, tool, handler)
}

type mcpToolRegistrar struct {
	matches func(any) bool
	add     func(*mcp.Server, *mcp.Tool, any)
}

func newMCPToolRegistrar[I any, O any]() mcpToolRegistrar {
	return mcpToolRegistrar{
		matches: func(handler any) bool {
			_, ok := handler.(mcp.ToolHandlerFor[I, O])
			return ok
		},
		add: func(server *mcp.Server, tool *mcp.Tool, handler any) {
			mcp.AddTool(server, tool, handler.(mcp.ToolHandlerFor[I, O]))
		},
	}
}

var mcpToolRegistrars = []mcpToolRegistrar{
	newMCPToolRegistrar[domain.CharacterInput, domain.OpenResult](),
	newMCPToolRegistrar[domain.CharacterInput, domain.SnapshotResult](),
	newMCPToolRegistrar[domain.CharacterInput, domain.SaveResult](),
	newMCPToolRegistrar[domain.CreateInput, domain.SnapshotResult](),
	newMCPToolRegistrar[domain.SetAttributeInput, domain.SnapshotResult](),
	newMCPToolRegistrar[domain.SetSkillTalentInput, domain.SnapshotResult](),
	newMCPToolRegistrar[domain.OptionInput, domain.SnapshotResult](),
	newMCPToolRegistrar[domain.ModuleInput, domain.SnapshotResult](),
	newMCPToolRegistrar[domain.ModuleInput, domain.ModuleOptionsResult](),
	newMCPToolRegistrar[domain.ListCharactersInput, domain.ListCharactersResult](),
	newMCPToolRegistrar[domain.ListModulesInput, domain.ListModulesResult](),
}

func addMCPTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	for _, registrar := range mcpToolRegistrars {
		if registrar.matches(handler) {
			registrar.add(server, tool, handler)
			return nil
		}
	}
	toolName := "<nil>"
	if tool != nil {
		toolName = tool.Name
	}
	return fmt.Errorf("mcp registration adapter does not support handler type %T for tool %q", handler, toolName)
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	return registrar.AddTool(tool, handler)
}

func registerLedgerTools(registrar mcpRegistrationTarget, svc *app.Service) error {
	registrations := []struct {
		tool    *mcp.Tool
		handler any
	}{
		{tool: domain.LedgerOpenTool(), handler: domain.LedgerOpenHandler(svc)},
		{tool: domain.LedgerCreateTool(), handler: domain.LedgerCreateHandler(svc)},
		{tool: domain.LedgerSnapshotTool(), handler: domain.LedgerSnapshotHandler(svc)},
		{tool: domain.LedgerSetAttributeTool(), handler: domain.LedgerSetAttributeHandler(svc)},
		{tool: domain.LedgerSetSkillTalentTool(), handler: domain.LedgerSetSkillTalentHandler(svc)},
		{tool: domain.LedgerSelectOptionTool(), handler: domain.LedgerSelectOptionHandler(svc)},
		{tool: domain.LedgerDeselectOptionTool(), handler: domain.LedgerDeselectOptionHandler(svc)},
		{tool: domain.LedgerSwapPersonalityTool(), handler: domain.LedgerSwapPersonalityHandler(svc)},
		{tool: domain.LedgerModuleOptionsTool(), handler: domain.LedgerModuleOptionsHandler(svc)},
		{tool: domain.LedgerSaveTool(), handler: domain.LedgerSaveHandler(svc)},
		{tool: domain.LedgerListCharactersTool(), handler: domain.LedgerListCharactersHandler(svc)},
	}
	for _, registration := range registrations {
		if err := registerTool(registrar, registration.tool, registration.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerCatalogTools(registrar mcpRegistrationTarget, svc *app.Service) error {
	return registerTool(registrar, domain.CatalogListModulesTool(), domain.CatalogListModulesHandler(svc))
}

func newMCPRegistrationModules(svc *app.Service) []mcpRegistrationModule {
	return []mcpRegistrationModule{
		{
			name: mcpLedgerToolsModuleName,
			register: func(registrar mcpRegistrationTarget) error {
				return registerLedgerTools(registrar, svc)
			},
		},
		{
			name: mcpCatalogToolsModuleName,
			register: func(registrar mcpRegistrationTarget) error {
				return registerCatalogTools(registrar, svc)
			},
		},
	}
}
