package domain

import (
	"context"

	"github.com/louisbranch/buildledger/internal/services/ledger/app"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/catalog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListModulesInput is the input of catalog_list_modules.
type ListModulesInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"AIP-160 filter, e.g. type = \"secondary\" AND max_tier >= 3"`
}

// ModuleSummary describes one catalog module.
type ModuleSummary struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Type    catalog.ModuleType `json:"type"`
	MaxTier int                `json:"max_tier"`
	Options []string           `json:"options"`
}

// ListModulesResult is the output of catalog_list_modules.
type ListModulesResult struct {
	Modules []ModuleSummary `json:"modules"`
}

func CatalogListModulesTool() *mcp.Tool {
	return &mcp.Tool{Name: "catalog_list_modules", Description: "Lists catalog modules matching a filter"}
}

func CatalogListModulesHandler(svc *app.Service) mcp.ToolHandlerFor[ListModulesInput, ListModulesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListModulesInput) (*mcp.CallToolResult, ListModulesResult, error) {
		defs, err := catalog.ListModules(ctx, svc.Catalog(), input.Filter)
		if err != nil {
			return nil, ListModulesResult{}, toolError(svc.Locale(), err)
		}
		result := ListModulesResult{Modules: make([]ModuleSummary, 0, len(defs))}
		for _, def := range defs {
			summary := ModuleSummary{ID: def.ID, Name: def.Name, Type: def.Type, MaxTier: def.MaxTier(), Options: []string{}}
			for _, opt := range def.Options {
				summary.Options = append(summary.Options, opt.Location.String())
			}
			result.Modules = append(result.Modules, summary)
		}
		return nil, result, nil
	}
}
