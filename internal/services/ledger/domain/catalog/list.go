package catalog

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/buildledger/internal/platform/errors"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/catalog/filter"
)

// ListModules returns the modules matching an AIP-160 filter expression.
// An empty filter lists everything.
func ListModules(ctx context.Context, client Client, filterStr string) ([]Definition, error) {
	parsed, err := filter.Parse(filterStr, filter.ModuleFields)
	if err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeCatalogInvalidFilter,
			"invalid module filter", map[string]string{"Filter": filterStr, "Reason": err.Error()}, err)
	}
	modules, err := client.ListDefinitions(ctx, KindModule)
	if err != nil {
		return nil, err
	}
	out := make([]Definition, 0, len(modules))
	for _, def := range modules {
		ok, err := filter.Evaluate(parsed, filter.MapResolver(moduleFields(def)))
		if err != nil {
			return nil, apperrors.WrapWithMetadata(apperrors.CodeCatalogInvalidFilter,
				"evaluate module filter", map[string]string{"Filter": filterStr, "Reason": err.Error()}, err)
		}
		if ok {
			out = append(out, def)
		}
	}
	return out, nil
}

func moduleFields(def Definition) map[string]any {
	return map[string]any{
		"id":           def.ID,
		"name":         strings.ToLower(def.Name),
		"type":         string(def.Type),
		"option_count": len(def.Options),
		"max_tier":     def.MaxTier(),
		"grants_bonus": def.GrantTotal(GrantModulePoints)+def.GrantTotal(GrantTalentPoints) > 0,
	}
}
