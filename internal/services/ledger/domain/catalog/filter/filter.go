// Package filter parses and evaluates AIP-160 filter expressions over
// catalog definitions.
package filter

import (
	"fmt"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// FieldType describes a supported filter field type.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldInt    FieldType = "int"
	FieldBool   FieldType = "bool"
)

// Fields defines filterable fields and their types.
type Fields map[string]FieldType

// ModuleFields are the fields accepted when listing modules.
var ModuleFields = Fields{
	"id":           FieldString,
	"name":         FieldString,
	"type":         FieldString,
	"option_count": FieldInt,
	"max_tier":     FieldInt,
	"grants_bonus": FieldBool,
}

// Parse parses an AIP-160 filter expression for the provided fields.
// An empty filter parses to a nil expression that matches everything.
func Parse(filterStr string, fields Fields) (*expr.Expr, error) {
	if strings.TrimSpace(filterStr) == "" {
		return nil, nil
	}

	decls, err := declarations(fields)
	if err != nil {
		return nil, err
	}

	filter, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}
	return filter.CheckedExpr.GetExpr(), nil
}

func declarations(fields Fields) (*filtering.Declarations, error) {
	decls := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	for name, kind := range fields {
		switch kind {
		case FieldString:
			decls = append(decls, filtering.DeclareIdent(name, filtering.TypeString))
		case FieldInt:
			decls = append(decls, filtering.DeclareIdent(name, filtering.TypeInt))
		case FieldBool:
			decls = append(decls, filtering.DeclareIdent(name, filtering.TypeBool))
		default:
			return nil, fmt.Errorf("unsupported field type for %s", name)
		}
	}
	return filtering.NewDeclarations(decls...)
}
