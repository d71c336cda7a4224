package filter

import (
	"cmp"
	"fmt"
	"strings"

	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Resolver returns a value for a field name.
type Resolver func(name string) (any, bool)

// MapResolver resolves fields from a fixed map.
func MapResolver(values map[string]any) Resolver {
	return func(name string) (any, bool) {
		value, ok := values[name]
		return value, ok
	}
}

// Evaluate evaluates a parsed filter expression against a resolver.
func Evaluate(e *expr.Expr, resolve Resolver) (bool, error) {
	if e == nil {
		return true, nil
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return evalCall(kind.CallExpr, resolve)
	case *expr.Expr_IdentExpr:
		// A bare boolean field such as `grants_bonus`.
		value, ok := resolve(kind.IdentExpr.GetName())
		if !ok {
			return false, fmt.Errorf("unknown field: %s", kind.IdentExpr.GetName())
		}
		b, isBool := value.(bool)
		if !isBool {
			return false, fmt.Errorf("field %s is not boolean", kind.IdentExpr.GetName())
		}
		return b, nil
	default:
		return false, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func evalCall(call *expr.Expr_Call, resolve Resolver) (bool, error) {
	switch call.GetFunction() {
	case "_&&_", "AND":
		return evalAnd(call.GetArgs(), resolve)
	case "_||_", "OR":
		return evalOr(call.GetArgs(), resolve)
	case "NOT", "-":
		return evalNot(call.GetArgs(), resolve)
	case ":":
		return evalHas(call.GetArgs(), resolve)
	case "_==_", "=":
		return evalCompare(call.GetArgs(), resolve, func(c int) bool { return c == 0 })
	case "_!=_", "!=":
		return evalCompare(call.GetArgs(), resolve, func(c int) bool { return c != 0 })
	case "_<_", "<":
		return evalCompare(call.GetArgs(), resolve, func(c int) bool { return c < 0 })
	case "_<=_", "<=":
		return evalCompare(call.GetArgs(), resolve, func(c int) bool { return c <= 0 })
	case "_>_", ">":
		return evalCompare(call.GetArgs(), resolve, func(c int) bool { return c > 0 })
	case "_>=_", ">=":
		return evalCompare(call.GetArgs(), resolve, func(c int) bool { return c >= 0 })
	default:
		return false, fmt.Errorf("unsupported function: %s", call.GetFunction())
	}
}

func evalAnd(args []*expr.Expr, resolve Resolver) (bool, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("AND requires 2 arguments")
	}
	left, err := Evaluate(args[0], resolve)
	if err != nil || !left {
		return left, err
	}
	return Evaluate(args[1], resolve)
}

func evalOr(args []*expr.Expr, resolve Resolver) (bool, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("OR requires 2 arguments")
	}
	left, err := Evaluate(args[0], resolve)
	if err != nil {
		return false, err
	}
	if left {
		return true, nil
	}
	return Evaluate(args[1], resolve)
}

func evalNot(args []*expr.Expr, resolve Resolver) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("NOT requires 1 argument")
	}
	value, err := Evaluate(args[0], resolve)
	if err != nil {
		return false, err
	}
	return !value, nil
}

// evalHas implements `field:value` as a case-insensitive substring match.
func evalHas(args []*expr.Expr, resolve Resolver) (bool, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("has requires 2 arguments")
	}
	left, right, err := operands(args, resolve)
	if err != nil {
		return false, err
	}
	l, lok := left.(string)
	r, rok := right.(string)
	if !lok || !rok {
		return false, fmt.Errorf("has requires string operands")
	}
	return strings.Contains(strings.ToLower(l), strings.ToLower(r)), nil
}

func evalCompare(args []*expr.Expr, resolve Resolver, accept func(int) bool) (bool, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("comparison requires 2 arguments")
	}
	left, right, err := operands(args, resolve)
	if err != nil {
		return false, err
	}
	c, err := compareValues(left, right)
	if err != nil {
		return false, err
	}
	return accept(c), nil
}

func operands(args []*expr.Expr, resolve Resolver) (any, any, error) {
	field, err := extractFieldName(args[0])
	if err != nil {
		return nil, nil, err
	}
	left, ok := resolve(field)
	if !ok {
		return nil, nil, fmt.Errorf("unknown field: %s", field)
	}
	right, err := extractValue(args[1])
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}
	ident, ok := e.ExprKind.(*expr.Expr_IdentExpr)
	if !ok {
		return "", fmt.Errorf("expected identifier, got %T", e.ExprKind)
	}
	return ident.IdentExpr.GetName(), nil
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}
	constant, ok := e.ExprKind.(*expr.Expr_ConstExpr)
	if !ok {
		return nil, fmt.Errorf("expected constant, got %T", e.ExprKind)
	}
	switch kind := constant.ConstExpr.GetConstantKind().(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

func compareValues(left any, right any) (int, error) {
	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		if !ok {
			return 0, fmt.Errorf("type mismatch: string vs %T", right)
		}
		return cmp.Compare(l, r), nil
	case bool:
		r, ok := right.(bool)
		if !ok {
			return 0, fmt.Errorf("type mismatch: bool vs %T", right)
		}
		return cmp.Compare(boolRank(l), boolRank(r)), nil
	}
	l, lok := toInt64(left)
	r, rok := toInt64(right)
	if !lok || !rok {
		return 0, fmt.Errorf("type mismatch: %T vs %T", left, right)
	}
	return cmp.Compare(l, r), nil
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
