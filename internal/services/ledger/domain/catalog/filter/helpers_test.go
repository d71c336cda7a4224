package filter

import expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

func hasCall(field, value string) *expr.Expr {
	return &expr.Expr{ExprKind: &expr.Expr_CallExpr{CallExpr: &expr.Expr_Call{
		Function: ":",
		Args: []*expr.Expr{
			{ExprKind: &expr.Expr_IdentExpr{IdentExpr: &expr.Expr_Ident{Name: field}}},
			{ExprKind: &expr.Expr_ConstExpr{ConstExpr: &expr.Constant{
				ConstantKind: &expr.Constant_StringValue{StringValue: value},
			}}},
		},
	}}}
}
