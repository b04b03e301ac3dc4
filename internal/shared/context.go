package shared

import "context"

// Operator identifies the staff member driving the request.
type Operator struct {
	ID        int64
	CompanyID int64
}

type operatorContextKey struct{}

// ContextWithOperator stores the operator in context.
func ContextWithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, operatorContextKey{}, op)
}

// OperatorFromContext extracts the operator from context.
func OperatorFromContext(ctx context.Context) (Operator, bool) {
	op, ok := ctx.Value(operatorContextKey{}).(Operator)
	return op, ok
}
