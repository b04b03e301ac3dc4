package shared

import "fmt"

// DraftKey scopes a cart draft to the company, operator and browser cart id.
func DraftKey(op Operator, cartID string) string {
	return fmt.Sprintf("%d:%d:%s", op.CompanyID, op.ID, cartID)
}
