package rbac

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdesk/salesdesk/internal/shared"
)

type failingResolver struct{ err error }

func (f failingResolver) EffectivePermissions(ctx context.Context, operatorID int64) ([]string, error) {
	return nil, f.err
}

func TestCapabilitiesFrom(t *testing.T) {
	tests := []struct {
		name    string
		granted []string
		want    Capabilities
	}{
		{"none", nil, Capabilities{}},
		{"order only", []string{PermOrderCreate}, Capabilities{CanCreateOrder: true}},
		{"estimate only", []string{PermEstimateCreate, PermCatalogView}, Capabilities{CanCreateEstimate: true}},
		{"both", []string{PermOrderCreate, PermEstimateCreate}, Capabilities{CanCreateOrder: true, CanCreateEstimate: true}},
		{"normalises case and spaces", []string{"  SALES.ORDER.CREATE "}, Capabilities{CanCreateOrder: true}},
		{"view is not create", []string{PermOrderView, PermEstimateView}, Capabilities{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CapabilitiesFrom(tc.granted))
		})
	}
}

func TestCanBuild(t *testing.T) {
	assert.False(t, Capabilities{}.CanBuild())
	assert.True(t, Capabilities{CanCreateEstimate: true}.CanBuild())
	assert.True(t, Capabilities{CanCreateOrder: true}.CanBuild())
}

func TestResolve(t *testing.T) {
	resolver := StaticResolver{7: {PermEstimateCreate}}

	caps, err := Resolve(context.Background(), resolver, 7)
	require.NoError(t, err)
	assert.Equal(t, Capabilities{CanCreateEstimate: true}, caps)

	_, err = Resolve(context.Background(), resolver, 8)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSalesScopesAreUnique(t *testing.T) {
	scopes := SalesScopes()
	assert.Len(t, permissionSet(scopes), len(scopes))
}

func serveGuarded(t *testing.T, mw func(http.Handler) http.Handler, op *shared.Operator) int {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/builder", nil)
	if op != nil {
		req = req.WithContext(shared.ContextWithOperator(req.Context(), *op))
	}
	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, req)
	return rr.Code
}

func TestMiddleware(t *testing.T) {
	m := Middleware{Resolver: StaticResolver{
		1: {PermOrderCreate, PermCatalogView},
		2: {PermEstimateCreate},
	}}
	op1 := &shared.Operator{ID: 1, CompanyID: 10}
	op2 := &shared.Operator{ID: 2, CompanyID: 10}
	unknown := &shared.Operator{ID: 3, CompanyID: 10}

	assert.Equal(t, http.StatusNoContent, serveGuarded(t, m.RequireAny(PermOrderCreate, PermEstimateCreate), op1))
	assert.Equal(t, http.StatusNoContent, serveGuarded(t, m.RequireAny(PermOrderCreate, PermEstimateCreate), op2))
	assert.Equal(t, http.StatusForbidden, serveGuarded(t, m.RequireAll(PermCatalogView, PermEstimateCreate), op2))
	assert.Equal(t, http.StatusNoContent, serveGuarded(t, m.RequireAll(PermCatalogView, PermOrderCreate), op1))
	assert.Equal(t, http.StatusForbidden, serveGuarded(t, m.RequireAny(PermOrderCreate), nil))
	assert.Equal(t, http.StatusForbidden, serveGuarded(t, m.RequireAny(PermOrderCreate), unknown))
	assert.Equal(t, http.StatusNoContent, serveGuarded(t, m.RequireAny(), nil))
}

func TestMiddlewareResolverFailure(t *testing.T) {
	m := Middleware{Resolver: failingResolver{err: errors.New("db down")}}
	code := serveGuarded(t, m.RequireAny(PermOrderCreate), &shared.Operator{ID: 1})
	assert.Equal(t, http.StatusInternalServerError, code)
}
