package rbac

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that the operator does not exist.
var ErrNotFound = errors.New("rbac: not found")

// Resolver looks up the permissions granted to an operator.
type Resolver interface {
	EffectivePermissions(ctx context.Context, operatorID int64) ([]string, error)
}

// Service resolves permissions from the role tables.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs a Service backed by the provided pool.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// EffectivePermissions returns deduplicated permission names for an operator.
func (s *Service) EffectivePermissions(ctx context.Context, operatorID int64) ([]string, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND is_active)`, operatorID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("rbac: check operator: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := s.pool.Query(ctx, `SELECT DISTINCT p.name
	FROM user_roles ur
	JOIN role_permissions rp ON rp.role_id = ur.role_id
	JOIN permissions p ON p.id = rp.permission_id
	WHERE ur.user_id = $1
	ORDER BY p.name`, operatorID)
	if err != nil {
		return nil, fmt.Errorf("rbac: query permissions: %w", err)
	}
	defer rows.Close()

	perms := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		perms = append(perms, name)
	}
	return perms, rows.Err()
}

// Resolve returns the builder capabilities of an operator.
func Resolve(ctx context.Context, r Resolver, operatorID int64) (Capabilities, error) {
	granted, err := r.EffectivePermissions(ctx, operatorID)
	if err != nil {
		return Capabilities{}, err
	}
	return CapabilitiesFrom(granted), nil
}

// StaticResolver serves permissions from memory, keyed by operator ID.
type StaticResolver map[int64][]string

// EffectivePermissions implements Resolver.
func (s StaticResolver) EffectivePermissions(ctx context.Context, operatorID int64) ([]string, error) {
	perms, ok := s[operatorID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]string, len(perms))
	copy(out, perms)
	sort.Strings(out)
	return out, nil
}
