package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Source supplies the catalog for a company.
type Source interface {
	Products(ctx context.Context, companyID int64) ([]Product, error)
}

// Repository reads active products from PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Products lists the active catalog of a company ordered by name.
func (r *Repository) Products(ctx context.Context, companyID int64) ([]Product, error) {
	const query = `SELECT p.id, p.name, p.price, COALESCE(s.qty, 0), COALESCE(c.name, '')
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN (
		SELECT product_id, SUM(qty) AS qty FROM inventory_balances GROUP BY product_id
	) s ON s.product_id = p.id
	WHERE p.company_id = $1 AND p.is_active = TRUE
	ORDER BY p.name, p.id`

	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("catalog: query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ActiveCompanies lists companies that own at least one active product.
func (r *Repository) ActiveCompanies(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT company_id FROM products WHERE is_active = TRUE ORDER BY company_id`)
	if err != nil {
		return nil, fmt.Errorf("catalog: query companies: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.UnitPrice, &p.AvailableQty, &p.Category)
	return p, err
}
