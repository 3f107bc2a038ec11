package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/cost-reconciler/internal/domain/entity"
	"github.com/jhoicas/cost-reconciler/internal/domain/repository"
	"github.com/jhoicas/cost-reconciler/pkg/textnorm"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `product_code, product_name, sales_price_excl_tax, cost_excl_tax, product_type, management_status, updated_at`

// ProductRepo implementación de ProductRepository sobre database/sql.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Acepta *sql.DB o *sql.Tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// FindProduct obtiene un producto por código exacto. Devuelve (nil, nil) si no existe.
func (r *ProductRepo) FindProduct(ctx context.Context, code string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_code = ?`
	p, err := scanProduct(r.q.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlstore.FindProduct: %w", err)
	}
	return p, nil
}

// FindProductsMatching busca pattern en código o nombre, sin distinguir mayúsculas.
func (r *ProductRepo) FindProductsMatching(ctx context.Context, pattern string) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE UPPER(product_code) LIKE ? ESCAPE '!' OR UPPER(product_name) LIKE ? ESCAPE '!'
		ORDER BY product_code`
	like := textnorm.LikeContains(pattern)
	return r.list(ctx, "sqlstore.FindProductsMatching", query, like, like)
}

// ListProducts devuelve los primeros limit productos ordenados por código.
func (r *ProductRepo) ListProducts(ctx context.Context, limit int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY product_code LIMIT ?`
	return r.list(ctx, "sqlstore.ListProducts", query, limit)
}

func (r *ProductRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	list := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var (
		p                 entity.Product
		name, ptype, mgmt sql.NullString
		updatedAt         flexTime
	)
	if err := row.Scan(&p.ProductCode, &name, &p.SalesPriceExclTax, &p.CostExclTax, &ptype, &mgmt, &updatedAt); err != nil {
		return nil, err
	}
	p.Name = name.String
	p.ProductType = ptype.String
	p.ManagementStatus = mgmt.String
	p.UpdatedAt = updatedAt.Time
	return &p, nil
}
