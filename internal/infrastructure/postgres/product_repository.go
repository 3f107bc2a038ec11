package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/cost-reconciler/internal/domain/entity"
	"github.com/jhoicas/cost-reconciler/internal/domain/repository"
	"github.com/jhoicas/cost-reconciler/pkg/textnorm"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `product_code, product_name, sales_price_excl_tax, cost_excl_tax, product_type, management_status, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de lectura para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// FindProduct obtiene un producto por código exacto. Devuelve (nil, nil) si no existe.
func (r *ProductRepo) FindProduct(ctx context.Context, code string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_code = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// FindProductsMatching busca pattern en código o nombre, sin distinguir mayúsculas.
func (r *ProductRepo) FindProductsMatching(ctx context.Context, pattern string) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE UPPER(product_code) LIKE $1 ESCAPE '!' OR UPPER(product_name) LIKE $1 ESCAPE '!'
		ORDER BY product_code`
	return r.list(ctx, "list products matching", query, textnorm.LikeContains(pattern))
}

// ListProducts devuelve los primeros limit productos ordenados por código.
func (r *ProductRepo) ListProducts(ctx context.Context, limit int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY product_code LIMIT $1`
	return r.list(ctx, "list products", query, limit)
}

func (r *ProductRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	list := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var (
		p                 entity.Product
		name, ptype, mgmt *string
		updatedAt         *time.Time
	)
	if err := row.Scan(&p.ProductCode, &name, &p.SalesPriceExclTax, &p.CostExclTax, &ptype, &mgmt, &updatedAt); err != nil {
		return nil, err
	}
	p.Name = deref(name)
	p.ProductType = deref(ptype)
	p.ManagementStatus = deref(mgmt)
	if updatedAt != nil {
		p.UpdatedAt = *updatedAt
	}
	return &p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
