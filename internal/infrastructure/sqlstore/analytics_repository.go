package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jhoicas/cost-reconciler/internal/domain/entity"
	"github.com/jhoicas/cost-reconciler/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas agregadas de solo lectura.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// AggregateByProduct totales del período por producto. MAX(p.product_name) es NULL cuando no hay ficha maestra.
func (r *AnalyticsRepo) AggregateByProduct(ctx context.Context, periodYM string) ([]entity.ProductPeriodAggregate, error) {
	const query = `
	SELECT
	    sr.product_code,
	    MAX(p.product_name)                         AS product_name,
	    COALESCE(SUM(sr.quantity), 0)               AS total_qty,
	    COALESCE(SUM(sr.sales_amount_excl_tax), 0)  AS total_sales,
	    COALESCE(SUM(sr.cost_amount_excl_tax), 0)   AS total_cost,
	    COUNT(*)                                    AS record_count
	FROM sales_records sr
	LEFT JOIN products p ON sr.product_code = p.product_code
	WHERE sr.period_ym = ?
	GROUP BY sr.product_code
	ORDER BY sr.product_code`

	rows, err := r.q.QueryContext(ctx, query, periodYM)
	if err != nil {
		return nil, fmt.Errorf("sqlstore.AggregateByProduct: %w", err)
	}
	defer rows.Close()

	results := []entity.ProductPeriodAggregate{}
	for rows.Next() {
		var (
			row  entity.ProductPeriodAggregate
			name sql.NullString
		)
		if err := rows.Scan(
			&row.ProductCode,
			&name,
			&row.TotalQuantity,
			&row.TotalSalesAmount,
			&row.TotalCostAmount,
			&row.RecordCount,
		); err != nil {
			return nil, fmt.Errorf("sqlstore.AggregateByProduct scan: %w", err)
		}
		row.ProductName = stringPtr(name)
		results = append(results, row)
	}
	return results, rows.Err()
}
