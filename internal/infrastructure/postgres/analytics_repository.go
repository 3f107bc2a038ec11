package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/cost-reconciler/internal/domain/entity"
	"github.com/jhoicas/cost-reconciler/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para los resúmenes por período.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// AggregateByProduct agrupa cantidad, ventas y costo del período por producto.
// Los códigos sin ficha maestra se devuelven con ProductName nil (LEFT JOIN).
func (r *AnalyticsRepo) AggregateByProduct(ctx context.Context, periodYM string) ([]entity.ProductPeriodAggregate, error) {
	const query = `
	SELECT
	    sr.product_code,
	    MAX(p.product_name)                          AS product_name,
	    COALESCE(SUM(sr.quantity), 0)::BIGINT        AS total_qty,
	    COALESCE(SUM(sr.sales_amount_excl_tax), 0)   AS total_sales,
	    COALESCE(SUM(sr.cost_amount_excl_tax), 0)    AS total_cost,
	    COUNT(*)                                     AS record_count
	FROM sales_records sr
	LEFT JOIN products p ON p.product_code = sr.product_code
	WHERE sr.period_ym = $1
	GROUP BY sr.product_code
	ORDER BY sr.product_code`

	rows, err := r.q.Query(ctx, query, periodYM)
	if err != nil {
		return nil, fmt.Errorf("analytics.AggregateByProduct: %w", err)
	}
	defer rows.Close()

	results := []entity.ProductPeriodAggregate{}
	for rows.Next() {
		var row entity.ProductPeriodAggregate
		if err := rows.Scan(
			&row.ProductCode,
			&row.ProductName,
			&row.TotalQuantity,
			&row.TotalSalesAmount,
			&row.TotalCostAmount,
			&row.RecordCount,
		); err != nil {
			return nil, fmt.Errorf("analytics.AggregateByProduct scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
