package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/cost-reconciler/internal/domain/entity"
	"github.com/jhoicas/cost-reconciler/internal/domain/repository"
)

var _ repository.SalesRecordRepository = (*SalesRecordRepo)(nil)

const salesRecordSelect = `
	SELECT sr.id, sr.product_code, sr.period_ym, sr.sales_date,
	       sr.quantity, sr.sales_amount_excl_tax, sr.cost_amount_excl_tax,
	       sr.gross_profit, sr.sales_channel_id, sr.external_order_id,
	       sr.import_history_id, sr.created_at,
	       sc.name, ih.data_source, ih.comment
	FROM sales_records sr
	LEFT JOIN sales_channels   sc ON sc.id = sr.sales_channel_id
	LEFT JOIN import_histories ih ON ih.id = sr.import_history_id`

// SalesRecordRepo implementación de SalesRecordRepository sobre PostgreSQL.
type SalesRecordRepo struct {
	q Querier
}

// NewSalesRecordRepository construye el adaptador. Acepta pool o tx (Querier).
func NewSalesRecordRepository(q Querier) *SalesRecordRepo {
	return &SalesRecordRepo{q: q}
}

// SalesRecordsFor registros del producto en el período, del más reciente al más antiguo.
func (r *SalesRecordRepo) SalesRecordsFor(ctx context.Context, code, periodYM string) ([]entity.SalesRecord, error) {
	query := salesRecordSelect + `
	WHERE sr.product_code = $1 AND sr.period_ym = $2
	ORDER BY sr.created_at DESC, sr.id DESC`
	return r.list(ctx, "sales records for period", query, code, periodYM)
}

// SalesHistoryFor todos los registros del producto por período ascendente.
func (r *SalesRecordRepo) SalesHistoryFor(ctx context.Context, code string) ([]entity.SalesRecord, error) {
	query := salesRecordSelect + `
	WHERE sr.product_code = $1
	ORDER BY sr.period_ym ASC, sr.created_at ASC, sr.id ASC`
	return r.list(ctx, "sales history", query, code)
}

func (r *SalesRecordRepo) list(ctx context.Context, op, query string, args ...any) ([]entity.SalesRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	list := []entity.SalesRecord{}
	for rows.Next() {
		var rec entity.SalesRecord
		if err := rows.Scan(
			&rec.ID, &rec.ProductCode, &rec.PeriodYM, &rec.SalesDate,
			&rec.Quantity, &rec.SalesAmountExclTax, &rec.CostAmountExclTax,
			&rec.GrossProfit, &rec.SalesChannelID, &rec.ExternalOrderID,
			&rec.ImportHistoryID, &rec.CreatedAt,
			&rec.ChannelName, &rec.ImportDataSource, &rec.ImportComment,
		); err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
