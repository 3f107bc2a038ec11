package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jhoicas/cost-reconciler/internal/domain/entity"
	"github.com/jhoicas/cost-reconciler/internal/domain/repository"
)

var _ repository.SalesRecordRepository = (*SalesRecordRepo)(nil)

// Los LEFT JOIN solo aportan texto para mostrar: si el canal o el lote no existen, los campos quedan NULL.
const salesRecordSelect = `
	SELECT sr.id, sr.product_code, sr.period_ym, sr.sales_date,
	       sr.quantity, sr.sales_amount_excl_tax, sr.cost_amount_excl_tax,
	       sr.gross_profit, sr.sales_channel_id, sr.external_order_id,
	       sr.import_history_id, sr.created_at,
	       sc.name, ih.data_source, ih.comment
	FROM sales_records sr
	LEFT JOIN sales_channels sc ON sr.sales_channel_id = sc.id
	LEFT JOIN import_histories ih ON sr.import_history_id = ih.id`

// SalesRecordRepo implementación de SalesRecordRepository sobre database/sql.
type SalesRecordRepo struct {
	q Querier
}

// NewSalesRecordRepository construye el adaptador. Acepta *sql.DB o *sql.Tx (Querier).
func NewSalesRecordRepository(q Querier) *SalesRecordRepo {
	return &SalesRecordRepo{q: q}
}

// SalesRecordsFor registros del producto en el período, del más reciente al más antiguo.
func (r *SalesRecordRepo) SalesRecordsFor(ctx context.Context, code, periodYM string) ([]entity.SalesRecord, error) {
	query := salesRecordSelect + `
	WHERE sr.product_code = ? AND sr.period_ym = ?
	ORDER BY sr.created_at DESC, sr.id DESC`
	return r.list(ctx, "sqlstore.SalesRecordsFor", query, code, periodYM)
}

// SalesHistoryFor todos los registros del producto por período ascendente.
func (r *SalesRecordRepo) SalesHistoryFor(ctx context.Context, code string) ([]entity.SalesRecord, error) {
	query := salesRecordSelect + `
	WHERE sr.product_code = ?
	ORDER BY sr.period_ym ASC, sr.created_at ASC, sr.id ASC`
	return r.list(ctx, "sqlstore.SalesHistoryFor", query, code)
}

func (r *SalesRecordRepo) list(ctx context.Context, op, query string, args ...any) ([]entity.SalesRecord, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	list := []entity.SalesRecord{}
	for rows.Next() {
		var (
			rec                         entity.SalesRecord
			salesDate, createdAt        flexTime
			channelID, importID         sql.NullInt64
			externalID, channelName     sql.NullString
			importSource, importComment sql.NullString
		)
		if err := rows.Scan(
			&rec.ID, &rec.ProductCode, &rec.PeriodYM, &salesDate,
			&rec.Quantity, &rec.SalesAmountExclTax, &rec.CostAmountExclTax,
			&rec.GrossProfit, &channelID, &externalID,
			&importID, &createdAt,
			&channelName, &importSource, &importComment,
		); err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		rec.SalesDate = salesDate.Time
		rec.CreatedAt = createdAt.Time
		rec.SalesChannelID = int64Ptr(channelID)
		rec.ExternalOrderID = stringPtr(externalID)
		rec.ImportHistoryID = int64Ptr(importID)
		rec.ChannelName = stringPtr(channelName)
		rec.ImportDataSource = stringPtr(importSource)
		rec.ImportComment = stringPtr(importComment)
		list = append(list, rec)
	}
	return list, rows.Err()
}
