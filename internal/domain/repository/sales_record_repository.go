package repository

import (
	"context"

	"github.com/jhoicas/cost-reconciler/internal/domain/entity"
)

// SalesRecordRepository define las consultas de solo lectura sobre registros de venta.
type SalesRecordRepository interface {
	// SalesRecordsFor devuelve los registros de un producto en un período, del más reciente al más antiguo,
	// enriquecidos con nombre de canal y datos del lote de importación (LEFT JOIN).
	SalesRecordsFor(ctx context.Context, code, periodYM string) ([]entity.SalesRecord, error)

	// SalesHistoryFor devuelve todos los registros del producto ordenados por período ascendente.
	SalesHistoryFor(ctx context.Context, code string) ([]entity.SalesRecord, error)
}
