package repository

import (
	"context"

	"github.com/jhoicas/cost-reconciler/internal/domain/entity"
)

// AnalyticsRepository define las consultas agregadas de lectura.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	// AggregateByProduct agrupa por producto las ventas del período, con LEFT JOIN a la ficha maestra:
	// los códigos sin ficha se devuelven con ProductName nil. Orden por código ascendente.
	AggregateByProduct(ctx context.Context, periodYM string) ([]entity.ProductPeriodAggregate, error)
}
