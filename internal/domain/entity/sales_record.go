package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecord es una línea histórica de venta con el costo registrado en el momento de la venta.
// ProductCode es una referencia débil: puede no existir en la ficha maestra.
type SalesRecord struct {
	ID                 int64
	ProductCode        string
	PeriodYM           string // YYYY-MM
	SalesDate          time.Time
	Quantity           int // puede ser 0 o negativo (devoluciones)
	SalesAmountExclTax decimal.Decimal
	CostAmountExclTax  decimal.Decimal // costo tal como quedó registrado
	GrossProfit        decimal.Decimal
	SalesChannelID     *int64
	ExternalOrderID    *string
	ImportHistoryID    *int64
	CreatedAt          time.Time

	// Campos de solo presentación (LEFT JOIN); nil si no hay coincidencia.
	ChannelName      *string
	ImportDataSource *string
	ImportComment    *string
}
