package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa la ficha maestra de un producto.
// ProductCode es la clave natural en todas las consultas; CostExclTax es el costo unitario autoritativo.
type Product struct {
	ProductCode       string
	Name              string
	SalesPriceExclTax decimal.Decimal // precio de venta sin impuestos
	CostExclTax       decimal.Decimal // costo unitario maestro sin impuestos
	ProductType       string
	ManagementStatus  string
	UpdatedAt         time.Time
}
