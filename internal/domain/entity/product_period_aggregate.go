package entity

import "github.com/shopspring/decimal"

// ProductPeriodAggregate totales de ventas de un producto en un período.
// ProductName es nil cuando el código no tiene ficha maestra.
type ProductPeriodAggregate struct {
	ProductCode      string
	ProductName      *string
	TotalQuantity    int
	TotalSalesAmount decimal.Decimal
	TotalCostAmount  decimal.Decimal
	RecordCount      int
}
