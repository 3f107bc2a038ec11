// Package reconciliation contiene el motor de conciliación de costos (servicio de dominio).
//
// Compara el costo registrado en cada venta con el que resulta del costo maestro vigente:
//
//	Esperado = CostoMaestro × Cantidad
//	Delta    = CostoRegistrado − Esperado
//	Implícito = CostoRegistrado / Cantidad   (solo si Cantidad ≠ 0)
package reconciliation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cost-reconciler/internal/domain/entity"
	"github.com/jhoicas/cost-reconciler/internal/domain/period"
)

// Tolerance absorbe el ruido de redondeo de los sistemas de origen. Un |delta| igual a 0.01 todavía concilia.
var Tolerance = decimal.New(1, -2)

// Outcome clasifica el resultado de conciliar un registro.
type Outcome string

const (
	OutcomeMatched      Outcome = "matched"
	OutcomeMismatched   Outcome = "mismatched"
	OutcomeZeroQuantity Outcome = "zero_quantity" // cantidad 0 con costo distinto de 0
	OutcomeUnverifiable Outcome = "unverifiable"  // el producto no tiene ficha maestra
)

// Result conciliación de un registro. Se crea en cada ejecución y nunca se persiste.
// Expected y Delta son inválidos cuando el registro no es verificable;
// ImpliedUnitCost es inválido cuando la cantidad es 0.
type Result struct {
	Record          entity.SalesRecord
	MasterUnitCost  decimal.NullDecimal
	Expected        decimal.NullDecimal
	Actual          decimal.Decimal
	Delta           decimal.NullDecimal
	ImpliedUnitCost decimal.NullDecimal
	Matches         bool
	Outcome         Outcome
}

// PeriodResults resultados de un período, en el orden en que llegaron de la fuente.
type PeriodResults struct {
	Period  string
	Results []Result
}

// Reconcile concilia un registro contra el producto maestro. product nil significa "sin ficha maestra".
func Reconcile(product *entity.Product, record entity.SalesRecord) Result {
	res := Result{
		Record:          record,
		Actual:          record.CostAmountExclTax,
		ImpliedUnitCost: ImpliedUnitCost(record.CostAmountExclTax, int64(record.Quantity)),
	}
	if product == nil {
		res.Outcome = OutcomeUnverifiable
		return res
	}

	expected := product.CostExclTax.Mul(decimal.NewFromInt(int64(record.Quantity)))
	delta := record.CostAmountExclTax.Sub(expected)
	res.MasterUnitCost = decimal.NewNullDecimal(product.CostExclTax)
	res.Expected = decimal.NewNullDecimal(expected)
	res.Delta = decimal.NewNullDecimal(delta)
	res.Matches = WithinTolerance(delta)

	switch {
	case res.Matches:
		res.Outcome = OutcomeMatched
	case record.Quantity == 0:
		res.Outcome = OutcomeZeroQuantity
	default:
		res.Outcome = OutcomeMismatched
	}
	return res
}

// ReconcileHistory agrupa los registros por período (ascendente) y concilia cada uno.
// El agrupamiento no depende del orden de entrada; dentro de un período se conserva el orden recibido.
func ReconcileHistory(product *entity.Product, records []entity.SalesRecord) []PeriodResults {
	buckets := make(map[string][]Result)
	for _, rec := range records {
		buckets[rec.PeriodYM] = append(buckets[rec.PeriodYM], Reconcile(product, rec))
	}

	periods := make([]string, 0, len(buckets))
	for p := range buckets {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return period.Less(periods[i], periods[j]) })

	out := make([]PeriodResults, 0, len(periods))
	for _, p := range periods {
		out = append(out, PeriodResults{Period: p, Results: buckets[p]})
	}
	return out
}

// ImpliedUnitCost devuelve costo / cantidad; inválido si la cantidad es 0.
func ImpliedUnitCost(cost decimal.Decimal, quantity int64) decimal.NullDecimal {
	if quantity == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(cost.Div(decimal.NewFromInt(quantity)))
}

// WithinTolerance indica si |delta| <= Tolerance.
func WithinTolerance(delta decimal.Decimal) bool {
	return !delta.Abs().GreaterThan(Tolerance)
}
