package report_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cost-reconciler/internal/application/dto"
	"github.com/jhoicas/cost-reconciler/internal/application/report"
	"github.com/jhoicas/cost-reconciler/internal/domain/entity"
	"github.com/jhoicas/cost-reconciler/internal/domain/reconciliation"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

var master = &entity.Product{ProductCode: "KKKBG002BLK", Name: "Bolso negro", CostExclTax: dec("150.00")}

func rec(id int64, periodYM string, qty int, cost string) entity.SalesRecord {
	return entity.SalesRecord{ID: id, ProductCode: "KKKBG002BLK", PeriodYM: periodYM, Quantity: qty, CostAmountExclTax: dec(cost)}
}

// ──────────────────────────────────────────────────────────────────────────────
// SummarizePeriod
// ──────────────────────────────────────────────────────────────────────────────

func TestSummarizePeriod_PromedioYSinMaestro(t *testing.T) {
	aggs := []entity.ProductPeriodAggregate{
		{ProductCode: "AAA001", ProductName: strPtr("Taza"), TotalQuantity: 4, TotalSalesAmount: dec("2000"), TotalCostAmount: dec("600"), RecordCount: 2},
		{ProductCode: "ZZZ999", ProductName: nil, TotalQuantity: 0, TotalSalesAmount: dec("0"), TotalCostAmount: dec("50"), RecordCount: 1},
		{ProductCode: "RET001", ProductName: strPtr("Devuelto"), TotalQuantity: -3, TotalSalesAmount: dec("-300"), TotalCostAmount: dec("-90"), RecordCount: 1},
	}

	sum := report.SummarizePeriod("2026-01", aggs)

	require.Len(t, sum.Rows, 3)
	assert.Equal(t, "2026-01", sum.Period)

	assert.True(t, sum.Rows[0].HasMaster)
	require.True(t, sum.Rows[0].AverageUnitCost.Valid)
	assert.Equal(t, "150.00", sum.Rows[0].AverageUnitCost.Decimal.StringFixed(2))

	assert.False(t, sum.Rows[1].HasMaster)
	assert.Nil(t, sum.Rows[1].ProductName)
	assert.False(t, sum.Rows[1].AverageUnitCost.Valid)

	assert.False(t, sum.Rows[2].AverageUnitCost.Valid, "cantidad negativa no define promedio")
}

func TestSummarizePeriod_NoModificaEntrada(t *testing.T) {
	aggs := []entity.ProductPeriodAggregate{{ProductCode: "AAA001", TotalQuantity: 2, TotalCostAmount: dec("10")}}
	_ = report.SummarizePeriod("2026-01", aggs)
	assert.Equal(t, "AAA001", aggs[0].ProductCode)
	assert.True(t, aggs[0].TotalCostAmount.Equal(dec("10")))
}

// ──────────────────────────────────────────────────────────────────────────────
// SummarizeVerification
// ──────────────────────────────────────────────────────────────────────────────

func TestSummarizeVerification_Particiona(t *testing.T) {
	results := []reconciliation.Result{
		reconciliation.Reconcile(master, rec(1, "2026-01", 10, "1500.00")),
		reconciliation.Reconcile(master, rec(2, "2026-01", 10, "1600.00")),
		reconciliation.Reconcile(master, rec(3, "2026-01", 0, "50.00")),
		reconciliation.Reconcile(nil, rec(4, "2026-01", 5, "750.00")),
	}

	rep := report.SummarizeVerification("KKKBG002BLK", "2026-01", results)

	assert.False(t, rep.NoData)
	assert.Len(t, rep.Entries, 4)
	require.Len(t, rep.Matched, 1)
	require.Len(t, rep.Mismatched, 1)
	require.Len(t, rep.ZeroQuantity, 1)
	require.Len(t, rep.Unverifiable, 1)

	mm := rep.Mismatched[0]
	assert.Equal(t, int64(2), mm.RecordID)
	assert.Equal(t, "100.00", mm.Delta.Decimal.StringFixed(2))
	assert.Equal(t, "160.00", mm.ImpliedUnitCost.Decimal.StringFixed(2))

	zq := rep.ZeroQuantity[0]
	assert.False(t, zq.ImpliedUnitCost.Valid)

	un := rep.Unverifiable[0]
	assert.False(t, un.Delta.Valid, "no verificable: sin delta numérico")
	assert.False(t, un.Expected.Valid)
	assert.Equal(t, "unverifiable", un.Outcome)
}

func TestSummarizeVerification_SinDatos(t *testing.T) {
	rep := report.SummarizeVerification("KKKBG002BLK", "2026-01", nil)
	assert.True(t, rep.NoData)
	assert.Empty(t, rep.Entries)
}

// ──────────────────────────────────────────────────────────────────────────────
// SummarizeDrift
// ──────────────────────────────────────────────────────────────────────────────

// Escenario D: período 1 a 150.00 (coincide), período 2 a 160.00 (no coincide) → frontera en el período 2.
func TestSummarizeDrift_EscenarioD_Frontera(t *testing.T) {
	history := reconciliation.ReconcileHistory(master, []entity.SalesRecord{
		rec(1, "2025-12", 10, "1500.00"),
		rec(2, "2026-01", 10, "1600.00"),
	})

	rep := report.SummarizeDrift(master, history)

	require.Len(t, rep.Periods, 2)
	p1, p2 := rep.Periods[0], rep.Periods[1]

	assert.Equal(t, "2025-12", p1.Period)
	assert.Equal(t, dto.DriftStart, p1.Mark)
	assert.Equal(t, "150.00", p1.ImpliedUnitCost.Decimal.StringFixed(2))
	require.NotNil(t, p1.MatchesMaster)
	assert.True(t, *p1.MatchesMaster)

	assert.Equal(t, "2026-01", p2.Period)
	assert.Equal(t, dto.DriftChanged, p2.Mark)
	assert.Equal(t, "160.00", p2.ImpliedUnitCost.Decimal.StringFixed(2))
	require.NotNil(t, p2.MatchesMaster)
	assert.False(t, *p2.MatchesMaster)

	assert.Equal(t, []string{"2026-01"}, rep.Boundaries)
}

func TestSummarizeDrift_PeriodosIgualesYDesconocidos(t *testing.T) {
	history := reconciliation.ReconcileHistory(master, []entity.SalesRecord{
		rec(1, "2025-10", 2, "300.00"),
		rec(2, "2025-11", 1, "150.00"),
		rec(3, "2025-11", 3, "450.00"),
		rec(4, "2025-12", 0, "0"),
		rec(5, "2026-01", 1, "150.00"),
	})

	rep := report.SummarizeDrift(master, history)

	require.Len(t, rep.Periods, 4)
	assert.Equal(t, dto.DriftStart, rep.Periods[0].Mark)
	assert.Equal(t, dto.DriftSame, rep.Periods[1].Mark)
	assert.Equal(t, 2, rep.Periods[1].RecordCount)
	assert.Equal(t, 4, rep.Periods[1].TotalQuantity)
	assert.Equal(t, dto.DriftUnknown, rep.Periods[2].Mark)
	assert.Nil(t, rep.Periods[2].MatchesMaster)
	assert.Equal(t, dto.DriftUnknown, rep.Periods[3].Mark)
	assert.Empty(t, rep.Boundaries)
}

func TestSummarizeDrift_SinMaestro(t *testing.T) {
	history := reconciliation.ReconcileHistory(nil, []entity.SalesRecord{
		rec(1, "2025-12", 5, "750.00"),
		rec(2, "2026-01", 5, "800.00"),
	})

	rep := report.SummarizeDrift(nil, history)

	assert.Equal(t, "KKKBG002BLK", rep.ProductCode)
	assert.False(t, rep.MasterUnitCost.Valid)
	require.Len(t, rep.Periods, 2)
	assert.Nil(t, rep.Periods[0].MatchesMaster)
	assert.Equal(t, dto.DriftChanged, rep.Periods[1].Mark)
}

func TestSummarizeDrift_OrdenDentroDelPeriodo(t *testing.T) {
	history := reconciliation.ReconcileHistory(master, []entity.SalesRecord{
		rec(7, "2026-01", 1, "150.00"),
		rec(3, "2026-01", 1, "150.00"),
	})

	rep := report.SummarizeDrift(master, history)

	require.Len(t, rep.Periods, 1)
	require.Len(t, rep.Periods[0].Records, 2)
	assert.Equal(t, int64(7), rep.Periods[0].Records[0].RecordID)
	assert.Equal(t, int64(3), rep.Periods[0].Records[1].RecordID)
}
