package report

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cost-reconciler/internal/application/dto"
	"github.com/jhoicas/cost-reconciler/internal/domain/entity"
	"github.com/jhoicas/cost-reconciler/internal/domain/reconciliation"
)

// SummarizeDrift arma una línea por período (ascendente) con el costo implícito del período
// (costo_total / cantidad_total) y lo compara con el período inmediatamente anterior.
// Un cambio marca la frontera de deriva: el maestro se actualizó sin corregir el histórico.
//
// product nil produce el mismo listado sin comparación contra el maestro.
func SummarizeDrift(product *entity.Product, periods []reconciliation.PeriodResults) dto.DriftReport {
	rep := dto.DriftReport{
		Periods:    make([]dto.DriftPeriodLine, 0, len(periods)),
		Boundaries: []string{},
	}
	if product != nil {
		rep.ProductCode = product.ProductCode
		rep.MasterUnitCost = decimal.NewNullDecimal(product.CostExclTax)
	}

	var prev *dto.DriftPeriodLine
	for _, pr := range periods {
		line := periodLine(pr)
		if product != nil && line.ImpliedUnitCost.Valid {
			m := reconciliation.WithinTolerance(line.ImpliedUnitCost.Decimal.Sub(product.CostExclTax))
			line.MatchesMaster = &m
		}
		line.Mark = markAgainst(prev, line)
		if line.Mark == dto.DriftChanged {
			rep.Boundaries = append(rep.Boundaries, line.Period)
		}
		if rep.ProductCode == "" && len(pr.Results) > 0 {
			rep.ProductCode = pr.Results[0].Record.ProductCode
		}
		rep.Periods = append(rep.Periods, line)
		prev = &rep.Periods[len(rep.Periods)-1]
	}
	return rep
}

func periodLine(pr reconciliation.PeriodResults) dto.DriftPeriodLine {
	line := dto.DriftPeriodLine{
		Period:          pr.Period,
		RecordCount:     len(pr.Results),
		TotalCostAmount: decimal.Zero,
		Records:         make([]dto.DriftRecordLine, 0, len(pr.Results)),
	}
	for _, r := range pr.Results {
		line.TotalQuantity += r.Record.Quantity
		line.TotalCostAmount = line.TotalCostAmount.Add(r.Actual)
		line.Records = append(line.Records, dto.DriftRecordLine{
			RecordID:        r.Record.ID,
			Quantity:        r.Record.Quantity,
			CostAmount:      r.Actual,
			ImpliedUnitCost: r.ImpliedUnitCost,
			ChannelID:       r.Record.SalesChannelID,
			Outcome:         string(r.Outcome),
		})
	}
	line.ImpliedUnitCost = reconciliation.ImpliedUnitCost(line.TotalCostAmount, int64(line.TotalQuantity))
	return line
}

func markAgainst(prev *dto.DriftPeriodLine, cur dto.DriftPeriodLine) dto.DriftMark {
	switch {
	case prev == nil:
		return dto.DriftStart
	case !prev.ImpliedUnitCost.Valid || !cur.ImpliedUnitCost.Valid:
		return dto.DriftUnknown
	case reconciliation.WithinTolerance(cur.ImpliedUnitCost.Decimal.Sub(prev.ImpliedUnitCost.Decimal)):
		return dto.DriftSame
	default:
		return dto.DriftChanged
	}
}
