// Package report convierte los resultados crudos de la conciliación en estructuras de reporte.
// Ninguna función modifica su entrada: todas devuelven estructuras nuevas.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cost-reconciler/internal/application/dto"
	"github.com/jhoicas/cost-reconciler/internal/domain/entity"
	"github.com/jhoicas/cost-reconciler/internal/domain/reconciliation"
)

// ProductToDTO convierte la ficha maestra para mostrarla.
func ProductToDTO(p *entity.Product) dto.ProductDTO {
	return dto.ProductDTO{
		ProductCode:       p.ProductCode,
		Name:              p.Name,
		SalesPriceExclTax: p.SalesPriceExclTax,
		CostExclTax:       p.CostExclTax,
		ProductType:       p.ProductType,
		ManagementStatus:  p.ManagementStatus,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ProductsToDTO convierte una lista de fichas.
func ProductsToDTO(list []*entity.Product) []dto.ProductDTO {
	out := make([]dto.ProductDTO, 0, len(list))
	for _, p := range list {
		out = append(out, ProductToDTO(p))
	}
	return out
}

// SummarizePeriod calcula el costo unitario promedio de cada producto del período.
// Fórmula: promedio = costo_total / cantidad_total, solo si cantidad_total > 0.
func SummarizePeriod(periodYM string, aggregates []entity.ProductPeriodAggregate) dto.PeriodSummary {
	rows := make([]dto.PeriodSummaryRow, 0, len(aggregates))
	for _, a := range aggregates {
		row := dto.PeriodSummaryRow{
			ProductCode:      a.ProductCode,
			ProductName:      a.ProductName,
			HasMaster:        a.ProductName != nil,
			RecordCount:      a.RecordCount,
			TotalQuantity:    a.TotalQuantity,
			TotalSalesAmount: a.TotalSalesAmount,
			TotalCostAmount:  a.TotalCostAmount,
		}
		if a.TotalQuantity > 0 {
			row.AverageUnitCost = decimal.NewNullDecimal(a.TotalCostAmount.Div(decimal.NewFromInt(int64(a.TotalQuantity))))
		}
		rows = append(rows, row)
	}
	return dto.PeriodSummary{Period: periodYM, Rows: rows}
}

// SummarizeVerification particiona los resultados en conciliados, descuadrados,
// anomalías de cantidad cero y no verificables. Entries conserva el orden de la fuente.
func SummarizeVerification(productCode, periodYM string, results []reconciliation.Result) dto.VerificationReport {
	rep := dto.VerificationReport{
		ProductCode:  productCode,
		Period:       periodYM,
		NoData:       len(results) == 0,
		Entries:      make([]dto.VerificationEntry, 0, len(results)),
		Matched:      []dto.VerificationEntry{},
		Mismatched:   []dto.VerificationEntry{},
		ZeroQuantity: []dto.VerificationEntry{},
		Unverifiable: []dto.VerificationEntry{},
	}
	for _, r := range results {
		e := toEntry(r)
		rep.Entries = append(rep.Entries, e)
		switch r.Outcome {
		case reconciliation.OutcomeMatched:
			rep.Matched = append(rep.Matched, e)
		case reconciliation.OutcomeMismatched:
			rep.Mismatched = append(rep.Mismatched, e)
		case reconciliation.OutcomeZeroQuantity:
			rep.ZeroQuantity = append(rep.ZeroQuantity, e)
		case reconciliation.OutcomeUnverifiable:
			rep.Unverifiable = append(rep.Unverifiable, e)
		}
	}
	return rep
}

func toEntry(r reconciliation.Result) dto.VerificationEntry {
	rec := r.Record
	return dto.VerificationEntry{
		RecordID:         rec.ID,
		ProductCode:      rec.ProductCode,
		PeriodYM:         rec.PeriodYM,
		SalesDate:        rec.SalesDate,
		ChannelID:        rec.SalesChannelID,
		ChannelName:      rec.ChannelName,
		ExternalOrderID:  rec.ExternalOrderID,
		ImportHistoryID:  rec.ImportHistoryID,
		ImportDataSource: rec.ImportDataSource,
		ImportComment:    rec.ImportComment,
		CreatedAt:        rec.CreatedAt,
		Quantity:         rec.Quantity,
		SalesAmount:      rec.SalesAmountExclTax,
		GrossProfit:      rec.GrossProfit,
		MasterUnitCost:   r.MasterUnitCost,
		Expected:         r.Expected,
		Actual:           r.Actual,
		Delta:            r.Delta,
		ImpliedUnitCost:  r.ImpliedUnitCost,
		Matches:          r.Matches,
		Outcome:          string(r.Outcome),
	}
}
