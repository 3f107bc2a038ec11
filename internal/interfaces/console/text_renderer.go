package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/cost-reconciler/internal/application/dto"
	"github.com/jhoicas/cost-reconciler/internal/domain/reconciliation"
)

const notAvailable = "N/A"

var outcomeLabels = map[string]string{
	string(reconciliation.OutcomeMatched):      "OK",
	string(reconciliation.OutcomeMismatched):   "DESCUADRE",
	string(reconciliation.OutcomeZeroQuantity): "CANTIDAD CERO",
	string(reconciliation.OutcomeUnverifiable): "NO VERIFICABLE",
}

var driftLabels = map[dto.DriftMark]string{
	dto.DriftStart:   "inicio",
	dto.DriftSame:    "igual",
	dto.DriftChanged: "CAMBIO",
	dto.DriftUnknown: "desconocido",
}

// TextRenderer reporte legible: decimales a 2 posiciones, cantidades con separador de miles
// y "N/A" donde el valor no existe.
type TextRenderer struct {
	Lang language.Tag
}

// NewTextRenderer usa separadores de miles con coma.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{Lang: language.AmericanEnglish}
}

// textWriter acumula el primer error de escritura para no chequear cada línea.
type textWriter struct {
	w   io.Writer
	p   *message.Printer
	err error
}

func (t *textWriter) line(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = io.WriteString(t.w, fmt.Sprintf(format, args...)+"\n")
}

func (t *textWriter) qty(n int) string {
	return t.p.Sprintf("%d", n)
}

func (r *TextRenderer) Render(w io.Writer, rep *dto.InvestigationReport) error {
	tw := &textWriter{w: w, p: message.NewPrinter(r.Lang)}

	tw.line("=== Investigación de costos: %s (%s) ===", rep.ProductCode, rep.Period)
	tw.line("Ejecución %s, generado %s", rep.RunID, rep.GeneratedAt.Format(time.RFC3339))
	tw.line("")

	r.renderMaster(tw, rep)
	r.renderVerification(tw, &rep.Verification)
	r.renderPeriodSummary(tw, &rep.PeriodSum)
	r.renderDrift(tw, &rep.Drift)

	if tw.err != nil {
		return fmt.Errorf("console: escribir reporte: %w", tw.err)
	}
	return nil
}

// ── (a) Ficha maestra y descubrimiento ───────────────────────────────────────

func (r *TextRenderer) renderMaster(tw *textWriter, rep *dto.InvestigationReport) {
	tw.line("[a] Ficha maestra")
	switch {
	case rep.Master != nil:
		m := rep.Master
		tw.line("  Código:              %s", m.ProductCode)
		tw.line("  Nombre:              %s", orNA(m.Name))
		tw.line("  Precio sin impuesto: %s", money(m.SalesPriceExclTax))
		tw.line("  Costo sin impuesto:  %s", money(m.CostExclTax))
		tw.line("  Tipo:                %s", orNA(m.ProductType))
		tw.line("  Estado:              %s", orNA(m.ManagementStatus))
		tw.line("  Actualizado:         %s", date(m.UpdatedAt, time.DateTime))
	case rep.MasterError != "":
		tw.line("  Error al consultar la ficha: %s", rep.MasterError)
	default:
		tw.line("  (sin ficha maestra para %s)", rep.ProductCode)
	}

	if d := rep.Discovery; d != nil {
		tw.line("")
		tw.line("  Búsqueda por patrón %q: %s coincidencias", d.Pattern, tw.qty(len(d.Matches)))
		if d.Error != "" {
			tw.line("  Error: %s", d.Error)
		}
		for _, p := range d.Matches {
			tw.line("    - %-16s %-32s costo %s", p.ProductCode, p.Name, money(p.CostExclTax))
		}
		if len(d.Matches) == 0 && len(d.Fallback) > 0 {
			tw.line("  Sin coincidencias; primeros %s productos del maestro:", tw.qty(len(d.Fallback)))
			for _, p := range d.Fallback {
				tw.line("    - %-16s %-32s costo %s", p.ProductCode, p.Name, money(p.CostExclTax))
			}
		}
	}
	tw.line("")
}

// ── (b) Verificación ─────────────────────────────────────────────────────────

func (r *TextRenderer) renderVerification(tw *textWriter, v *dto.VerificationReport) {
	tw.line("[b] Verificación de registros de %s en %s", v.ProductCode, v.Period)
	if v.Skipped {
		tw.line("  (omitida: no se pudo leer la ficha maestra)")
		tw.line("")
		return
	}
	if v.Error != "" {
		tw.line("  Error: %s", v.Error)
		tw.line("")
		return
	}
	if v.NoData {
		tw.line("  (sin registros de venta en el período)")
		tw.line("")
		return
	}
	for _, e := range v.Entries {
		tw.line("  #%d  fecha %s  canal %s  pedido %s  importación %s",
			e.RecordID, date(e.SalesDate, time.DateOnly), channel(e.ChannelID, e.ChannelName),
			strPtr(e.ExternalOrderID), importInfo(e.ImportHistoryID, e.ImportDataSource, e.ImportComment))
		tw.line("      cantidad %s  costo registrado %s  costo maestro %s  esperado %s  diferencia %s  unitario implícito %s  -> %s",
			tw.qty(e.Quantity), money(e.Actual), nullMoney(e.MasterUnitCost), nullMoney(e.Expected),
			nullMoney(e.Delta), nullMoney(e.ImpliedUnitCost), outcomeLabel(e.Outcome))
	}
	tw.line("  Totales: %s conciliados, %s descuadrados, %s con cantidad cero, %s no verificables",
		tw.qty(len(v.Matched)), tw.qty(len(v.Mismatched)), tw.qty(len(v.ZeroQuantity)), tw.qty(len(v.Unverifiable)))
	tw.line("")
}

// ── (c) Resumen del período ──────────────────────────────────────────────────

func (r *TextRenderer) renderPeriodSummary(tw *textWriter, s *dto.PeriodSummary) {
	tw.line("[c] Resumen del período %s", s.Period)
	if s.Error != "" {
		tw.line("  Error: %s", s.Error)
		tw.line("")
		return
	}
	if len(s.Rows) == 0 {
		tw.line("  (sin registros de venta en el período)")
		tw.line("")
		return
	}
	tw.line("  %-16s %-32s %9s %10s %14s %14s %12s", "Código", "Nombre", "Registros", "Cantidad", "Venta", "Costo", "Promedio")
	for _, row := range s.Rows {
		name := "(sin ficha maestra)"
		if row.HasMaster && row.ProductName != nil {
			name = *row.ProductName
		}
		tw.line("  %-16s %-32s %9s %10s %14s %14s %12s",
			row.ProductCode, name, tw.qty(row.RecordCount), tw.qty(row.TotalQuantity),
			money(row.TotalSalesAmount), money(row.TotalCostAmount), nullMoney(row.AverageUnitCost))
	}
	tw.line("")
}

// ── (d) Deriva histórica ─────────────────────────────────────────────────────

func (r *TextRenderer) renderDrift(tw *textWriter, d *dto.DriftReport) {
	tw.line("[d] Historial del costo unitario implícito de %s (maestro %s)", d.ProductCode, nullMoney(d.MasterUnitCost))
	if d.Error != "" {
		tw.line("  Error: %s", d.Error)
		return
	}
	if len(d.Periods) == 0 {
		tw.line("  (sin historial de ventas)")
		return
	}
	for _, p := range d.Periods {
		tw.line("  %s  registros %s  cantidad %s  costo %s  unitario implícito %s  coincide con maestro %s  [%s]",
			p.Period, tw.qty(p.RecordCount), tw.qty(p.TotalQuantity), money(p.TotalCostAmount),
			nullMoney(p.ImpliedUnitCost), yesNo(p.MatchesMaster), driftLabel(p.Mark))
		for _, rec := range p.Records {
			tw.line("      #%d  cantidad %s  costo %s  unitario %s  canal %s  %s",
				rec.RecordID, tw.qty(rec.Quantity), money(rec.CostAmount), nullMoney(rec.ImpliedUnitCost),
				channel(rec.ChannelID, nil), outcomeLabel(rec.Outcome))
		}
	}
	if len(d.Boundaries) == 0 {
		tw.line("  Sin cambios de costo entre períodos")
	} else {
		tw.line("  El costo cambió en: %s", strings.Join(d.Boundaries, ", "))
	}
}

// ── Formato de valores ───────────────────────────────────────────────────────

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func nullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return notAvailable
	}
	return d.Decimal.StringFixed(2)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

func strPtr(s *string) string {
	if s == nil {
		return notAvailable
	}
	return orNA(*s)
}

func date(t time.Time, layout string) string {
	if t.IsZero() {
		return notAvailable
	}
	return t.Format(layout)
}

func channel(id *int64, name *string) string {
	switch {
	case id == nil:
		return notAvailable
	case name == nil:
		return fmt.Sprintf("%d", *id)
	default:
		return fmt.Sprintf("%d (%s)", *id, *name)
	}
}

func importInfo(id *int64, source, comment *string) string {
	if id == nil {
		return notAvailable
	}
	return fmt.Sprintf("%d %s/%s", *id, strPtr(source), strPtr(comment))
}

func yesNo(b *bool) string {
	switch {
	case b == nil:
		return notAvailable
	case *b:
		return "sí"
	default:
		return "no"
	}
}

func outcomeLabel(o string) string {
	if l, ok := outcomeLabels[o]; ok {
		return l
	}
	return o
}

func driftLabel(m dto.DriftMark) string {
	if l, ok := driftLabels[m]; ok {
		return l
	}
	return string(m)
}
