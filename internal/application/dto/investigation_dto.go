package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Solicitud ─────────────────────────────────────────────────────────────────

// InvestigationRequest parámetros de una investigación de costos.
type InvestigationRequest struct {
	ProductCode string // código exacto a verificar
	Period      string // YYYY-MM
	Pattern     string // opcional; subcadena para el descubrimiento y el resumen del período
	ListLimit   int    // máx productos en el listado de respaldo (default 50)
}

// ── Reporte combinado ─────────────────────────────────────────────────────────

// InvestigationReport reporte completo, en el orden en que se presenta.
type InvestigationReport struct {
	RunID        string             `json:"run_id"`
	GeneratedAt  time.Time          `json:"generated_at"`
	ProductCode  string             `json:"product_code"`
	Period       string             `json:"period"`
	Master       *ProductDTO        `json:"master"` // nil: sin ficha maestra
	MasterError  string             `json:"master_error,omitempty"`
	Discovery    *DiscoveryReport   `json:"discovery,omitempty"`
	Verification VerificationReport `json:"verification"`
	PeriodSum    PeriodSummary      `json:"period_summary"`
	Drift        DriftReport        `json:"drift"`
}

// ProductDTO ficha maestra para mostrar.
type ProductDTO struct {
	ProductCode       string          `json:"product_code"`
	Name              string          `json:"name"`
	SalesPriceExclTax decimal.Decimal `json:"sales_price_excl_tax"`
	CostExclTax       decimal.Decimal `json:"cost_excl_tax"`
	ProductType       string          `json:"product_type"`
	ManagementStatus  string          `json:"management_status"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ── (a) Descubrimiento ────────────────────────────────────────────────────────

// DiscoveryReport productos candidatos cuando la búsqueda exacta no alcanza.
// Si la búsqueda por patrón no encuentra nada, Fallback trae los primeros productos del maestro.
type DiscoveryReport struct {
	Pattern  string       `json:"pattern"`
	Matches  []ProductDTO `json:"matches"`
	Fallback []ProductDTO `json:"fallback,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// ── (b) Verificación ──────────────────────────────────────────────────────────

// VerificationEntry detalle de un registro conciliado.
// Expected y Delta son null cuando el registro no es verificable.
type VerificationEntry struct {
	RecordID         int64               `json:"record_id"`
	ProductCode      string              `json:"product_code"`
	PeriodYM         string              `json:"period_ym"`
	SalesDate        time.Time           `json:"sales_date"`
	ChannelID        *int64              `json:"channel_id"`
	ChannelName      *string             `json:"channel_name"`
	ExternalOrderID  *string             `json:"external_order_id"`
	ImportHistoryID  *int64              `json:"import_history_id"`
	ImportDataSource *string             `json:"import_data_source"`
	ImportComment    *string             `json:"import_comment"`
	CreatedAt        time.Time           `json:"created_at"`
	Quantity         int                 `json:"quantity"`
	SalesAmount      decimal.Decimal     `json:"sales_amount"`
	GrossProfit      decimal.Decimal     `json:"gross_profit"`
	MasterUnitCost   decimal.NullDecimal `json:"master_unit_cost"`
	Expected         decimal.NullDecimal `json:"expected_cost"`
	Actual           decimal.Decimal     `json:"actual_cost"`
	Delta            decimal.NullDecimal `json:"delta"`
	ImpliedUnitCost  decimal.NullDecimal `json:"implied_unit_cost"`
	Matches          bool                `json:"matches"`
	Outcome          string              `json:"outcome"`
}

// VerificationReport resultados particionados por desenlace.
type VerificationReport struct {
	ProductCode  string              `json:"product_code"`
	Period       string              `json:"period"`
	NoData       bool                `json:"no_data"`
	Skipped      bool                `json:"skipped,omitempty"` // no se ejecutó porque falló la consulta de la ficha maestra
	Entries      []VerificationEntry `json:"entries"` // orden de la fuente
	Matched      []VerificationEntry `json:"matched"`
	Mismatched   []VerificationEntry `json:"mismatched"`
	ZeroQuantity []VerificationEntry `json:"zero_quantity"`
	Unverifiable []VerificationEntry `json:"unverifiable"`
	Error        string              `json:"error,omitempty"`
}

// ── (c) Resumen del período ───────────────────────────────────────────────────

// PeriodSummaryRow totales de un producto en el período.
type PeriodSummaryRow struct {
	ProductCode      string              `json:"product_code"`
	ProductName      *string             `json:"product_name"`
	HasMaster        bool                `json:"has_master"`
	RecordCount      int                 `json:"record_count"`
	TotalQuantity    int                 `json:"total_quantity"`
	TotalSalesAmount decimal.Decimal     `json:"total_sales_amount"`
	TotalCostAmount  decimal.Decimal     `json:"total_cost_amount"`
	AverageUnitCost  decimal.NullDecimal `json:"average_unit_cost"` // null si cantidad <= 0
}

// PeriodSummary resumen agregado de todos los productos del período.
type PeriodSummary struct {
	Period string             `json:"period"`
	Rows   []PeriodSummaryRow `json:"rows"`
	Error  string             `json:"error,omitempty"`
}

// ── (d) Deriva histórica ──────────────────────────────────────────────────────

// DriftMark relación del costo implícito de un período con el período anterior.
type DriftMark string

const (
	DriftStart   DriftMark = "start"   // primer período
	DriftSame    DriftMark = "same"    // coincide con el anterior
	DriftChanged DriftMark = "changed" // frontera de deriva
	DriftUnknown DriftMark = "unknown" // alguno de los dos sin costo implícito
)

// DriftRecordLine línea de un registro dentro del período.
type DriftRecordLine struct {
	RecordID        int64               `json:"record_id"`
	Quantity        int                 `json:"quantity"`
	CostAmount      decimal.Decimal     `json:"cost_amount"`
	ImpliedUnitCost decimal.NullDecimal `json:"implied_unit_cost"`
	ChannelID       *int64              `json:"channel_id"`
	Outcome         string              `json:"outcome"`
}

// DriftPeriodLine una línea por período.
type DriftPeriodLine struct {
	Period          string              `json:"period"`
	RecordCount     int                 `json:"record_count"`
	TotalQuantity   int                 `json:"total_quantity"`
	TotalCostAmount decimal.Decimal     `json:"total_cost_amount"`
	ImpliedUnitCost decimal.NullDecimal `json:"implied_unit_cost"`
	MatchesMaster   *bool               `json:"matches_master"` // nil sin ficha maestra o sin costo implícito
	Mark            DriftMark           `json:"mark"`
	Records         []DriftRecordLine   `json:"records"`
}

// DriftReport historial del costo implícito por período.
type DriftReport struct {
	ProductCode    string              `json:"product_code"`
	MasterUnitCost decimal.NullDecimal `json:"master_unit_cost"`
	Periods        []DriftPeriodLine   `json:"periods"`
	Boundaries     []string            `json:"boundaries"` // períodos marcados como "changed"
	Error          string              `json:"error,omitempty"`
}
