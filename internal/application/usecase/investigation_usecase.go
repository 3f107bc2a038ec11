package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/cost-reconciler/internal/application/dto"
	"github.com/jhoicas/cost-reconciler/internal/application/report"
	"github.com/jhoicas/cost-reconciler/internal/domain"
	"github.com/jhoicas/cost-reconciler/internal/domain/entity"
	"github.com/jhoicas/cost-reconciler/internal/domain/period"
	"github.com/jhoicas/cost-reconciler/internal/domain/reconciliation"
	"github.com/jhoicas/cost-reconciler/internal/domain/repository"
	"github.com/jhoicas/cost-reconciler/pkg/logger"
	"github.com/jhoicas/cost-reconciler/pkg/textnorm"
)

const defaultListLimit = 50

// InvestigationUseCase investiga el descuadre entre el costo maestro de un producto y
// el costo registrado en sus ventas:
//   - Ficha maestra y descubrimiento de códigos parecidos.
//   - Verificación registro a registro del período.
//   - Resumen agregado del período para todos los productos.
//   - Historial por período para detectar la deriva del costo implícito.
//
// Un error de lectura dentro de una sección queda registrado en esa sección y las siguientes se ejecutan igual.
type InvestigationUseCase struct {
	productRepo   repository.ProductRepository
	salesRepo     repository.SalesRecordRepository
	analyticsRepo repository.AnalyticsRepository
	log           *logger.Logger
	now           func() time.Time
}

// NewInvestigationUseCase construye el caso de uso.
func NewInvestigationUseCase(
	productRepo repository.ProductRepository,
	salesRepo repository.SalesRecordRepository,
	analyticsRepo repository.AnalyticsRepository,
	log *logger.Logger,
) *InvestigationUseCase {
	return &InvestigationUseCase{
		productRepo:   productRepo,
		salesRepo:     salesRepo,
		analyticsRepo: analyticsRepo,
		log:           log,
		now:           time.Now,
	}
}

// Run ejecuta la investigación completa. Solo devuelve error por entrada inválida o contexto cancelado.
func (uc *InvestigationUseCase) Run(ctx context.Context, req dto.InvestigationRequest) (*dto.InvestigationReport, error) {
	code := textnorm.Code(req.ProductCode)
	if code == "" {
		return nil, fmt.Errorf("%w: código de producto vacío", domain.ErrInvalidInput)
	}
	periodYM, err := period.Parse(textnorm.Code(req.Period))
	if err != nil {
		return nil, err
	}
	pattern := textnorm.Code(req.Pattern)
	limit := req.ListLimit
	if limit <= 0 {
		limit = defaultListLimit
	}

	rep := &dto.InvestigationReport{
		RunID:       uuid.NewString(),
		GeneratedAt: uc.now(),
		ProductCode: code,
		Period:      periodYM,
	}
	log := uc.log.With().
		Str("run_id", rep.RunID).
		Str("product_code", code).
		Str("period", periodYM).
		Logger()
	log.Info().Str("pattern", pattern).Msg("investigación iniciada")

	// ── (a) Ficha maestra y descubrimiento ─────────────────────────────────────
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	product, err := uc.productRepo.FindProduct(ctx, code)
	if err != nil {
		log.Error().Err(err).Str("section", "master").Msg("consulta de ficha maestra")
		rep.MasterError = err.Error()
		product = nil
	}
	if product != nil {
		p := report.ProductToDTO(product)
		rep.Master = &p
	} else if err == nil {
		log.Warn().Msg("el producto no tiene ficha maestra")
	}
	if product == nil || pattern != "" {
		rep.Discovery = uc.discover(ctx, log, code, pattern, limit)
	}

	// ── (b) Verificación del período ───────────────────────────────────────────
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rep.MasterError != "" {
		// Un error de lectura no equivale a producto sin ficha: no se concilia.
		rep.Verification = dto.VerificationReport{
			ProductCode: code,
			Period:      periodYM,
			Skipped:     true,
			Error:       "verificación omitida: falló la consulta de la ficha maestra",
		}
		log.Warn().Str("section", "verification").Msg("verificación omitida por error en la ficha maestra")
	} else {
		rep.Verification = uc.verify(ctx, log, product, code, periodYM)
	}

	// ── (c) Resumen del período ────────────────────────────────────────────────
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rep.PeriodSum = uc.summarizePeriod(ctx, log, periodYM, pattern)

	// ── (d) Deriva histórica ───────────────────────────────────────────────────
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rep.Drift = uc.drift(ctx, log, product, code)

	log.Info().
		Int("matched", len(rep.Verification.Matched)).
		Int("mismatched", len(rep.Verification.Mismatched)).
		Int("zero_quantity", len(rep.Verification.ZeroQuantity)).
		Int("unverifiable", len(rep.Verification.Unverifiable)).
		Strs("drift_boundaries", rep.Drift.Boundaries).
		Msg("investigación finalizada")
	return rep, nil
}

// discover busca productos parecidos. Sin patrón explícito se usa el propio código.
// Si no hay coincidencias se listan los primeros limit productos del maestro.
func (uc *InvestigationUseCase) discover(ctx context.Context, log zerolog.Logger, code, pattern string, limit int) *dto.DiscoveryReport {
	if pattern == "" {
		pattern = code
	}
	d := &dto.DiscoveryReport{Pattern: pattern, Matches: []dto.ProductDTO{}}

	matches, err := uc.productRepo.FindProductsMatching(ctx, pattern)
	if err != nil {
		log.Error().Err(err).Str("section", "discovery").Msg("búsqueda por patrón")
		d.Error = err.Error()
		return d
	}
	d.Matches = report.ProductsToDTO(matches)
	if len(matches) > 0 {
		return d
	}

	all, err := uc.productRepo.ListProducts(ctx, limit)
	if err != nil {
		log.Error().Err(err).Str("section", "discovery").Msg("listado de productos")
		d.Error = err.Error()
		return d
	}
	d.Fallback = report.ProductsToDTO(all)
	return d
}

func (uc *InvestigationUseCase) verify(ctx context.Context, log zerolog.Logger, product *entity.Product, code, periodYM string) dto.VerificationReport {
	records, err := uc.salesRepo.SalesRecordsFor(ctx, code, periodYM)
	if err != nil {
		log.Error().Err(err).Str("section", "verification").Msg("registros del período")
		return dto.VerificationReport{ProductCode: code, Period: periodYM, Error: err.Error()}
	}

	results := make([]reconciliation.Result, 0, len(records))
	for _, rec := range records {
		res := reconciliation.Reconcile(product, rec)
		if res.Outcome != reconciliation.OutcomeMatched {
			log.Debug().
				Int64("record_id", rec.ID).
				Str("outcome", string(res.Outcome)).
				Str("actual", res.Actual.StringFixed(2)).
				Msg("registro con diferencia")
		}
		results = append(results, res)
	}
	return report.SummarizeVerification(code, periodYM, results)
}

func (uc *InvestigationUseCase) summarizePeriod(ctx context.Context, log zerolog.Logger, periodYM, pattern string) dto.PeriodSummary {
	aggs, err := uc.analyticsRepo.AggregateByProduct(ctx, periodYM)
	if err != nil {
		log.Error().Err(err).Str("section", "period_summary").Msg("agregado por producto")
		return dto.PeriodSummary{Period: periodYM, Error: err.Error()}
	}
	if pattern != "" {
		filtered := make([]entity.ProductPeriodAggregate, 0, len(aggs))
		for _, a := range aggs {
			if textnorm.ContainsFold(a.ProductCode, pattern) || (a.ProductName != nil && textnorm.ContainsFold(*a.ProductName, pattern)) {
				filtered = append(filtered, a)
			}
		}
		aggs = filtered
	}
	return report.SummarizePeriod(periodYM, aggs)
}

func (uc *InvestigationUseCase) drift(ctx context.Context, log zerolog.Logger, product *entity.Product, code string) dto.DriftReport {
	history, err := uc.salesRepo.SalesHistoryFor(ctx, code)
	if err != nil {
		log.Error().Err(err).Str("section", "drift").Msg("historial de ventas")
		return dto.DriftReport{ProductCode: code, Error: err.Error()}
	}
	d := report.SummarizeDrift(product, reconciliation.ReconcileHistory(product, history))
	d.ProductCode = code
	return d
}
