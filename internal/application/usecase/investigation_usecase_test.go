package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cost-reconciler/internal/application/dto"
	"github.com/jhoicas/cost-reconciler/internal/application/usecase"
	"github.com/jhoicas/cost-reconciler/internal/domain"
	"github.com/jhoicas/cost-reconciler/internal/domain/entity"
	"github.com/jhoicas/cost-reconciler/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de los repositorios
// ──────────────────────────────────────────────────────────────────────────────

type productRepoMock struct{ mock.Mock }

func (m *productRepoMock) FindProduct(ctx context.Context, code string) (*entity.Product, error) {
	args := m.Called(ctx, code)
	p, _ := args.Get(0).(*entity.Product)
	return p, args.Error(1)
}

func (m *productRepoMock) FindProductsMatching(ctx context.Context, pattern string) ([]*entity.Product, error) {
	args := m.Called(ctx, pattern)
	list, _ := args.Get(0).([]*entity.Product)
	return list, args.Error(1)
}

func (m *productRepoMock) ListProducts(ctx context.Context, limit int) ([]*entity.Product, error) {
	args := m.Called(ctx, limit)
	list, _ := args.Get(0).([]*entity.Product)
	return list, args.Error(1)
}

type salesRepoMock struct{ mock.Mock }

func (m *salesRepoMock) SalesRecordsFor(ctx context.Context, code, periodYM string) ([]entity.SalesRecord, error) {
	args := m.Called(ctx, code, periodYM)
	list, _ := args.Get(0).([]entity.SalesRecord)
	return list, args.Error(1)
}

func (m *salesRepoMock) SalesHistoryFor(ctx context.Context, code string) ([]entity.SalesRecord, error) {
	args := m.Called(ctx, code)
	list, _ := args.Get(0).([]entity.SalesRecord)
	return list, args.Error(1)
}

type analyticsRepoMock struct{ mock.Mock }

func (m *analyticsRepoMock) AggregateByProduct(ctx context.Context, periodYM string) ([]entity.ProductPeriodAggregate, error) {
	args := m.Called(ctx, periodYM)
	list, _ := args.Get(0).([]entity.ProductPeriodAggregate)
	return list, args.Error(1)
}

const code = "KKKBG002BLK"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

func master() *entity.Product {
	return &entity.Product{ProductCode: code, Name: "Bolso negro", CostExclTax: dec("150.00"), ManagementStatus: "managed"}
}

func rec(id int64, periodYM string, qty int, cost string) entity.SalesRecord {
	return entity.SalesRecord{ID: id, ProductCode: code, PeriodYM: periodYM, Quantity: qty, CostAmountExclTax: dec(cost)}
}

func newUC() (*usecase.InvestigationUseCase, *productRepoMock, *salesRepoMock, *analyticsRepoMock) {
	p, s, a := &productRepoMock{}, &salesRepoMock{}, &analyticsRepoMock{}
	return usecase.NewInvestigationUseCase(p, s, a, logger.Nop()), p, s, a
}

// ──────────────────────────────────────────────────────────────────────────────
// Casos
// ──────────────────────────────────────────────────────────────────────────────

func TestRun_FlujoCompleto(t *testing.T) {
	uc, p, s, a := newUC()
	ctx := context.Background()

	p.On("FindProduct", ctx, code).Return(master(), nil)
	s.On("SalesRecordsFor", ctx, code, "2026-01").Return([]entity.SalesRecord{rec(2, "2026-01", 10, "1600.00")}, nil)
	a.On("AggregateByProduct", ctx, "2026-01").Return([]entity.ProductPeriodAggregate{
		{ProductCode: code, ProductName: strPtr("Bolso negro"), TotalQuantity: 10, TotalCostAmount: dec("1600"), TotalSalesAmount: dec("3000"), RecordCount: 1},
		{ProductCode: "ZZZ999", TotalQuantity: 1, TotalCostAmount: dec("10"), TotalSalesAmount: dec("20"), RecordCount: 1},
	}, nil)
	s.On("SalesHistoryFor", ctx, code).Return([]entity.SalesRecord{
		rec(1, "2025-12", 10, "1500.00"),
		rec(2, "2026-01", 10, "1600.00"),
	}, nil)

	rep, err := uc.Run(ctx, dto.InvestigationRequest{ProductCode: " ＫＫＫＢＧ００２ＢＬＫ", Period: "2026-01"})
	require.NoError(t, err)

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, code, rep.ProductCode)
	require.NotNil(t, rep.Master)
	assert.Nil(t, rep.Discovery, "con ficha maestra y sin patrón no hay descubrimiento")

	require.Len(t, rep.Verification.Mismatched, 1)
	assert.Equal(t, "160.00", rep.Verification.Mismatched[0].ImpliedUnitCost.Decimal.StringFixed(2))

	assert.Len(t, rep.PeriodSum.Rows, 2, "sin patrón se resumen todos los productos")
	assert.Equal(t, []string{"2026-01"}, rep.Drift.Boundaries)

	p.AssertNotCalled(t, "FindProductsMatching", mock.Anything, mock.Anything)
	p.AssertExpectations(t)
	s.AssertExpectations(t)
	a.AssertExpectations(t)
}

func TestRun_SinFichaMaestra_DescubrimientoYNoVerificable(t *testing.T) {
	uc, p, s, a := newUC()
	ctx := context.Background()

	p.On("FindProduct", ctx, code).Return(nil, nil)
	p.On("FindProductsMatching", ctx, code).Return([]*entity.Product{}, nil)
	p.On("ListProducts", ctx, 5).Return([]*entity.Product{{ProductCode: "AAA001", Name: "Taza"}}, nil)
	s.On("SalesRecordsFor", ctx, code, "2026-01").Return([]entity.SalesRecord{rec(9, "2026-01", 5, "750.00")}, nil)
	a.On("AggregateByProduct", ctx, "2026-01").Return([]entity.ProductPeriodAggregate{}, nil)
	s.On("SalesHistoryFor", ctx, code).Return([]entity.SalesRecord{}, nil)

	rep, err := uc.Run(ctx, dto.InvestigationRequest{ProductCode: code, Period: "2026-01", ListLimit: 5})
	require.NoError(t, err)

	assert.Nil(t, rep.Master)
	require.NotNil(t, rep.Discovery)
	assert.Equal(t, code, rep.Discovery.Pattern)
	assert.Empty(t, rep.Discovery.Matches)
	require.Len(t, rep.Discovery.Fallback, 1)
	assert.Equal(t, "AAA001", rep.Discovery.Fallback[0].ProductCode)

	require.Len(t, rep.Verification.Unverifiable, 1)
	assert.Empty(t, rep.Verification.Mismatched)
	assert.False(t, rep.Verification.Unverifiable[0].Delta.Valid)
	assert.Equal(t, code, rep.Drift.ProductCode)
}

func TestRun_PatronFiltraResumenDelPeriodo(t *testing.T) {
	uc, p, s, a := newUC()
	ctx := context.Background()

	p.On("FindProduct", ctx, code).Return(master(), nil)
	p.On("FindProductsMatching", ctx, "kkk").Return([]*entity.Product{master()}, nil)
	s.On("SalesRecordsFor", ctx, code, "2026-01").Return([]entity.SalesRecord{}, nil)
	a.On("AggregateByProduct", ctx, "2026-01").Return([]entity.ProductPeriodAggregate{
		{ProductCode: code, ProductName: strPtr("Bolso negro"), TotalQuantity: 1, TotalCostAmount: dec("150")},
		{ProductCode: "AAA001", ProductName: strPtr("Taza"), TotalQuantity: 1, TotalCostAmount: dec("10")},
		{ProductCode: "ZZZ999", ProductName: strPtr("Llavero kkk"), TotalQuantity: 1, TotalCostAmount: dec("5")},
	}, nil)
	s.On("SalesHistoryFor", ctx, code).Return([]entity.SalesRecord{}, nil)

	rep, err := uc.Run(ctx, dto.InvestigationRequest{ProductCode: code, Period: "2026-01", Pattern: "kkk"})
	require.NoError(t, err)

	require.NotNil(t, rep.Discovery)
	assert.Len(t, rep.Discovery.Matches, 1)
	assert.True(t, rep.Verification.NoData)
	require.Len(t, rep.PeriodSum.Rows, 2)
	assert.Equal(t, code, rep.PeriodSum.Rows[0].ProductCode)
	assert.Equal(t, "ZZZ999", rep.PeriodSum.Rows[1].ProductCode)
	p.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
}

func TestRun_ErrorDeSeccionNoDetieneLasSiguientes(t *testing.T) {
	uc, p, s, a := newUC()
	ctx := context.Background()
	boom := errors.New("database disk image is malformed")

	p.On("FindProduct", ctx, code).Return(master(), nil)
	s.On("SalesRecordsFor", ctx, code, "2026-01").Return(nil, boom)
	a.On("AggregateByProduct", ctx, "2026-01").Return(nil, boom)
	s.On("SalesHistoryFor", ctx, code).Return([]entity.SalesRecord{rec(1, "2026-01", 1, "150.00")}, nil)

	rep, err := uc.Run(ctx, dto.InvestigationRequest{ProductCode: code, Period: "2026-01"})
	require.NoError(t, err)

	assert.Contains(t, rep.Verification.Error, "malformed")
	assert.Contains(t, rep.PeriodSum.Error, "malformed")
	assert.Empty(t, rep.Drift.Error)
	require.Len(t, rep.Drift.Periods, 1)
	s.AssertExpectations(t)
}

func TestRun_ErrorEnFichaMaestra(t *testing.T) {
	uc, p, s, a := newUC()
	ctx := context.Background()

	p.On("FindProduct", ctx, code).Return(nil, errors.New("no such table: products"))
	p.On("FindProductsMatching", ctx, code).Return(nil, errors.New("no such table: products"))
	a.On("AggregateByProduct", ctx, "2026-01").Return([]entity.ProductPeriodAggregate{}, nil)
	s.On("SalesHistoryFor", ctx, code).Return([]entity.SalesRecord{}, nil)

	rep, err := uc.Run(ctx, dto.InvestigationRequest{ProductCode: code, Period: "2026-01"})
	require.NoError(t, err)

	assert.Contains(t, rep.MasterError, "no such table")
	require.NotNil(t, rep.Discovery)
	assert.NotEmpty(t, rep.Discovery.Error)

	// la verificación se omite en lugar de marcar todo como no verificable
	assert.True(t, rep.Verification.Skipped)
	assert.Contains(t, rep.Verification.Error, "ficha maestra")
	assert.Empty(t, rep.Verification.Unverifiable)
	s.AssertNotCalled(t, "SalesRecordsFor", mock.Anything, mock.Anything, mock.Anything)

	// las secciones siguientes se ejecutan igual
	a.AssertExpectations(t)
	s.AssertCalled(t, "SalesHistoryFor", ctx, code)
}

func TestRun_EntradaInvalida(t *testing.T) {
	uc, _, _, _ := newUC()

	_, err := uc.Run(context.Background(), dto.InvestigationRequest{ProductCode: code, Period: "2026/01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Run(context.Background(), dto.InvestigationRequest{ProductCode: "  ", Period: "2026-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRun_ContextoCancelado(t *testing.T) {
	uc, _, _, _ := newUC()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Run(ctx, dto.InvestigationRequest{ProductCode: code, Period: "2026-01"})
	assert.ErrorIs(t, err, context.Canceled)
}
