// Package datasource adquiere la fuente de datos de solo lectura y arma los repositorios sobre ella.
//
// La fuente se abre una vez por ejecución y se libera con Close (idempotente), que el llamador
// difiere inmediatamente después de Open. Si no hay fuente utilizable, Open devuelve
// domain.ErrDataSourceUnavailable y la ejecución se aborta.
package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/jhoicas/cost-reconciler/internal/domain"
	"github.com/jhoicas/cost-reconciler/internal/domain/repository"
	"github.com/jhoicas/cost-reconciler/internal/infrastructure/postgres"
	"github.com/jhoicas/cost-reconciler/internal/infrastructure/sqlstore"
	"github.com/jhoicas/cost-reconciler/pkg/config"
	"github.com/jhoicas/cost-reconciler/pkg/logger"
)

// Source fuente de datos abierta con sus repositorios.
type Source struct {
	Driver       string
	Location     string // ruta del archivo o URL sin contraseña
	UsedFallback bool

	Products  repository.ProductRepository
	Sales     repository.SalesRecordRepository
	Analytics repository.AnalyticsRepository

	closeFn func() error
	closed  bool
}

// Close libera la conexión. Llamarlo más de una vez no tiene efecto.
func (s *Source) Close() error {
	if s == nil || s.closed || s.closeFn == nil {
		return nil
	}
	s.closed = true
	return s.closeFn()
}

// Open abre la fuente indicada por la configuración.
func Open(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Source, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return openSQLite(ctx, cfg, log)
	case config.DriverMySQL:
		return openMySQL(ctx, cfg, log)
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("%w: driver %q no soportado", domain.ErrDataSourceUnavailable, cfg.Driver)
	}
}

func openSQLite(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Source, error) {
	path, usedFallback, err := ResolveSQLitePath(cfg.Path, cfg.FallbackPath)
	if err != nil {
		return nil, err
	}
	if usedFallback {
		log.Warn().Str("primary", cfg.Path).Str("fallback", path).Msg("base principal no encontrada, se usa la de respaldo")
	}

	db, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, sqlstore.SQLiteReadOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDataSourceUnavailable, err)
	}
	log.Info().Str("driver", config.DriverSQLite).Str("path", path).Msg("fuente de datos abierta")

	src := newSQLSource(db)
	src.Driver = config.DriverSQLite
	src.Location = path
	src.UsedFallback = usedFallback
	return src, nil
}

func openMySQL(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Source, error) {
	mcfg, err := mysql.ParseDSN(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: DSN mysql: %w", domain.ErrDataSourceUnavailable, err)
	}
	mcfg.ParseTime = true

	db, err := sqlstore.Open(ctx, sqlstore.DriverMySQL, mcfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDataSourceUnavailable, err)
	}

	redacted := *mcfg
	redacted.Passwd = ""
	location := redacted.FormatDSN()
	log.Info().Str("driver", config.DriverMySQL).Str("dsn", location).Msg("fuente de datos abierta")

	src := newSQLSource(db)
	src.Driver = config.DriverMySQL
	src.Location = location
	return src, nil
}

func openPostgres(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Source, error) {
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDataSourceUnavailable, err)
	}
	location := redactURL(cfg.DatabaseURL)
	log.Info().Str("driver", config.DriverPostgres).Str("url", location).Msg("fuente de datos abierta")

	return &Source{
		Driver:    config.DriverPostgres,
		Location:  location,
		Products:  postgres.NewProductRepository(pool),
		Sales:     postgres.NewSalesRecordRepository(pool),
		Analytics: postgres.NewAnalyticsRepository(pool),
		closeFn: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

func newSQLSource(db *sql.DB) *Source {
	return &Source{
		Products:  sqlstore.NewProductRepository(db),
		Sales:     sqlstore.NewSalesRecordRepository(db),
		Analytics: sqlstore.NewAnalyticsRepository(db),
		closeFn:   db.Close,
	}
}

// ResolveSQLitePath elige el archivo a abrir: primero primary, y si no existe, fallback (una sola vez).
// Acepta el prefijo "file:" de DATABASE_URL de Prisma y resuelve rutas relativas contra el directorio actual.
func ResolveSQLitePath(primary, fallback string) (path string, usedFallback bool, err error) {
	var tried []string
	for i, candidate := range []string{primary, fallback} {
		p := normalizePath(candidate)
		if p == "" {
			continue
		}
		tried = append(tried, p)
		ok, statErr := isFile(p)
		if statErr != nil {
			return "", false, fmt.Errorf("%w: %s: %w", domain.ErrDataSourceUnavailable, p, statErr)
		}
		if ok {
			return p, i == 1, nil
		}
	}
	return "", false, fmt.Errorf("%w: archivo de base no encontrado (%s)", domain.ErrDataSourceUnavailable, strings.Join(tried, ", "))
}

func normalizePath(p string) string {
	p = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p), "file:"))
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func isFile(p string) (bool, error) {
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(url inválida)"
	}
	return u.Redacted()
}
