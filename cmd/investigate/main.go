// investigate compara el costo unitario maestro de un producto con el costo registrado en sus ventas
// de un período, resume el período y muestra en qué mes cambió el costo implícito.
//
// Ejemplo:
//
//	go run ./cmd/investigate/ \
//	  -product=KKKBG002BLK \
//	  -period=2026-01 \
//	  -db=./prisma/dev.db
//
// La fuente se abre en solo lectura. El reporte va a stdout y los logs a stderr.
// Códigos de salida: 0 ok, 1 fuente no disponible o entrada inválida, 2 error inesperado.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/jhoicas/cost-reconciler/internal/application/dto"
	"github.com/jhoicas/cost-reconciler/internal/application/usecase"
	"github.com/jhoicas/cost-reconciler/internal/domain"
	"github.com/jhoicas/cost-reconciler/internal/domain/period"
	"github.com/jhoicas/cost-reconciler/internal/infrastructure/datasource"
	"github.com/jhoicas/cost-reconciler/internal/interfaces/console"
	"github.com/jhoicas/cost-reconciler/pkg/config"
	"github.com/jhoicas/cost-reconciler/pkg/logger"
)

const (
	exitOK          = 0
	exitUnavailable = 1
	exitUnexpected  = 2
)

// investigator ejecuta la investigación completa.
type investigator interface {
	Run(ctx context.Context, req dto.InvestigationRequest) (*dto.InvestigationReport, error)
}

var (
	openSource      = datasource.Open
	newInvestigator = func(src *datasource.Source, log *logger.Logger) investigator {
		return usecase.NewInvestigationUseCase(src.Products, src.Sales, src.Analytics, log)
	}
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) (code int) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "cargar configuración:", err)
		return exitUnavailable
	}
	if err := applyFlags(cfg, args, stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUnavailable
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		Out:   stderr,
	})
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("configuración inválida")
		return exitUnavailable
	}
	if cfg.Investigation.Period == "" {
		cfg.Investigation.Period = period.Current(time.Now())
	}
	renderer, err := console.NewRenderer(cfg.Report.Format)
	if err != nil {
		log.Error().Err(err).Msg("formato de reporte")
		return exitUnavailable
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := openSource(ctx, cfg.DB, log)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.DB.Driver).Msg("fuente de datos no disponible")
		return exitUnavailable
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar fuente de datos")
		}
	}()
	// Se registra después de Close: el pánico se recupera primero y la fuente se libera igual.
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("error inesperado durante la investigación")
			code = exitUnexpected
		}
	}()

	rep, err := newInvestigator(src, log).Run(ctx, dto.InvestigationRequest{
		ProductCode: cfg.Investigation.ProductCode,
		Period:      cfg.Investigation.Period,
		Pattern:     cfg.Investigation.Pattern,
		ListLimit:   cfg.Investigation.ListLimit,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			log.Error().Err(err).Msg("parámetros de investigación inválidos")
		} else {
			log.Error().Err(err).Msg("investigación interrumpida")
		}
		return exitUnavailable
	}

	if err := renderer.Render(stdout, rep); err != nil {
		log.Error().Err(err).Msg("escribir reporte")
		return exitUnexpected
	}
	return exitOK
}

// applyFlags sobrescribe la configuración con los flags presentes en args.
func applyFlags(cfg *config.Config, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("investigate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cfg.Investigation.ProductCode, "product", cfg.Investigation.ProductCode, "Obligatorio: código de producto exacto")
	fs.StringVar(&cfg.Investigation.Period, "period", cfg.Investigation.Period, "Período YYYY-MM (vacío = mes en curso)")
	fs.StringVar(&cfg.Investigation.Pattern, "pattern", cfg.Investigation.Pattern, "Subcadena para buscar productos parecidos y filtrar el resumen")
	fs.StringVar(&cfg.Report.Format, "format", cfg.Report.Format, "Formato del reporte (text, json)")
	fs.StringVar(&cfg.DB.Path, "db", cfg.DB.Path, "Ruta del archivo SQLite")
	fs.StringVar(&cfg.DB.FallbackPath, "db-fallback", cfg.DB.FallbackPath, "Ruta de respaldo si -db no existe")
	fs.StringVar(&cfg.DB.Driver, "driver", cfg.DB.Driver, "Driver de la fuente (sqlite, mysql, postgres)")
	fs.IntVar(&cfg.Investigation.ListLimit, "list-limit", cfg.Investigation.ListLimit, "Máx. productos listados cuando no hay coincidencias")

	return fs.Parse(args)
}
