// Package console presenta el reporte de investigación en la salida estándar.
package console

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jhoicas/cost-reconciler/internal/application/dto"
	"github.com/jhoicas/cost-reconciler/pkg/config"
)

// Renderer escribe un reporte completo en w.
type Renderer interface {
	Render(w io.Writer, rep *dto.InvestigationReport) error
}

// NewRenderer devuelve el renderer para el formato configurado (text | json).
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case config.FormatText, "":
		return NewTextRenderer(), nil
	case config.FormatJSON:
		return JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("console: formato %q no soportado", format)
	}
}

// JSONRenderer emite el reporte como JSON indentado. Los decimales salen como cadenas.
type JSONRenderer struct{}

// Render codifica rep completo; los valores ausentes salen como null.
func (JSONRenderer) Render(w io.Writer, rep *dto.InvestigationReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("console: codificar json: %w", err)
	}
	return nil
}
