// Package period valida y ordena etiquetas de período contable en formato YYYY-MM.
package period

import (
	"fmt"
	"time"

	"github.com/jhoicas/cost-reconciler/internal/domain"
)

const layout = "2006-01"

// Parse valida una etiqueta YYYY-MM y la devuelve normalizada.
func Parse(s string) (string, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return "", fmt.Errorf("%w: período %q no tiene formato YYYY-MM", domain.ErrInvalidInput, s)
	}
	return t.Format(layout), nil
}

// Current devuelve el período del instante dado.
func Current(now time.Time) string {
	return now.Format(layout)
}

// Less ordena períodos. Con etiquetas YYYY-MM el orden lexicográfico coincide con el cronológico.
func Less(a, b string) bool {
	return a < b
}
