// Package textnorm normaliza códigos de producto capturados a mano o exportados desde planillas,
// donde es común encontrar caracteres de ancho completo (ＫＫＫＢＧ００２).
package textnorm

import (
	"strings"

	"golang.org/x/text/width"
)

// Code pliega el ancho de los caracteres (ancho completo → medio ancho) y recorta espacios.
// No cambia mayúsculas: los códigos se comparan de forma exacta.
func Code(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}

// ContainsFold indica si sub aparece en s sin distinguir mayúsculas ni ancho.
func ContainsFold(s, sub string) bool {
	return strings.Contains(strings.ToUpper(Code(s)), strings.ToUpper(Code(sub)))
}

// likeEscaper escapa los comodines de LIKE con '!' (consultas con ESCAPE '!').
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// LikeContains arma el patrón "%SUB%" para UPPER(col) LIKE ? ESCAPE '!'.
// SQLite, MySQL y PostgreSQL aceptan la misma forma.
func LikeContains(sub string) string {
	return "%" + strings.ToUpper(likeEscaper.Replace(sub)) + "%"
}
