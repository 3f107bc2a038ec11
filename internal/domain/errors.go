package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrDataSourceUnavailable = errors.New("fuente de datos no disponible")
)
