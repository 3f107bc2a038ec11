package repository

import (
	"context"

	"github.com/jhoicas/cost-reconciler/internal/domain/entity"
)

// ProductRepository define el puerto de lectura para la ficha maestra de productos (DIP).
// FindProduct devuelve (nil, nil) cuando el código no existe: la ficha incompleta es un estado válido.
type ProductRepository interface {
	FindProduct(ctx context.Context, code string) (*entity.Product, error)
	// FindProductsMatching busca pattern como subcadena del código o del nombre (sin distinguir mayúsculas),
	// ordenado por código ascendente.
	FindProductsMatching(ctx context.Context, pattern string) ([]*entity.Product, error)
	// ListProducts devuelve los primeros limit productos por código (listado de descubrimiento).
	ListProducts(ctx context.Context, limit int) ([]*entity.Product, error)
}
