package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// LocationRepository puerto del directorio de ubicaciones (subdocumentos de cada tienda). Solo lectura.
type LocationRepository interface {
	// ListAll devuelve todas las ubicaciones de todas las tiendas.
	ListAll(ctx context.Context) ([]entity.Location, error)
	// GetInStore búsqueda directa en los subdocumentos de una tienda; nil si no existe.
	GetInStore(ctx context.Context, storeID, locationID string) (*entity.Location, error)
}
