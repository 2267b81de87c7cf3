package location

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

// Nombres centinela.
const (
	VendorName  = "Vendor"
	UnknownName = "Unknown"
)

// maxLegacyNameLen longitud máxima de un valor que se acepta como nombre ya resuelto.
const maxLegacyNameLen = 20

// Cache mapa id → nombre construido una vez por operación lógica. Solo lectura tras Build.
type Cache struct {
	names  map[string]string
	folded map[string]string
}

// NewCache construye el mapa desde las ubicaciones, sembrado con los centinelas.
func NewCache(locations []entity.Location) *Cache {
	c := &Cache{
		names:  make(map[string]string, len(locations)+3),
		folded: make(map[string]string, len(locations)+3),
	}
	c.put(entity.VendorLocation, VendorName)
	c.put(VendorName, VendorName)
	c.put("", UnknownName)
	for _, l := range locations {
		if l.ID == "" {
			continue
		}
		c.put(l.ID, l.Name)
	}
	return c
}

func (c *Cache) put(key, name string) {
	c.names[key] = name
	c.folded[fold(key)] = name
}

// Lookup búsqueda exacta y luego sin distinguir mayúsculas.
func (c *Cache) Lookup(id string) (string, bool) {
	if c == nil {
		return "", false
	}
	if name, ok := c.names[id]; ok {
		return name, true
	}
	name, ok := c.folded[fold(id)]
	return name, ok
}

// Entries copia del mapa exacto.
func (c *Cache) Entries() map[string]string {
	out := make(map[string]string, len(c.names))
	for k, v := range c.names {
		out[k] = v
	}
	return out
}

// Len número de entradas, centinelas incluidos.
func (c *Cache) Len() int { return len(c.names) }

// Directory resuelve identificadores de ubicación a nombres legibles.
type Directory struct {
	repo repository.LocationRepository
	log  zerolog.Logger
}

// NewDirectory construye el directorio.
func NewDirectory(repo repository.LocationRepository, log zerolog.Logger) *Directory {
	return &Directory{repo: repo, log: log.With().Str("component", "location_directory").Logger()}
}

// Build lee todas las ubicaciones de todas las tiendas una sola vez.
// Los llamadores construyen una vez por request y reutilizan el resultado.
func (d *Directory) Build(ctx context.Context) (*Cache, error) {
	locations, err := d.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return NewCache(locations), nil
}

// Resolve nombre de una ubicación de origen. Vacío significa que vino del proveedor.
func (d *Directory) Resolve(ctx context.Context, cache *Cache, id, storeID string) string {
	if strings.TrimSpace(id) == "" {
		return VendorName
	}
	return d.resolve(ctx, cache, id, storeID)
}

// ResolveDestination nombre de una ubicación de destino. Vacío es desconocido, no proveedor.
func (d *Directory) ResolveDestination(ctx context.Context, cache *Cache, id, storeID string) string {
	if strings.TrimSpace(id) == "" {
		return UnknownName
	}
	return d.resolve(ctx, cache, id, storeID)
}

func (d *Directory) resolve(ctx context.Context, cache *Cache, id, storeID string) string {
	id = strings.TrimSpace(id)
	if entity.IsVendor(id) {
		return VendorName
	}
	if name, ok := cache.Lookup(id); ok {
		return name
	}
	if storeID != "" && d.repo != nil {
		loc, err := d.repo.GetInStore(ctx, storeID, id)
		if err != nil {
			d.log.Warn().Err(err).Str("store_id", storeID).Str("location_id", id).Msg("búsqueda directa de ubicación falló")
		} else if loc != nil {
			return loc.Name
		}
	}
	// Registros heredados guardan el nombre en lugar del ID.
	if len(id) <= maxLegacyNameLen && !entity.IsIdentifier(id) {
		return id
	}
	return UnknownName
}

func fold(s string) string {
	return cases.Fold().String(s)
}
