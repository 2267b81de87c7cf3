package location_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/application/location"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

type fakeLocations struct {
	all      []entity.Location
	inStore  map[string]*entity.Location
	lookups  int
	storeErr error
}

func (f *fakeLocations) ListAll(ctx context.Context) ([]entity.Location, error) {
	return f.all, nil
}

func (f *fakeLocations) GetInStore(ctx context.Context, storeID, locationID string) (*entity.Location, error) {
	f.lookups++
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	return f.inStore[storeID+"/"+locationID], nil
}

const (
	mainID   = "6512bd43d9caa6e02c990b0a"
	backID   = "c20ad4d76fe97759aa27a0c9"
	hiddenID = "c51ce410c124a10e0db5e4b9"
)

func newDirectory(t *testing.T) (*location.Directory, *location.Cache, *fakeLocations) {
	t.Helper()
	repo := &fakeLocations{
		all: []entity.Location{
			{ID: mainID, StoreID: "s1", Name: "Main Floor", IsActive: true},
			{ID: backID, StoreID: "s1", Name: "Back Room", IsActive: false},
		},
		inStore: map[string]*entity.Location{
			"s1/" + hiddenID: {ID: hiddenID, StoreID: "s1", Name: "Annex"},
		},
	}
	dir := location.NewDirectory(repo, zerolog.Nop())
	cache, err := dir.Build(context.Background())
	require.NoError(t, err)
	return dir, cache, repo
}

func TestResolve_Centinelas(t *testing.T) {
	dir, cache, _ := newDirectory(t)
	ctx := context.Background()

	assert.Equal(t, "Vendor", dir.Resolve(ctx, cache, "", ""))
	assert.Equal(t, "Vendor", dir.Resolve(ctx, cache, "vendor", ""))
	assert.Equal(t, "Vendor", dir.Resolve(ctx, cache, "VENDOR", ""))
	assert.Equal(t, "Unknown", dir.ResolveDestination(ctx, cache, "", ""))
	assert.Equal(t, "Vendor", dir.ResolveDestination(ctx, cache, "vendor", ""))
}

func TestResolve_CoincidenciaExactaYSinMayusculas(t *testing.T) {
	dir, cache, _ := newDirectory(t)
	ctx := context.Background()

	assert.Equal(t, "Main Floor", dir.Resolve(ctx, cache, mainID, ""))
	assert.Equal(t, "Back Room", dir.Resolve(ctx, cache, "C20AD4D76FE97759AA27A0C9", ""))
}

func TestResolve_BusquedaDirectaEnTienda(t *testing.T) {
	dir, cache, repo := newDirectory(t)
	ctx := context.Background()

	assert.Equal(t, "Annex", dir.Resolve(ctx, cache, hiddenID, "s1"))
	assert.Equal(t, 1, repo.lookups)

	// sin storeID no hay búsqueda directa
	assert.Equal(t, "Unknown", dir.Resolve(ctx, cache, hiddenID, ""))
	assert.Equal(t, 1, repo.lookups)
}

func TestResolve_FalloDeBusquedaDirectaNoPropaga(t *testing.T) {
	dir, cache, repo := newDirectory(t)
	repo.storeErr = errors.New("timeout")
	assert.Equal(t, "Unknown", dir.Resolve(context.Background(), cache, hiddenID, "s1"))
}

func TestResolve_NombresHeredados(t *testing.T) {
	dir, cache, _ := newDirectory(t)
	ctx := context.Background()

	assert.Equal(t, "not-a-real-id", dir.Resolve(ctx, cache, "not-a-real-id", ""))
	assert.Equal(t, "Unknown", dir.Resolve(ctx, cache, "0123456789abcdef01234567", ""))
	assert.Equal(t, "Unknown", dir.Resolve(ctx, cache, "a-very-long-free-text-location-name", ""))
	assert.Equal(t, "Unknown", dir.Resolve(ctx, cache, "3f1c1c4e-8a8e-4a39-9a55-0b5b1c8e2f10", ""))
}

func TestCache_SembradaConCentinelas(t *testing.T) {
	cache := location.NewCache(nil)
	entries := cache.Entries()
	assert.Equal(t, "Vendor", entries["vendor"])
	assert.Equal(t, "Vendor", entries["Vendor"])
	assert.Equal(t, "Unknown", entries[""])
	assert.Equal(t, 3, cache.Len())
}
