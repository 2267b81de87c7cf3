// Package seed carga datos iniciales (tiendas, ubicaciones, catálogo y ventas) desde JSON.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/postgres"
)

//go:embed demo.json
var demoJSON []byte

// Dataset contenido de un archivo de seed.
type Dataset struct {
	Stores       []Store       `json:"stores"`
	Products     []Product     `json:"products"`
	Transactions []Transaction `json:"transactions"`
}

type Store struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Locations []Location `json:"locations"`
}

type Location struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"` // omitido = activa
}

type Product struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	SKU        string          `json:"sku"`
	Quantity   int64           `json:"quantity"`
	MinStock   int64           `json:"min_stock"`
	CostPrice  decimal.Decimal `json:"cost_price"`
	ExpiryDate *time.Time      `json:"expiry_date"`
}

type Transaction struct {
	ID         string               `json:"id"`
	Total      decimal.Decimal      `json:"total"`
	AmountPaid decimal.Decimal      `json:"amount_paid"`
	TenderType string               `json:"tender_type"`
	Tenders    []entity.TenderSplit `json:"tenders"`
	LocationID string               `json:"location_id"`
	Location   string               `json:"location"`
	Status     string               `json:"status"`
	CreatedAt  time.Time            `json:"created_at"`
}

// Load decodifica y valida un dataset. Campos desconocidos son error.
func Load(r io.Reader) (*Dataset, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decodificar seed: %w", err)
	}
	if err := ds.validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Demo dataset de demostración embebido en el binario.
func Demo() *Dataset {
	ds, err := Load(bytes.NewReader(demoJSON))
	if err != nil {
		panic("seed demo inválido: " + err.Error())
	}
	return ds
}

func (ds *Dataset) validate() error {
	ids := map[string]bool{}
	for i, s := range ds.Stores {
		if !entity.IsIdentifier(s.ID) {
			return fmt.Errorf("stores[%d].id: identificador inválido %q", i, s.ID)
		}
		for j, l := range s.Locations {
			if !entity.IsIdentifier(l.ID) {
				return fmt.Errorf("stores[%d].locations[%d].id: identificador inválido %q", i, j, l.ID)
			}
			if strings.TrimSpace(l.Name) == "" {
				return fmt.Errorf("stores[%d].locations[%d].name: requerido", i, j)
			}
			if ids[l.ID] {
				return fmt.Errorf("ubicación %s repetida", l.ID)
			}
			ids[l.ID] = true
		}
	}
	for i, p := range ds.Products {
		if !entity.IsIdentifier(p.ID) {
			return fmt.Errorf("products[%d].id: identificador inválido %q", i, p.ID)
		}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("products[%d].name: requerido", i)
		}
		if p.MinStock < 0 {
			return fmt.Errorf("products[%d].min_stock: no puede ser negativo", i)
		}
	}
	for i, t := range ds.Transactions {
		if t.ID == "" {
			return fmt.Errorf("transactions[%d].id: requerido", i)
		}
		if t.CreatedAt.IsZero() {
			return fmt.Errorf("transactions[%d].created_at: requerido", i)
		}
	}
	return nil
}

// Target destino del seed.
type Target struct {
	Store       func(ctx context.Context, s *entity.Store) error
	Product     func(ctx context.Context, p *entity.Product) error
	Transaction func(ctx context.Context, t *entity.Transaction) error
}

// ForMemory escribe en el backend en memoria.
func ForMemory(st *memory.Store) Target {
	return Target{
		Store:       func(_ context.Context, s *entity.Store) error { st.PutStore(*s); return nil },
		Product:     func(_ context.Context, p *entity.Product) error { st.PutProduct(*p); return nil },
		Transaction: func(_ context.Context, t *entity.Transaction) error { st.PutTransaction(*t); return nil },
	}
}

// ForPostgres escribe con los repositorios de PostgreSQL sobre q (pool o tx).
func ForPostgres(q postgres.Querier) Target {
	return Target{
		Store:       postgres.NewLocationRepository(q).CreateStore,
		Product:     postgres.NewProductRepository(q).Create,
		Transaction: postgres.NewTransactionLog(q).Insert,
	}
}

// Apply escribe el dataset en el destino: tiendas, luego productos, luego ventas.
func Apply(ctx context.Context, ds *Dataset, t Target) error {
	now := time.Now().UTC()
	for _, s := range ds.Stores {
		store := &entity.Store{ID: s.ID, Name: s.Name, CreatedAt: now, UpdatedAt: now}
		for _, l := range s.Locations {
			active := l.IsActive == nil || *l.IsActive
			store.Locations = append(store.Locations, entity.Location{ID: l.ID, StoreID: s.ID, Name: l.Name, IsActive: active})
		}
		if err := t.Store(ctx, store); err != nil {
			return fmt.Errorf("tienda %s: %w", s.ID, err)
		}
	}
	for _, p := range ds.Products {
		prod := &entity.Product{
			ID: p.ID, Name: p.Name, SKU: p.SKU, Quantity: p.Quantity, MinStock: p.MinStock,
			CostPrice: p.CostPrice, ExpiryDate: p.ExpiryDate, CreatedAt: now, UpdatedAt: now,
		}
		if err := t.Product(ctx, prod); err != nil {
			return fmt.Errorf("producto %s: %w", p.ID, err)
		}
	}
	for _, tx := range ds.Transactions {
		status := tx.Status
		if status == "" {
			status = entity.TransactionStatusCompleted
		}
		rec := &entity.Transaction{
			ID: tx.ID, Total: tx.Total, AmountPaid: tx.AmountPaid, TenderType: tx.TenderType, Tenders: tx.Tenders,
			LocationID: tx.LocationID, Location: tx.Location, Status: status, CreatedAt: tx.CreatedAt,
		}
		if err := t.Transaction(ctx, rec); err != nil {
			return fmt.Errorf("venta %s: %w", tx.ID, err)
		}
	}
	return nil
}
