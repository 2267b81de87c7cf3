// Package memory implementa todos los puertos en memoria. Se usa en tests y como backend
// del servidor cuando no hay DATABASE_URL configurada.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

type stockKey struct {
	product  string
	location string
}

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	products     map[string]entity.Product
	stock        map[stockKey]entity.Stock
	movements    map[string]entity.StockMovement
	transRefs    map[string]string
	stores       map[string]entity.Store
	reports      map[string]entity.EndOfDayReport
	transactions []entity.Transaction
	outbox       map[string]entity.OutboxEntry
	outboxOrder  []string
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{
		products:  make(map[string]entity.Product),
		stock:     make(map[stockKey]entity.Stock),
		movements: make(map[string]entity.StockMovement),
		transRefs: make(map[string]string),
		stores:    make(map[string]entity.Store),
		reports:   make(map[string]entity.EndOfDayReport),
		outbox:    make(map[string]entity.OutboxEntry),
	}
}

// PutProduct inserta o reemplaza un producto del catálogo.
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// DeleteProduct elimina un producto del catálogo (los movimientos que lo referencian se conservan).
func (s *Store) DeleteProduct(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

// PutStore inserta o reemplaza una tienda con sus ubicaciones.
func (s *Store) PutStore(st entity.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	locs := make([]entity.Location, len(st.Locations))
	copy(locs, st.Locations)
	for i := range locs {
		locs[i].StoreID = st.ID
	}
	st.Locations = locs
	s.stores[st.ID] = st
}

// PutTransaction agrega una venta al log de transacciones.
func (s *Store) PutTransaction(tx entity.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, tx)
}

// PutMovement inserta un movimiento sin aplicar deltas (datos históricos o pendientes).
func (s *Store) PutMovement(m entity.StockMovement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements[m.ID] = cloneMovement(m)
	s.transRefs[m.TransRef] = m.ID
}

// undoLog operaciones inversas de lo escrito por una transacción. Se escribe y se aplica
// siempre con Store.mu tomado; nil en los repositorios fuera de transacción.
type undoLog struct{ ops []func() }

func (l *undoLog) add(op func()) {
	if l != nil {
		l.ops = append(l.ops, op)
	}
}

// rollback deshace en orden inverso lo registrado desde mark. Solo revierte las claves que
// escribió la transacción; las escrituras ajenas hechas entretanto se conservan.
func (s *Store) rollback(l *undoLog, mark int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(l.ops) - 1; i >= mark; i-- {
		l.ops[i]()
	}
	l.ops = l.ops[:mark]
}

func cloneMovement(m entity.StockMovement) entity.StockMovement {
	m.Lines = append([]entity.MovementLine(nil), m.Lines...)
	if m.DateReceived != nil {
		t := *m.DateReceived
		m.DateReceived = &t
	}
	return m
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sameLocation(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
