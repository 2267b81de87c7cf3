// seed carga tiendas, ubicaciones, catálogo y ventas de ejemplo en PostgreSQL.
//
// Uso: go run ./cmd/seed [ruta/seed.json]
// Sin argumento carga el dataset de demostración embebido.
// Todo se inserta en una sola transacción; si algo falla no queda nada a medias.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/retail-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/seed"
	"github.com/jhoicas/retail-ledger/pkg/config"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if !cfg.DB.Enabled() {
		fmt.Fprintln(os.Stderr, "DATABASE_URL o DB_HOST requerido")
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"}).Zerolog()

	ds := seed.Demo()
	if len(os.Args) > 1 {
		f, err := os.Open(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Abrir seed: %v\n", err)
			os.Exit(1)
		}
		ds, err = seed.Load(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.DB.Migrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
			fmt.Fprintf(os.Stderr, "Migraciones: %v\n", err)
			os.Exit(1)
		}
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Iniciar transacción: %v\n", err)
		os.Exit(1)
	}
	if err := seed.Apply(ctx, ds, seed.ForPostgres(tx)); err != nil {
		_ = tx.Rollback(ctx)
		fmt.Fprintf(os.Stderr, "Seed: %v\n", err)
		os.Exit(1)
	}
	if err := tx.Commit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Commit: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seed aplicado: %d tiendas, %d productos, %d ventas\n", len(ds.Stores), len(ds.Products), len(ds.Transactions))
}
