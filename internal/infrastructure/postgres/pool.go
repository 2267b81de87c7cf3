package postgres

import (
	"context"
	"fmt"
	"net"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/retail-ledger/pkg/config"
)

const applicationName = "retail-ledger"

// NewPool crea el pool y verifica la conexión con un ping.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

// poolConfig arma la configuración sin conectar: DATABASE_URL o DSN por partes, tamaño del pool,
// codec NUMERIC -> decimal.Decimal y, si se pide, marcado forzado por IPv4.
func poolConfig(cfg config.DBConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns >= 0 && cfg.MinConns <= cfg.MaxConns {
		pc.MinConns = int32(cfg.MinConns)
	}
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnIdleTime = 30 * time.Minute
	pc.HealthCheckPeriod = time.Minute
	if _, ok := pc.ConnConfig.RuntimeParams["application_name"]; !ok {
		pc.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	if cfg.ForceIPv4 {
		// Docker suele no tener IPv6 y algunos proveedores resuelven primero AAAA.
		pc.ConnConfig.DialFunc = dialIPv4
	}

	pc.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	return pc, nil
}

// dialIPv4 marca a la primera IPv4 del host; sin IPv4 cae al marcado normal.
func dialIPv4(ctx context.Context, network, addr string) (net.Conn, error) {
	d := &net.Dialer{Timeout: 5 * time.Second}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ip, err := lookupIPv4(ctx, net.DefaultResolver, host)
	if err != nil {
		return d.DialContext(ctx, network, addr)
	}
	return d.DialContext(ctx, "tcp4", net.JoinHostPort(ip, port))
}

func lookupIPv4(ctx context.Context, r *net.Resolver, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() != nil {
			return host, nil
		}
		return "", fmt.Errorf("%s es IPv6", host)
	}
	ips, err := r.LookupIP(ctx, "ip4", host)
	if err != nil {
		return "", err
	}
	if len(ips) == 0 {
		return "", fmt.Errorf("%s sin IPv4", host)
	}
	return ips[0].String(), nil
}
