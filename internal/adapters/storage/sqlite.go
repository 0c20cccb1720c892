package storage

// sqlite.go — journal de pruebas de conectividad al exchange.
//
// Estrategia:
//   - `balance_probes`: una fila por prueba (ok/fallo, saldo, latencia).
//   - Solo diagnóstico: ningún cálculo de promos o dutching se persiste aquí.
//   - Prune automático al arrancar: pruebas > 30d.
//   - Timestamps como unix millis (INTEGER) para evitar ambigüedad de formato.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/betagent/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS balance_probes (
    id          TEXT PRIMARY KEY,
    checked_at  INTEGER NOT NULL,
    exchange    TEXT    NOT NULL,
    ok          INTEGER NOT NULL DEFAULT 0,
    balance     REAL    NOT NULL DEFAULT 0,
    latency_ms  INTEGER NOT NULL DEFAULT 0,
    error       TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_probes_at ON balance_probes(checked_at DESC);
`

const retentionProbes = 30 * 24 * time.Hour // pruebas: 30 días

// SQLiteStorage implementa ports.ProbeStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia pruebas antiguas.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background(), time.Now())
	return s, nil
}

// SaveProbe inserta una prueba en el journal.
func (s *SQLiteStorage) SaveProbe(ctx context.Context, p domain.BalanceProbe) error {
	ok := 0
	if p.OK {
		ok = 1
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO balance_probes (id, checked_at, exchange, ok, balance, latency_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.CheckedAt.UTC().UnixMilli(), p.Exchange, ok, p.Balance, p.Latency.Milliseconds(), p.Error,
	); err != nil {
		return fmt.Errorf("storage.SaveProbe: insert %s: %w", p.ID, err)
	}
	return nil
}

// RecentProbes devuelve las últimas n pruebas, más recientes primero.
func (s *SQLiteStorage) RecentProbes(ctx context.Context, n int) ([]domain.BalanceProbe, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, checked_at, exchange, ok, balance, latency_ms, error
		FROM balance_probes
		ORDER BY checked_at DESC, rowid DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("storage.RecentProbes: query: %w", err)
	}
	defer rows.Close()

	var probes []domain.BalanceProbe
	for rows.Next() {
		var p domain.BalanceProbe
		var checkedAt, latencyMs int64
		var ok int
		if err := rows.Scan(&p.ID, &checkedAt, &p.Exchange, &ok, &p.Balance, &latencyMs, &p.Error); err != nil {
			return nil, fmt.Errorf("storage.RecentProbes: scan row: %w", err)
		}
		p.CheckedAt = time.UnixMilli(checkedAt).UTC()
		p.Latency = time.Duration(latencyMs) * time.Millisecond
		p.OK = ok == 1
		probes = append(probes, p)
	}
	return probes, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld elimina pruebas antiguas para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context, now time.Time) {
	cutoff := now.UTC().Add(-retentionProbes).UnixMilli()
	s.db.ExecContext(ctx, `DELETE FROM balance_probes WHERE checked_at < ?`, cutoff)
}
