// Package sqlstore implementa los puertos de lectura sobre database/sql.
// Las consultas usan placeholders "?" y SQL común a SQLite y MySQL.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Nombres de driver registrados en database/sql.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Querier abstrae *sql.DB y *sql.Tx para que los repositorios funcionen con cualquiera de los dos.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open abre la conexión y verifica que responda. El uso es secuencial: una sola conexión abierta.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("abrir %s: %w", driver, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// SQLiteReadOnlyDSN arma el URI de solo lectura para un archivo SQLite existente.
// La ruta va escapada: un '#', '?' o '%' en el nombre no puede cortar el URI ni perder mode=ro.
func SQLiteReadOnlyDSN(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(path),
		RawQuery: "mode=ro&_pragma=query_only(1)&_pragma=busy_timeout(5000)",
	}
	return u.String()
}
