// pkg/db/mysql.go
// Helper koneksi MySQL (menggunakan database/sql)

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

type Options struct {
	DSN         string
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

// NewMySQL membuka pool dan melakukan ping. Pool tetap dikembalikan
// bersama error ping sehingga caller bisa memilih jalan tanpa DB.
func NewMySQL(ctx context.Context, o Options) (*sql.DB, error) {
	db, err := sql.Open("mysql", o.DSN)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if o.MaxOpen > 0 {
		db.SetMaxOpenConns(o.MaxOpen)
	}
	if o.MaxIdle > 0 {
		db.SetMaxIdleConns(o.MaxIdle)
	}
	lifetime := o.MaxLifetime
	if lifetime == 0 {
		lifetime = 5 * time.Minute
	}
	db.SetConnMaxLifetime(lifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return db, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}
