package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// FromRows drains rows into a dataset named after the result columns. Byte
// slices are copied to strings. The caller closes rows.
func FromRows(rows *sql.Rows) (*Dataset, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	d := New(cols...)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", d.Rows()+1, err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		d.rows = append(d.rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return d, nil
}

// Query runs query on db and loads the result.
func Query(ctx context.Context, db *sql.DB, query string, args ...any) (*Dataset, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()
	return FromRows(rows)
}

// Conf describes a database connection. DSN, when set, overrides the other
// fields.
type Conf struct {
	Host string
	Port int
	User string
	PW   string
	DB   string
	DSN  string
}

// MySQLDSN formats c as a go-sql-driver/mysql DSN with time parsing enabled.
func (c Conf) MySQLDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.PW
	cfg.Net = "tcp"
	cfg.Addr = c.Host
	if c.Port != 0 {
		cfg.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	}
	cfg.DBName = c.DB
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// OpenMySQL opens and pings a MySQL database.
func OpenMySQL(ctx context.Context, c Conf) (*sql.DB, error) {
	return openSQL(ctx, "mysql", c.MySQLDSN())
}

func openSQL(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s ping failed: %w", driver, err)
	}
	return db, nil
}
