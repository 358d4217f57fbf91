package dataset

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxQuerier is the query surface shared by *pgxpool.Pool, *pgx.Conn and
// pgx.Tx.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// FromPgx runs query and loads the result, naming columns after the field
// descriptions.
func FromPgx(ctx context.Context, q PgxQuerier, query string, args ...any) (*Dataset, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()
	return fromPgxRows(rows)
}

func fromPgxRows(rows pgx.Rows) (*Dataset, error) {
	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}
	d := New(cols...)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", d.Rows()+1, err)
		}
		for i, v := range vals {
			// uuid columns decode to a bare [16]byte.
			if b, ok := v.([16]byte); ok && i < len(fields) && fields[i].DataTypeOID == pgtype.UUIDOID {
				vals[i] = pgtype.UUID{Bytes: b, Valid: true}
			}
		}
		if err := d.Append(vals...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return d, nil
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// PostgresDSN formats c as a libpq keyword/value connection string. Values
// are single-quoted so they may contain spaces and quotes.
func (c Conf) PostgresDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	q := func(v string) string { return "'" + dsnEscaper.Replace(v) + "'" }
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		q(c.Host), port, q(c.User), q(c.PW), q(c.DB))
}

// OpenPgx opens and pings a PostgreSQL connection pool.
func OpenPgx(ctx context.Context, c Conf) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(c.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}
	config.MaxConns = 4
	config.MaxConnLifetime = 3 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return pool, nil
}
