package dataset

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"math/big"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- database/sql fake ---

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) { return fakeConn{}, nil }

type fakeConn struct{}

func (fakeConn) Prepare(string) (driver.Stmt, error) { return fakeStmt{}, nil }
func (fakeConn) Close() error                        { return nil }
func (fakeConn) Begin() (driver.Tx, error)           { return nil, errors.New("no transactions") }

type fakeStmt struct{}

func (fakeStmt) Close() error  { return nil }
func (fakeStmt) NumInput() int { return -1 }
func (fakeStmt) Exec([]driver.Value) (driver.Result, error) {
	return nil, errors.New("read only")
}
func (fakeStmt) Query([]driver.Value) (driver.Rows, error) {
	return &fakeRows{
		cols: []string{"id", "name", "score"},
		data: [][]driver.Value{
			{int64(1), []byte("ada"), 9.5},
			{int64(2), []byte("grace"), nil},
		},
	}, nil
}

type fakeRows struct {
	cols []string
	data [][]driver.Value
	i    int
}

func (r *fakeRows) Columns() []string { return r.cols }
func (r *fakeRows) Close() error      { return nil }
func (r *fakeRows) Next(dest []driver.Value) error {
	if r.i >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.i])
	r.i++
	return nil
}

func init() { sql.Register("datasetfake", fakeDriver{}) }

func TestQuery(t *testing.T) {
	db, err := sql.Open("datasetfake", "")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	d, err := Query(context.Background(), db, "SELECT id, name, score FROM people")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if diff := cmp.Diff([]string{"id", "name", "score"}, d.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	want := [][]string{{"1", "ada", "9.5"}, {"2", "grace", ""}}
	if diff := cmp.Diff(want, cells(d)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if v, ok := d.Value(0, 1).(string); !ok || v != "ada" {
		t.Errorf("bytes not converted: %#v", d.Value(0, 1))
	}
}

func TestConf_MySQLDSN(t *testing.T) {
	c := Conf{Host: "db.internal", Port: 3306, User: "report", PW: "s3cret", DB: "fleet"}
	cfg, err := mysql.ParseDSN(c.MySQLDSN())
	if err != nil {
		t.Fatalf("ParseDSN: %v", err)
	}
	if cfg.User != "report" || cfg.Passwd != "s3cret" || cfg.Addr != "db.internal:3306" || cfg.DBName != "fleet" || !cfg.ParseTime {
		t.Errorf("config = %+v", cfg)
	}
	if got := (Conf{DSN: "raw"}).MySQLDSN(); got != "raw" {
		t.Errorf("DSN override = %q", got)
	}
}

func TestConf_PostgresDSN(t *testing.T) {
	c := Conf{Host: "pg", User: "report", PW: "pw", DB: "fleet"}
	want := "host='pg' port=5432 user='report' password='pw' dbname='fleet' sslmode=disable"
	if got := c.PostgresDSN(); got != want {
		t.Errorf("PostgresDSN = %q, want %q", got, want)
	}

	tricky := Conf{Host: "pg", Port: 6432, User: "ops team", PW: `it's a \ pass`, DB: "fleet"}
	cfg, err := pgconn.ParseConfig(tricky.PostgresDSN())
	if err != nil {
		t.Fatalf("ParseConfig(%q): %v", tricky.PostgresDSN(), err)
	}
	if cfg.Host != "pg" || cfg.Port != 6432 || cfg.User != "ops team" || cfg.Password != tricky.PW || cfg.Database != "fleet" {
		t.Errorf("parsed config = host %q port %d user %q password %q db %q", cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database)
	}
}

// --- pgx fake ---

type fakePgxRows struct {
	fields []pgconn.FieldDescription
	data   [][]any
	i      int
	err    error
	closed bool
}

func (r *fakePgxRows) Close()                                       { r.closed = true }
func (r *fakePgxRows) Err() error                                   { return r.err }
func (r *fakePgxRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakePgxRows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }
func (r *fakePgxRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}
func (r *fakePgxRows) Scan(...any) error      { return errors.New("not supported") }
func (r *fakePgxRows) Values() ([]any, error) { return r.data[r.i-1], nil }
func (r *fakePgxRows) RawValues() [][]byte    { return nil }
func (r *fakePgxRows) Conn() *pgx.Conn        { return nil }

type fakeQuerier struct{ rows *fakePgxRows }

func (q fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return q.rows, nil
}

func TestFromPgx(t *testing.T) {
	rows := &fakePgxRows{
		fields: []pgconn.FieldDescription{{Name: "unit"}, {Name: "temp"}},
		data:   [][]any{{"e1", int32(91)}, {"e2", 88.5}},
	}
	d, err := FromPgx(context.Background(), fakeQuerier{rows}, "SELECT unit, temp FROM readings")
	if err != nil {
		t.Fatalf("FromPgx: %v", err)
	}
	want := [][]string{{"e1", "91"}, {"e2", "88.5"}}
	if diff := cmp.Diff(want, cells(d)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if !rows.closed {
		t.Error("rows left open")
	}

	failing := &fakePgxRows{fields: rows.fields, err: errors.New("connection reset")}
	if _, err := FromPgx(context.Background(), fakeQuerier{failing}, "SELECT 1"); err == nil {
		t.Error("row error swallowed")
	}
}

func TestFromPgx_DriverTypes(t *testing.T) {
	id := [16]byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0, 0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0}
	rows := &fakePgxRows{
		fields: []pgconn.FieldDescription{
			{Name: "id", DataTypeOID: pgtype.UUIDOID},
			{Name: "load", DataTypeOID: pgtype.NumericOID},
		},
		data: [][]any{
			{id, pgtype.Numeric{Int: big.NewInt(12345), Exp: -2, Valid: true}},
			{id, pgtype.Numeric{}},
		},
	}
	d, err := FromPgx(context.Background(), fakeQuerier{rows}, "SELECT id, load FROM units")
	if err != nil {
		t.Fatalf("FromPgx: %v", err)
	}
	uuid := "12345678-9abc-def0-1234-56789abcdef0"
	want := [][]string{{uuid, "123.45"}, {uuid, ""}}
	if diff := cmp.Diff(want, cells(d)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}
