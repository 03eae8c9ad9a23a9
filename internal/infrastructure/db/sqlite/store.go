// Package sqlite stores shop records in a SQLite file through the pure Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	vehicle_make  TEXT,
	vehicle_model TEXT
);
CREATE TABLE IF NOT EXISTS employees (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL CHECK (role IN ('Technician', 'Mechanic'))
);
CREATE TABLE IF NOT EXISTS orders (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	client_id INTEGER NOT NULL REFERENCES clients(id),
	service   TEXT NOT NULL CHECK (service IN ('Inspection', 'Repair')),
	finished  INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS reports (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	client_id INTEGER NOT NULL REFERENCES clients(id),
	order_id  INTEGER NOT NULL REFERENCES orders(id),
	cost      INTEGER NOT NULL CHECK (cost >= 0)
);
CREATE INDEX IF NOT EXISTS orders_client_id ON orders(client_id);
CREATE INDEX IF NOT EXISTS reports_client_id ON reports(client_id);
`

// Store implements ports.ProvisionedStore on a SQLite database.
type Store struct {
	db *sql.DB
}

var _ ports.ProvisionedStore = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "shop.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("sqlite: create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// one writer at a time; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// dsn sets foreign_keys through the driver so every pooled connection has it.
func dsn(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)"
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanClient(row scanner) (*domain.Client, error) {
	var (
		c            domain.Client
		vMake, vModel sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &vMake, &vModel); err != nil {
		return nil, err
	}
	if vMake.Valid {
		c.Vehicle = &domain.Vehicle{Make: vMake.String, Model: vModel.String}
	}
	return &c, nil
}

func vehicleColumns(v *domain.Vehicle) (sql.NullString, sql.NullString) {
	if v == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: v.Make, Valid: true}, sql.NullString{String: v.Model, Valid: true}
}

const clientColumns = `id, name, email, password_hash, vehicle_make, vehicle_model`

func (s *Store) findClient(ctx context.Context, where string, arg any) (*domain.Client, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE `+where, arg)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find client: %w", err)
	}
	return c, nil
}

func (s *Store) FindClientByID(ctx context.Context, id int64) (*domain.Client, error) {
	return s.findClient(ctx, "id = ?", id)
}

func (s *Store) FindClientByEmail(ctx context.Context, email string) (*domain.Client, error) {
	return s.findClient(ctx, "email = ?", email)
}

func (s *Store) InsertClient(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	vMake, vModel := vehicleColumns(client.Vehicle)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO clients (name, email, password_hash, vehicle_make, vehicle_model) VALUES (?, ?, ?, ?, ?)`,
		client.Name, client.Email, client.PasswordHash, vMake, vModel)
	if isUniqueViolation(err) {
		return nil, domain.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: insert client: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: insert client: %w", err)
	}
	stored := *client
	stored.ID = id
	return &stored, nil
}

func (s *Store) UpdateClient(ctx context.Context, client *domain.Client) error {
	vMake, vModel := vehicleColumns(client.Vehicle)
	res, err := s.db.ExecContext(ctx,
		`UPDATE clients SET name = ?, email = ?, password_hash = ?, vehicle_make = ?, vehicle_model = ? WHERE id = ?`,
		client.Name, client.Email, client.PasswordHash, vMake, vModel, client.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("sqlite: update client: %w", err)
	}
	return requireRow(res)
}

func (s *Store) FindEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error) {
	var (
		e    domain.Employee
		role string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, password_hash, role FROM employees WHERE id = ?`, id).
		Scan(&e.ID, &e.Name, &e.PasswordHash, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find employee: %w", err)
	}
	if e.Role, err = domain.ParseRole(role); err != nil {
		return nil, fmt.Errorf("sqlite: employee %d: %w", id, err)
	}
	return &e, nil
}

func (s *Store) InsertEmployee(ctx context.Context, employee *domain.Employee) (*domain.Employee, error) {
	var id any
	if employee.ID != 0 {
		id = employee.ID
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO employees (id, name, password_hash, role) VALUES (?, ?, ?, ?)`,
		id, employee.Name, employee.PasswordHash, string(employee.Role))
	if isUniqueViolation(err) {
		return nil, domain.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: insert employee: %w", err)
	}
	stored := *employee
	if stored.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("sqlite: insert employee: %w", err)
	}
	return &stored, nil
}

func (s *Store) CountEmployees(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count employees: %w", err)
	}
	return n, nil
}

func scanOrder(row scanner) (*domain.Order, error) {
	var (
		o       domain.Order
		service string
	)
	if err := row.Scan(&o.ID, &o.ClientID, &service, &o.Finished); err != nil {
		return nil, err
	}
	o.Service = domain.Service(service)
	return &o, nil
}

func (s *Store) FindOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx,
		`SELECT id, client_id, service, finished FROM orders WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find order: %w", err)
	}
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context, filter ports.OrderFilter) ([]domain.Order, error) {
	query := `SELECT id, client_id, service, finished FROM orders`
	var (
		conds []string
		args  []any
	)
	if filter.Finished != nil {
		conds = append(conds, "finished = ?")
		args = append(args, *filter.Finished)
	}
	if filter.ClientID != nil {
		conds = append(conds, "client_id = ?")
		args = append(args, *filter.ClientID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}
	defer rows.Close()

	out := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan order: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (s *Store) InsertOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (client_id, service, finished) VALUES (?, ?, ?)`,
		order.ClientID, string(order.Service), order.Finished)
	if err != nil {
		return nil, fmt.Errorf("sqlite: insert order: %w", err)
	}
	stored := *order
	if stored.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("sqlite: insert order: %w", err)
	}
	return &stored, nil
}

func (s *Store) UpdateOrder(ctx context.Context, order *domain.Order) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET client_id = ?, service = ?, finished = ? WHERE id = ?`,
		order.ClientID, string(order.Service), order.Finished, order.ID)
	if err != nil {
		return fmt.Errorf("sqlite: update order: %w", err)
	}
	return requireRow(res)
}

func scanReport(row scanner) (*domain.Report, error) {
	var r domain.Report
	if err := row.Scan(&r.ID, &r.ClientID, &r.OrderID, &r.Cost); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) FindReportByID(ctx context.Context, id int64) (*domain.Report, error) {
	r, err := scanReport(s.db.QueryRowContext(ctx,
		`SELECT id, client_id, order_id, cost FROM reports WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find report: %w", err)
	}
	return r, nil
}

func (s *Store) ListReports(ctx context.Context, filter ports.ReportFilter) ([]domain.Report, error) {
	query := `SELECT id, client_id, order_id, cost FROM reports`
	var args []any
	if filter.ClientID != nil {
		query += " WHERE client_id = ?"
		args = append(args, *filter.ClientID)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list reports: %w", err)
	}
	defer rows.Close()

	out := []domain.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan report: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) InsertReport(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (client_id, order_id, cost) VALUES (?, ?, ?)`,
		report.ClientID, report.OrderID, report.Cost)
	if err != nil {
		return nil, fmt.Errorf("sqlite: insert report: %w", err)
	}
	stored := *report
	if stored.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("sqlite: insert report: %w", err)
	}
	return &stored, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
