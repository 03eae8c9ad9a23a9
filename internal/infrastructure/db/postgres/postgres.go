// Package postgres stores shop records in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	vehicle_make  TEXT,
	vehicle_model TEXT
);
CREATE TABLE IF NOT EXISTS employees (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL CHECK (role IN ('Technician', 'Mechanic'))
);
CREATE TABLE IF NOT EXISTS orders (
	id        BIGSERIAL PRIMARY KEY,
	client_id BIGINT NOT NULL REFERENCES clients(id),
	service   TEXT NOT NULL CHECK (service IN ('Inspection', 'Repair')),
	finished  BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS reports (
	id        BIGSERIAL PRIMARY KEY,
	client_id BIGINT NOT NULL REFERENCES clients(id),
	order_id  BIGINT NOT NULL REFERENCES orders(id),
	cost      BIGINT NOT NULL CHECK (cost >= 0)
);
CREATE INDEX IF NOT EXISTS orders_client_id ON orders(client_id);
CREATE INDEX IF NOT EXISTS reports_client_id ON reports(client_id);
`

const uniqueViolation = "23505"

// NewPool parses url, opens a pool and checks the server answers.
func NewPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, fmt.Errorf("postgres: SHOP_DB_URL is not set")
	}
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("postgres: unable to parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("postgres: unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: unable to ping database: %w", err)
	}
	return pool, nil
}

// Store implements ports.ProvisionedStore on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ ports.ProvisionedStore = (*Store)(nil)

// Open connects to url and creates the schema if it is missing.
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := NewPool(ctx, url)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var (
		c             domain.Client
		vMake, vModel *string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &vMake, &vModel); err != nil {
		return nil, err
	}
	if vMake != nil && vModel != nil {
		c.Vehicle = &domain.Vehicle{Make: *vMake, Model: *vModel}
	}
	return &c, nil
}

func vehicleColumns(v *domain.Vehicle) (*string, *string) {
	if v == nil {
		return nil, nil
	}
	return &v.Make, &v.Model
}

func (s *Store) findClient(ctx context.Context, where string, arg any) (*domain.Client, error) {
	c, err := scanClient(s.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, vehicle_make, vehicle_model FROM clients WHERE `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find client: %w", err)
	}
	return c, nil
}

func (s *Store) FindClientByID(ctx context.Context, id int64) (*domain.Client, error) {
	return s.findClient(ctx, "id = $1", id)
}

func (s *Store) FindClientByEmail(ctx context.Context, email string) (*domain.Client, error) {
	return s.findClient(ctx, "email = $1", email)
}

func (s *Store) InsertClient(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	vMake, vModel := vehicleColumns(client.Vehicle)
	stored := *client
	err := s.pool.QueryRow(ctx,
		`INSERT INTO clients (name, email, password_hash, vehicle_make, vehicle_model)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		client.Name, client.Email, client.PasswordHash, vMake, vModel).Scan(&stored.ID)
	if isUniqueViolation(err) {
		return nil, domain.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: insert client: %w", err)
	}
	return &stored, nil
}

func (s *Store) UpdateClient(ctx context.Context, client *domain.Client) error {
	vMake, vModel := vehicleColumns(client.Vehicle)
	tag, err := s.pool.Exec(ctx,
		`UPDATE clients SET name = $1, email = $2, password_hash = $3, vehicle_make = $4, vehicle_model = $5
		 WHERE id = $6`,
		client.Name, client.Email, client.PasswordHash, vMake, vModel, client.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("postgres: update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) FindEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error) {
	var (
		e    domain.Employee
		role string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, password_hash, role FROM employees WHERE id = $1`, id).
		Scan(&e.ID, &e.Name, &e.PasswordHash, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find employee: %w", err)
	}
	if e.Role, err = domain.ParseRole(role); err != nil {
		return nil, fmt.Errorf("postgres: employee %d: %w", id, err)
	}
	return &e, nil
}

// InsertEmployee honours an explicit id and moves the sequence past it.
func (s *Store) InsertEmployee(ctx context.Context, employee *domain.Employee) (*domain.Employee, error) {
	stored := *employee
	var err error
	if employee.ID == 0 {
		err = s.pool.QueryRow(ctx,
			`INSERT INTO employees (name, password_hash, role) VALUES ($1, $2, $3) RETURNING id`,
			employee.Name, employee.PasswordHash, string(employee.Role)).Scan(&stored.ID)
	} else {
		_, err = s.pool.Exec(ctx,
			`INSERT INTO employees (id, name, password_hash, role) VALUES ($1, $2, $3, $4)`,
			employee.ID, employee.Name, employee.PasswordHash, string(employee.Role))
		if err == nil {
			_, err = s.pool.Exec(ctx,
				`SELECT setval(pg_get_serial_sequence('employees', 'id'), (SELECT MAX(id) FROM employees))`)
		}
	}
	if isUniqueViolation(err) {
		return nil, domain.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: insert employee: %w", err)
	}
	return &stored, nil
}

func (s *Store) CountEmployees(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count employees: %w", err)
	}
	return n, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
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
	o, err := scanOrder(s.pool.QueryRow(ctx,
		`SELECT id, client_id, service, finished FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find order: %w", err)
	}
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context, filter ports.OrderFilter) ([]domain.Order, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Finished != nil {
		args = append(args, *filter.Finished)
		conds = append(conds, fmt.Sprintf("finished = $%d", len(args)))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		conds = append(conds, fmt.Sprintf("client_id = $%d", len(args)))
	}
	query := `SELECT id, client_id, service, finished FROM orders`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list orders: %w", err)
	}
	defer rows.Close()

	out := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan order: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (s *Store) InsertOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	stored := *order
	err := s.pool.QueryRow(ctx,
		`INSERT INTO orders (client_id, service, finished) VALUES ($1, $2, $3) RETURNING id`,
		order.ClientID, string(order.Service), order.Finished).Scan(&stored.ID)
	if err != nil {
		return nil, fmt.Errorf("postgres: insert order: %w", err)
	}
	return &stored, nil
}

func (s *Store) UpdateOrder(ctx context.Context, order *domain.Order) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET client_id = $1, service = $2, finished = $3 WHERE id = $4`,
		order.ClientID, string(order.Service), order.Finished, order.ID)
	if err != nil {
		return fmt.Errorf("postgres: update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) FindReportByID(ctx context.Context, id int64) (*domain.Report, error) {
	var r domain.Report
	err := s.pool.QueryRow(ctx,
		`SELECT id, client_id, order_id, cost FROM reports WHERE id = $1`, id).
		Scan(&r.ID, &r.ClientID, &r.OrderID, &r.Cost)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find report: %w", err)
	}
	return &r, nil
}

func (s *Store) ListReports(ctx context.Context, filter ports.ReportFilter) ([]domain.Report, error) {
	query := `SELECT id, client_id, order_id, cost FROM reports`
	var args []any
	if filter.ClientID != nil {
		query += " WHERE client_id = $1"
		args = append(args, *filter.ClientID)
	}
	query += " ORDER BY id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list reports: %w", err)
	}
	defer rows.Close()

	out := []domain.Report{}
	for rows.Next() {
		var r domain.Report
		if err := rows.Scan(&r.ID, &r.ClientID, &r.OrderID, &r.Cost); err != nil {
			return nil, fmt.Errorf("postgres: scan report: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) InsertReport(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	stored := *report
	err := s.pool.QueryRow(ctx,
		`INSERT INTO reports (client_id, order_id, cost) VALUES ($1, $2, $3) RETURNING id`,
		report.ClientID, report.OrderID, report.Cost).Scan(&stored.ID)
	if err != nil {
		return nil, fmt.Errorf("postgres: insert report: %w", err)
	}
	return &stored, nil
}
