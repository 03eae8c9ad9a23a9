package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/ports"
)

func (s *Store) FindClientByID(ctx context.Context, id int64) (*domain.Client, error) {
	doc, err := findOne[clientDoc](ctx, s.clients, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *Store) FindClientByEmail(ctx context.Context, email string) (*domain.Client, error) {
	doc, err := findOne[clientDoc](ctx, s.clients, bson.M{"email": email})
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *Store) InsertClient(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	id, err := s.nextID(ctx, collectionClients)
	if err != nil {
		return nil, err
	}
	stored := *client
	stored.ID = id

	if _, err := s.clients.InsertOne(ctx, toClientDoc(&stored)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("insert client: %w", err)
	}
	return &stored, nil
}

func (s *Store) UpdateClient(ctx context.Context, client *domain.Client) error {
	return replaceByID(ctx, s.clients, client.ID, toClientDoc(client))
}

func (s *Store) FindEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error) {
	doc, err := findOne[employeeDoc](ctx, s.employees, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	e, err := doc.toDomain()
	if err != nil {
		return nil, fmt.Errorf("employee %d: %w", id, err)
	}
	return e, nil
}

func (s *Store) InsertEmployee(ctx context.Context, employee *domain.Employee) (*domain.Employee, error) {
	stored := *employee
	if stored.ID == 0 {
		id, err := s.nextID(ctx, collectionEmployees)
		if err != nil {
			return nil, err
		}
		stored.ID = id
	} else if err := s.bumpCounter(ctx, collectionEmployees, stored.ID); err != nil {
		return nil, fmt.Errorf("employee counter: %w", err)
	}

	_, err := s.employees.InsertOne(ctx, employeeDoc{
		ID:           stored.ID,
		Name:         stored.Name,
		PasswordHash: stored.PasswordHash,
		Role:         string(stored.Role),
	})
	if mongo.IsDuplicateKeyError(err) {
		return nil, domain.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("insert employee: %w", err)
	}
	return &stored, nil
}

func (s *Store) CountEmployees(ctx context.Context) (int64, error) {
	n, err := s.employees.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return n, nil
}

func (s *Store) FindOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	doc, err := findOne[orderDoc](ctx, s.orders, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	o := doc.toDomain()
	return &o, nil
}

func (s *Store) ListOrders(ctx context.Context, filter ports.OrderFilter) ([]domain.Order, error) {
	q := bson.M{}
	if filter.Finished != nil {
		q["finished"] = *filter.Finished
	}
	if filter.ClientID != nil {
		q["client_id"] = *filter.ClientID
	}
	docs, err := findAll[orderDoc](ctx, s.orders, q)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *Store) InsertOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	id, err := s.nextID(ctx, collectionOrders)
	if err != nil {
		return nil, err
	}
	stored := *order
	stored.ID = id
	if _, err := s.orders.InsertOne(ctx, toOrderDoc(&stored)); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return &stored, nil
}

func (s *Store) UpdateOrder(ctx context.Context, order *domain.Order) error {
	return replaceByID(ctx, s.orders, order.ID, toOrderDoc(order))
}

func (s *Store) FindReportByID(ctx context.Context, id int64) (*domain.Report, error) {
	doc, err := findOne[reportDoc](ctx, s.reports, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	r := doc.toDomain()
	return &r, nil
}

func (s *Store) ListReports(ctx context.Context, filter ports.ReportFilter) ([]domain.Report, error) {
	q := bson.M{}
	if filter.ClientID != nil {
		q["client_id"] = *filter.ClientID
	}
	docs, err := findAll[reportDoc](ctx, s.reports, q)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Report, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *Store) InsertReport(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	id, err := s.nextID(ctx, collectionReports)
	if err != nil {
		return nil, err
	}
	stored := *report
	stored.ID = id
	_, err = s.reports.InsertOne(ctx, reportDoc{
		ID:       stored.ID,
		ClientID: stored.ClientID,
		OrderID:  stored.OrderID,
		Cost:     stored.Cost,
	})
	if err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	return &stored, nil
}
