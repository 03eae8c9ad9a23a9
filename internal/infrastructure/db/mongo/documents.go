package mongo

import "github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"

type vehicleDoc struct {
	Make  string `bson:"make"`
	Model string `bson:"model"`
}

type clientDoc struct {
	ID           int64       `bson:"_id"`
	Name         string      `bson:"name"`
	Email        string      `bson:"email"`
	PasswordHash string      `bson:"password_hash"`
	Vehicle      *vehicleDoc `bson:"vehicle,omitempty"`
}

func toClientDoc(c *domain.Client) clientDoc {
	doc := clientDoc{ID: c.ID, Name: c.Name, Email: c.Email, PasswordHash: c.PasswordHash}
	if c.Vehicle != nil {
		doc.Vehicle = &vehicleDoc{Make: c.Vehicle.Make, Model: c.Vehicle.Model}
	}
	return doc
}

func (d clientDoc) toDomain() *domain.Client {
	c := &domain.Client{ID: d.ID, Name: d.Name, Email: d.Email, PasswordHash: d.PasswordHash}
	if d.Vehicle != nil {
		c.Vehicle = &domain.Vehicle{Make: d.Vehicle.Make, Model: d.Vehicle.Model}
	}
	return c
}

type employeeDoc struct {
	ID           int64  `bson:"_id"`
	Name         string `bson:"name"`
	PasswordHash string `bson:"password_hash"`
	Role         string `bson:"role"`
}

func (d employeeDoc) toDomain() (*domain.Employee, error) {
	role, err := domain.ParseRole(d.Role)
	if err != nil {
		return nil, err
	}
	return &domain.Employee{ID: d.ID, Name: d.Name, PasswordHash: d.PasswordHash, Role: role}, nil
}

type orderDoc struct {
	ID       int64  `bson:"_id"`
	ClientID int64  `bson:"client_id"`
	Service  string `bson:"service"`
	Finished bool   `bson:"finished"`
}

func toOrderDoc(o *domain.Order) orderDoc {
	return orderDoc{ID: o.ID, ClientID: o.ClientID, Service: string(o.Service), Finished: o.Finished}
}

func (d orderDoc) toDomain() domain.Order {
	return domain.Order{ID: d.ID, ClientID: d.ClientID, Service: domain.Service(d.Service), Finished: d.Finished}
}

type reportDoc struct {
	ID       int64 `bson:"_id"`
	ClientID int64 `bson:"client_id"`
	OrderID  int64 `bson:"order_id"`
	Cost     int64 `bson:"cost"`
}

func (d reportDoc) toDomain() domain.Report {
	return domain.Report{ID: d.ID, ClientID: d.ClientID, OrderID: d.OrderID, Cost: d.Cost}
}
