package domain

import "fmt"

// Vehicle is the make and model a client registers at most once.
type Vehicle struct {
	Make  string `json:"make"`
	Model string `json:"model"`
}

func (v Vehicle) String() string {
	return v.Make + " " + v.Model
}

// Client is a customer account. Email is unique across clients.
type Client struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
	Vehicle      *Vehicle `json:"vehicle,omitempty"`
}

// HasVehicle reports whether a vehicle has been registered.
func (c Client) HasVehicle() bool {
	return c.Vehicle != nil
}

func (c Client) String() string {
	return fmt.Sprintf("ID: %d | Name: %s | Email: %s", c.ID, c.Name, c.Email)
}
