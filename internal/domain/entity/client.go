package entity

import "time"

// Client representa un cliente facturable de una empresa.
// Entrada de solo lectura para el saga.
type Client struct {
	ID           string
	EnterpriseID string
	Name         string
	Email        string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
