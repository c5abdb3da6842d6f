package entity

import "time"

// Resumen de estado de pago de la empresa.
const (
	EnterpriseUnpaid = "unpaid"
	EnterprisePaid   = "paid"
)

// Enterprise representa una organización/tenant del sistema.
// PaymentStatus es un resumen denormalizado que el saga actualiza
// cuando la factura del pago queda creada.
type Enterprise struct {
	ID               string
	Name             string
	PaymentStatus    string  // unpaid, paid
	OwnerPrincipalID *string // principal dueño de la empresa (nil si no asignado)
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
